// Command brain captures the commitments you make in meetings, emails,
// notes and documents, and keeps them as dated tasks.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/abdullah-sah/brain-assistant/internal/adapters/driven/ai"
	"github.com/abdullah-sah/brain-assistant/internal/adapters/driven/config/file"
	"github.com/abdullah-sah/brain-assistant/internal/adapters/driven/storage/postgres"
	"github.com/abdullah-sah/brain-assistant/internal/adapters/driven/storage/sqlite"
	"github.com/abdullah-sah/brain-assistant/internal/adapters/driving/cli"
	"github.com/abdullah-sah/brain-assistant/internal/core/domain"
	"github.com/abdullah-sah/brain-assistant/internal/core/ports/driven"
	"github.com/abdullah-sah/brain-assistant/internal/core/services"
	"github.com/abdullah-sah/brain-assistant/internal/logger"
	"github.com/abdullah-sah/brain-assistant/internal/normalisers/docx"
	"github.com/abdullah-sah/brain-assistant/internal/normalisers/markdown"
	"github.com/abdullah-sah/brain-assistant/internal/normalisers/pdf"
	"github.com/abdullah-sah/brain-assistant/internal/normalisers/plaintext"
	"github.com/abdullah-sah/brain-assistant/internal/normalisers/vision"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := wire(ctx)
	if err != nil {
		logger.Error("%v", err)
		_ = res.Close()
		stop()
		os.Exit(1)
	}

	err = cli.Execute(ctx)
	if cerr := res.Close(); cerr != nil {
		logger.Warn("shutdown: %v", cerr)
	}
	if err != nil {
		stop()
		os.Exit(1)
	}
}

// resources are released in reverse order of acquisition.
type resources []io.Closer

func (r resources) Close() error {
	var errs []error
	for i := len(r) - 1; i >= 0; i-- {
		if err := r[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// wire builds the services and injects them into the command tree.
func wire(ctx context.Context) (resources, error) {
	var res resources

	configDir, err := file.DefaultDir()
	if err != nil {
		return nil, fmt.Errorf("locating config directory: %w", err)
	}
	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	llm, err := ai.CreateLLMService(&settings.LLM)
	if err != nil {
		logger.Warn("LLM disabled: %v", err)
		llm = nil
	}
	if llm != nil {
		res = append(res, llm)
	}

	prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts"), map[string]string{
		driven.PromptCommitmentExtraction: services.DefaultExtractionPrompt,
		driven.PromptImageTranscription:   vision.DefaultPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("opening prompts: %w", err)
	}

	img := settings.Image
	visionModel := settings.LLM.VisionModel
	ocr := vision.New(llm,
		vision.WithMaxWidth(img.MaxWidth),
		vision.WithJPEGQuality(img.JPEGQuality),
		vision.WithHEICConverter(img.HEICConverter),
		vision.WithModel(visionModel),
	)
	ocr.SetPromptStore(prompts)

	decoder := services.NewFormatDecoder(settings.Pipeline.DecodeTimeout,
		plaintext.New(),
		markdown.New(),
		docx.New(),
		pdf.New(),
		ocr,
	)
	extractor := services.NewCommitmentExtractor(llm, settings.Pipeline.ExtractTimeout)
	extractor.SetPromptStore(prompts)
	extractor.SetModel(settings.LLM.Model)
	pipeline := services.NewPipelineService(decoder, extractor, services.NewDateResolver(settings.Dates))

	notes, tasks, closer, err := openStore(ctx, settings.Storage, configDir)
	if err != nil {
		return res, err
	}
	res = append(res, closer)

	cli.SetServices(cli.Services{
		Capture:   services.NewCaptureService(pipeline, notes, tasks, settings.Identity.Identity(), settings.MaxUploadBytes),
		Tasks:     services.NewTaskService(tasks),
		Notes:     services.NewNoteService(notes, tasks),
		Settings:  settingsService,
		Validator: ai.NewConfigValidator(),
	})
	cli.SetVersion(version)
	return res, nil
}

func openStore(ctx context.Context, cfg domain.StorageSettings, configDir string) (driven.NoteStore, driven.TaskStore, io.Closer, error) {
	switch cfg.Backend {
	case domain.StoragePostgres:
		store, err := postgres.Open(ctx, postgres.DefaultConfig(cfg.DSN))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("opening postgres store: %w", err)
		}
		return store, store, store, nil
	case domain.StorageSQLite, "":
		dir := cfg.Path
		if dir == "" {
			dir = filepath.Join(configDir, "data")
		}
		store, err := sqlite.NewStore(dir)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return store.NoteStore(), store.TaskStore(), store, nil
	default:
		return nil, nil, nil, errors.New("unknown storage backend " + string(cfg.Backend))
	}
}
