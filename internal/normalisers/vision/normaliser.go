// Package vision transcribes photos and screenshots with a vision model.
//
// Images are converted to a bounded-width JPEG before inference: HEIC is
// first converted to PNG with an external tool, then every image is
// decoded, downscaled to at most MaxWidth pixels wide (never enlarged)
// and re-encoded at a fixed quality.
package vision

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abdullah-sah/brain-assistant/internal/adapters/driven/command"
	"github.com/abdullah-sah/brain-assistant/internal/core/domain"
	"github.com/abdullah-sah/brain-assistant/internal/core/ports/driven"
	"github.com/abdullah-sah/brain-assistant/internal/logger"
)

// Ensure Normaliser implements the interfaces.
var (
	_ driven.DecodeBackend    = (*Normaliser)(nil)
	_ driven.PromptStoreAware = (*Normaliser)(nil)
)

// User-facing causes.
const (
	CauseNoText = "Could not extract text from image. Please paste text manually or try a clearer image."
	CauseFailed = "Image OCR failed. Please paste text manually or try a different image."
)

// DefaultPrompt is the transcription instruction sent with every image.
const DefaultPrompt = "Extract all text from this image. Preserve the original formatting and structure as much as possible. " +
	"If the image contains handwritten text, transcribe it accurately. " +
	"Return only the extracted text without any additional commentary."

// transcribeMaxTokens bounds the vision response.
const transcribeMaxTokens = 4096

// Normaliser handles JPEG, PNG and HEIC images.
type Normaliser struct {
	llm      driven.LLMService
	runner   driven.CommandRunner
	prompts  driven.PromptStore
	model    string
	maxWidth int
	quality  int
	heicTool string
}

// Option configures a Normaliser.
type Option func(*Normaliser)

// WithRunner sets the command runner used for HEIC conversion.
func WithRunner(r driven.CommandRunner) Option {
	return func(n *Normaliser) { n.runner = r }
}

// WithMaxWidth sets the downscale bound. Non-positive values are ignored.
func WithMaxWidth(px int) Option {
	return func(n *Normaliser) {
		if px > 0 {
			n.maxWidth = px
		}
	}
}

// WithJPEGQuality sets the re-encode quality (1-100).
func WithJPEGQuality(q int) Option {
	return func(n *Normaliser) {
		if q >= 1 && q <= 100 {
			n.quality = q
		}
	}
}

// WithHEICConverter forces one converter (heif-convert, magick or sips).
func WithHEICConverter(tool string) Option {
	return func(n *Normaliser) { n.heicTool = strings.TrimSpace(tool) }
}

// WithModel overrides the model used for transcription.
func WithModel(model string) Option {
	return func(n *Normaliser) { n.model = model }
}

// New creates an image normaliser. A nil llm makes every decode fail
// with OcrFailed.
func New(llm driven.LLMService, opts ...Option) *Normaliser {
	n := &Normaliser{
		llm:      llm,
		runner:   command.New(),
		maxWidth: domain.DefaultImageMaxWidth,
		quality:  domain.DefaultJPEGQuality,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// SetPromptStore sets the store used to override the transcription prompt.
func (n *Normaliser) SetPromptStore(store driven.PromptStore) {
	n.prompts = store
}

// SupportedMediaTypes returns the media types this normaliser handles.
func (n *Normaliser) SupportedMediaTypes() []domain.MediaType {
	return []domain.MediaType{domain.MediaTypeJPEG, domain.MediaTypePNG, domain.MediaTypeHEIC}
}

// Decode preprocesses the image and transcribes it.
func (n *Normaliser) Decode(ctx context.Context, content []byte, mediaType domain.MediaType) (string, error) {
	if n.llm == nil {
		return "", domain.NewDecodeError(domain.DecodeOCRFailed, CauseFailed, domain.ErrLLMUnavailable)
	}

	data := content
	if mediaType == domain.MediaTypeHEIC {
		png, err := n.convertHEIC(ctx, content)
		if err != nil {
			return "", domain.NewDecodeError(domain.DecodeOCRFailed, CauseFailed, err)
		}
		data = png
	}

	jpg, err := Preprocess(data, n.maxWidth, n.quality)
	if err != nil {
		return "", domain.NewDecodeError(domain.DecodeOCRFailed, CauseFailed, err)
	}
	logger.Debug("image: %d bytes in, %d bytes jpeg out", len(content), len(jpg))

	text, err := n.llm.Transcribe(ctx, driven.Image{Data: jpg, MediaType: string(domain.MediaTypeJPEG)},
		n.loadPrompt(), driven.GenerateOptions{MaxTokens: transcribeMaxTokens, Model: n.model})
	if err != nil {
		return "", domain.NewDecodeError(domain.DecodeOCRFailed, CauseFailed, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.NewDecodeError(domain.DecodeOCRFailed, CauseNoText, nil)
	}
	return text, nil
}

func (n *Normaliser) loadPrompt() string {
	if n.prompts == nil {
		return DefaultPrompt
	}
	p, err := n.prompts.Load(driven.PromptImageTranscription)
	if err != nil || strings.TrimSpace(p) == "" {
		return DefaultPrompt
	}
	return p
}

var errNoConverter = errors.New("no HEIC converter found (install libheif, ImageMagick, or use macOS sips)")

func wrapConvert(tool string, err error) error {
	return fmt.Errorf("%s convert failed: %w", tool, err)
}
