// Package watcher captures files dropped into a directory.
//
// Files with a supported extension are captured once their writes settle.
// Each file is captured at most once per size and modification time.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/abdullah-sah/brain-assistant/internal/core/domain"
	"github.com/abdullah-sah/brain-assistant/internal/core/ports/driving"
	"github.com/abdullah-sah/brain-assistant/internal/logger"
)

// DefaultDebounce is how long a file must be quiet before it is captured.
const DefaultDebounce = 750 * time.Millisecond

// Config configures a Watcher.
type Config struct {
	// Root is the directory to watch.
	Root string

	// Recursive also watches subdirectories, including ones created later.
	Recursive bool

	// InitialScan captures files already present when Run starts.
	InitialScan bool

	// Debounce coalesces bursts of writes. Zero uses DefaultDebounce.
	Debounce time.Duration

	// Source is the category recorded on captured notes.
	Source domain.SourceCategory
}

// Event reports the outcome of capturing one file.
type Event struct {
	Path   string
	Result *driving.CaptureResult
	Err    error
}

type stamp struct {
	size    int64
	modTime time.Time
}

// Watcher feeds files from a directory into a CaptureService.
type Watcher struct {
	capture driving.CaptureService
	cfg     Config
	onEvent func(Event)
	seen    map[string]stamp
}

// New creates a watcher. It does nothing until Run.
func New(capture driving.CaptureService, cfg Config) *Watcher {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Source == "" {
		cfg.Source = domain.SourceOther
	}
	return &Watcher{
		capture: capture,
		cfg:     cfg,
		onEvent: func(Event) {},
		seen:    make(map[string]stamp),
	}
}

// OnEvent sets the callback invoked after each capture attempt.
// It is called from the Run goroutine.
func (w *Watcher) OnEvent(f func(Event)) {
	if f != nil {
		w.onEvent = f
	}
}

// Run watches until ctx is cancelled. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	if w.capture == nil {
		return domain.ErrNotImplemented
	}
	info, err := os.Stat(w.cfg.Root)
	if err != nil {
		return fmt.Errorf("watch %s: %w", w.cfg.Root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch %s: %w: not a directory", w.cfg.Root, domain.ErrInvalidInput)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	var existing []string
	if err := w.addTree(fw, w.cfg.Root, &existing); err != nil {
		return err
	}
	logger.Info("watch: watching %s", w.cfg.Root)

	pending := make(map[string]time.Time)
	if w.cfg.InitialScan {
		for _, p := range existing {
			pending[p] = time.Time{}
		}
	}

	timer := time.NewTimer(w.cfg.Debounce)
	defer timer.Stop()
	if len(pending) == 0 {
		timer.Stop()
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) && w.cfg.Recursive {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					var found []string
					if err := w.addTree(fw, ev.Name, &found); err != nil {
						logger.Warn("watch: %v", err)
					}
					for _, p := range found {
						pending[p] = time.Now()
					}
					if len(found) > 0 {
						timer.Reset(w.cfg.Debounce)
					}
					continue
				}
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if !Accepts(ev.Name) {
				continue
			}
			pending[ev.Name] = time.Now()
			timer.Reset(w.cfg.Debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch: %v", err)

		case <-timer.C:
			next := w.flush(ctx, pending)
			if next > 0 {
				timer.Reset(next)
			}
		}
	}
}

// flush captures every pending file that has been quiet for the debounce
// interval and returns how long until the next one is due, or zero.
func (w *Watcher) flush(ctx context.Context, pending map[string]time.Time) time.Duration {
	var next time.Duration
	for path, last := range pending {
		if ctx.Err() != nil {
			return 0
		}
		if wait := w.cfg.Debounce - time.Since(last); wait > 0 {
			if next == 0 || wait < next {
				next = wait
			}
			continue
		}
		delete(pending, path)
		w.captureFile(ctx, path)
	}
	return next
}

func (w *Watcher) captureFile(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			w.onEvent(Event{Path: path, Err: err})
		}
		return
	}
	if !info.Mode().IsRegular() {
		return
	}
	st := stamp{size: info.Size(), modTime: info.ModTime()}
	if prev, ok := w.seen[path]; ok && prev == st {
		return
	}

	content, err := os.ReadFile(path)
	if err != nil {
		w.onEvent(Event{Path: path, Err: err})
		return
	}
	w.seen[path] = st

	logger.Debug("watch: capturing %s (%d bytes)", path, len(content))
	res, err := w.capture.Capture(ctx, driving.CaptureRequest{
		Content:  content,
		Source:   w.cfg.Source,
		FileName: filepath.Base(path),
	})
	w.onEvent(Event{Path: path, Result: res, Err: err})
}

// addTree watches dir, and its subdirectories when recursive, appending
// the accepted files found to files.
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string, files *[]string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != dir && (!w.cfg.Recursive || isHidden(d.Name())) {
				return filepath.SkipDir
			}
			if err := fw.Add(path); err != nil {
				return fmt.Errorf("watch %s: %w", path, err)
			}
			return nil
		}
		if Accepts(path) {
			*files = append(*files, path)
		}
		return nil
	})
}

// Accepts reports whether path names a file the watcher captures:
// a supported extension, not hidden, and not an editor or download temp file.
func Accepts(path string) bool {
	name := filepath.Base(path)
	if isHidden(name) || strings.HasPrefix(name, "~$") {
		return false
	}
	_, ok := domain.MediaTypeFromPath(name)
	return ok
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
