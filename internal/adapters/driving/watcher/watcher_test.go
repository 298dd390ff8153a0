package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdullah-sah/brain-assistant/internal/core/domain"
	"github.com/abdullah-sah/brain-assistant/internal/core/ports/driving"
)

type recordingCapture struct {
	mu   sync.Mutex
	reqs []driving.CaptureRequest
}

func (r *recordingCapture) Capture(_ context.Context, req driving.CaptureRequest) (*driving.CaptureResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, req)
	return &driving.CaptureResult{Note: domain.Note{ID: "note-" + req.FileName}}, nil
}

// startWatcher runs w in the background and returns a channel of its events.
func startWatcher(t *testing.T, w *Watcher) <-chan Event {
	t.Helper()
	events := make(chan Event, 16)
	w.OnEvent(func(e Event) { events <- e })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})
	// Give the watcher time to register before files are written.
	time.Sleep(100 * time.Millisecond)
	return events
}

func waitEvent(t *testing.T, events <-chan Event) Event {
	t.Helper()
	select {
	case e := <-events:
		return e
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for capture")
		return Event{}
	}
}

func assertNoEvent(t *testing.T, events <-chan Event) {
	t.Helper()
	select {
	case e := <-events:
		t.Fatalf("unexpected capture of %s", e.Path)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestAccepts(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/tmp/notes.txt", true},
		{"/tmp/minutes.PDF", true},
		{"/tmp/photo.heic", true},
		{"/tmp/readme.md", true},
		{"/tmp/.hidden.txt", false},
		{"/tmp/~$draft.docx", false},
		{"/tmp/archive.zip", false},
		{"/tmp/download.pdf.part", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Accepts(tt.path), tt.path)
	}
}

func TestWatcher_CapturesNewFile(t *testing.T) {
	dir := t.TempDir()
	capture := &recordingCapture{}
	w := New(capture, Config{Root: dir, Debounce: 50 * time.Millisecond, Source: domain.SourceMeeting})
	events := startWatcher(t, w)

	path := filepath.Join(dir, "standup.txt")
	require.NoError(t, os.WriteFile(path, []byte("I'll send the notes tomorrow"), 0600))

	e := waitEvent(t, events)
	require.NoError(t, e.Err)
	assert.Equal(t, path, e.Path)
	assert.Equal(t, "note-standup.txt", e.Result.Note.ID)

	capture.mu.Lock()
	defer capture.mu.Unlock()
	require.Len(t, capture.reqs, 1)
	assert.Equal(t, "standup.txt", capture.reqs[0].FileName)
	assert.Equal(t, domain.SourceMeeting, capture.reqs[0].Source)
	assert.Equal(t, "I'll send the notes tomorrow", string(capture.reqs[0].Content))
}

func TestWatcher_IgnoresUnsupported(t *testing.T) {
	dir := t.TempDir()
	w := New(&recordingCapture{}, Config{Root: dir, Debounce: 20 * time.Millisecond})
	events := startWatcher(t, w)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "archive.zip"), []byte("PK"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".scratch.txt"), []byte("x"), 0600))

	assertNoEvent(t, events)
}

func TestWatcher_InitialScan(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old.md"), []byte("# Notes"), 0600))

	w := New(&recordingCapture{}, Config{Root: dir, InitialScan: true, Debounce: 20 * time.Millisecond})
	events := startWatcher(t, w)

	e := waitEvent(t, events)
	assert.Equal(t, filepath.Join(dir, "old.md"), e.Path)
}

func TestWatcher_Recursive(t *testing.T) {
	dir := t.TempDir()
	w := New(&recordingCapture{}, Config{Root: dir, Recursive: true, Debounce: 50 * time.Millisecond})
	events := startWatcher(t, w)

	sub := filepath.Join(dir, "inbox")
	require.NoError(t, os.Mkdir(sub, 0700))
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "email.txt"), []byte("I can review it"), 0600))

	e := waitEvent(t, events)
	assert.Equal(t, filepath.Join(sub, "email.txt"), e.Path)
}

func TestWatcher_RunErrors(t *testing.T) {
	err := New(nil, Config{Root: t.TempDir()}).Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotImplemented)

	err = New(&recordingCapture{}, Config{Root: filepath.Join(t.TempDir(), "missing")}).Run(context.Background())
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, nil, 0600))
	err = New(&recordingCapture{}, Config{Root: file}).Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
