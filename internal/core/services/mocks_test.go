package services

import (
	"context"
	"errors"
	"sync"

	"github.com/abdullah-sah/brain-assistant/internal/core/domain"
	"github.com/abdullah-sah/brain-assistant/internal/core/ports/driven"
)

// mockLLM returns a canned structured response and records prompts.
type mockLLM struct {
	mu       sync.Mutex
	response string
	err      error
	prompts  []string
	opts     []driven.GenerateOptions
	block    bool
}

func (m *mockLLM) Generate(_ context.Context, _ string, _ driven.GenerateOptions) (string, error) {
	return m.response, m.err
}

func (m *mockLLM) GenerateStructured(
	ctx context.Context, prompt string, _ driven.ResponseSchema, opts driven.GenerateOptions,
) ([]byte, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	m.mu.Unlock()
	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.err != nil {
		return nil, m.err
	}
	return []byte(m.response), nil
}

func (m *mockLLM) Transcribe(_ context.Context, _ driven.Image, _ string, _ driven.GenerateOptions) (string, error) {
	return "", errors.New("not supported")
}

func (m *mockLLM) ModelName() string           { return "mock-model" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

func (m *mockLLM) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// fakeBackend decodes by calling fn.
type fakeBackend struct {
	types []domain.MediaType
	fn    func(ctx context.Context, content []byte) (string, error)
}

func (b *fakeBackend) SupportedMediaTypes() []domain.MediaType { return b.types }

func (b *fakeBackend) Decode(ctx context.Context, content []byte, _ domain.MediaType) (string, error) {
	return b.fn(ctx, content)
}

func textBackend(types ...domain.MediaType) *fakeBackend {
	return &fakeBackend{types: types, fn: func(_ context.Context, content []byte) (string, error) {
		return string(content), nil
	}}
}

// mapPrompts serves prompts from a map.
type mapPrompts map[string]string

func (p mapPrompts) Load(name string) (string, error) {
	if s, ok := p[name]; ok {
		return s, nil
	}
	return "", domain.ErrNotFound
}

func (p mapPrompts) Reload() {}
