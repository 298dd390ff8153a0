// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import (
	"context"

	"github.com/abdullah-sah/brain-assistant/internal/core/domain"
)

// LLMService provides the inference calls the pipeline depends on.
//
// Implementations may include:
//   - OpenAI (GPT-4o, GPT-4o mini)
//   - Anthropic (Claude)
//   - Ollama (local models)
type LLMService interface {
	// Generate produces text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// GenerateStructured produces a JSON document conforming to schema.
	// The raw JSON is returned; callers validate it.
	GenerateStructured(ctx context.Context, prompt string, schema ResponseSchema, opts GenerateOptions) ([]byte, error)

	// Transcribe sends an image to a vision-capable model with an instruction
	// and returns the free-text answer.
	Transcribe(ctx context.Context, image Image, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// Model overrides the service's default model for one call.
	Model string
}

// ResponseSchema describes the JSON shape a structured call must return.
type ResponseSchema struct {
	// Name identifies the schema to providers that require one.
	Name string

	// Schema is a JSON Schema document.
	Schema map[string]any
}

// Image is an encoded image sent for transcription.
type Image struct {
	// Data is the encoded image.
	Data []byte

	// MediaType is the encoding, e.g. "image/jpeg".
	MediaType string
}

// AIConfigValidator checks an LLM configuration against the live provider.
type AIConfigValidator interface {
	// ValidateLLM creates the service from config and pings it.
	ValidateLLM(config *domain.LLMSettings) error
}
