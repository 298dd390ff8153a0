package driven

import (
	"context"

	"github.com/abdullah-sah/brain-assistant/internal/core/domain"
)

// DecodeBackend turns the bytes of one or more media types into text.
// Backends return *domain.DecodeError for policy failures; any other error
// is wrapped by the decoder into a DecodeError of the backend's default kind.
type DecodeBackend interface {
	// SupportedMediaTypes returns the media types this backend handles.
	SupportedMediaTypes() []domain.MediaType

	// Decode extracts text. The result may still need trimming.
	Decode(ctx context.Context, content []byte, mediaType domain.MediaType) (string, error)
}

// CommandRunner executes external commands.
// The default implementation uses os/exec; tests inject mocks.
type CommandRunner interface {
	// Run executes a command and returns its standard output.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)

	// LookPath reports whether a binary is on PATH.
	LookPath(name string) (string, error)
}
