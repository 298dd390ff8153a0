package driving

import (
	"context"
	"time"

	"github.com/abdullah-sah/brain-assistant/internal/core/domain"
)

// FormatDecoder turns a payload of a declared media type into text.
type FormatDecoder interface {
	// Decode never panics; every failure is a *domain.DecodeError.
	Decode(ctx context.Context, content []byte, mediaType domain.MediaType) (string, *domain.DecodeError)
}

// CommitmentExtractor finds the owner's commitments in text.
type CommitmentExtractor interface {
	// Extract never fails; inference problems yield an empty list.
	Extract(ctx context.Context, text string, identity domain.Identity) []domain.CandidateCommitment
}

// DateResolver turns due-date phrases into calendar dates.
type DateResolver interface {
	// Resolve returns nil for absent or unparseable phrases.
	Resolve(phrase *string, ref time.Time) *domain.CalendarDate

	// ResolveDetailed is Resolve with the outcome and any warning.
	ResolveDetailed(phrase *string, ref time.Time) domain.DateResolution
}

// RunInput is the input of one pipeline invocation.
type RunInput struct {
	Content   []byte
	MediaType domain.MediaType
	Source    domain.SourceCategory
	Identity  domain.Identity

	// Reference is the instant relative dates are resolved against.
	// Zero means now.
	Reference time.Time
}

// PipelineService runs decode, extract and date resolution.
type PipelineService interface {
	// Run always returns a result in a terminal state.
	Run(ctx context.Context, in RunInput) domain.PipelineResult
}
