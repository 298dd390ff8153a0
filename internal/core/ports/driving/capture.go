package driving

import (
	"context"

	"github.com/abdullah-sah/brain-assistant/internal/core/domain"
)

// CaptureRequest is a piece of text or an uploaded file to capture.
type CaptureRequest struct {
	Content []byte

	// MediaType may be empty when FileName has a known extension.
	MediaType domain.MediaType

	// Source defaults to other.
	Source domain.SourceCategory

	FileName string
}

// CaptureResult is what a successful capture persisted.
type CaptureResult struct {
	Note  domain.Note
	Tasks []domain.Task
}

// CaptureService runs the pipeline and persists its output.
type CaptureService interface {
	// Capture returns a *domain.DecodeError when decoding fails,
	// in which case nothing is persisted.
	Capture(ctx context.Context, req CaptureRequest) (*CaptureResult, error)
}
