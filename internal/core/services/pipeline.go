package services

import (
	"context"
	"time"

	"github.com/abdullah-sah/brain-assistant/internal/core/domain"
	"github.com/abdullah-sah/brain-assistant/internal/core/ports/driving"
	"github.com/abdullah-sah/brain-assistant/internal/logger"
)

// Ensure PipelineService implements the interface.
var _ driving.PipelineService = (*PipelineService)(nil)

// PipelineService runs decode, extraction and date resolution in order.
// It holds no mutable state and is safe for concurrent use.
type PipelineService struct {
	decoder   driving.FormatDecoder
	extractor driving.CommitmentExtractor
	dates     driving.DateResolver
	now       func() time.Time
}

// NewPipelineService creates a pipeline from its three stages.
func NewPipelineService(
	decoder driving.FormatDecoder,
	extractor driving.CommitmentExtractor,
	dates driving.DateResolver,
) *PipelineService {
	return &PipelineService{
		decoder:   decoder,
		extractor: extractor,
		dates:     dates,
		now:       time.Now,
	}
}

// Run executes one pipeline invocation. The result is always terminal:
// DecodeFailed with the decode error, or Completed with the text and
// zero or more commitments.
func (p *PipelineService) Run(ctx context.Context, in driving.RunInput) domain.PipelineResult {
	ref := in.Reference
	if ref.IsZero() {
		ref = p.now()
	}

	logger.Section("Decoding")
	text, derr := p.decoder.Decode(ctx, in.Content, in.MediaType)
	if derr != nil {
		logger.Info("pipeline: decode failed (%s): %s", derr.Kind, derr.Cause)
		return domain.PipelineResult{State: domain.PipelineDecodeFailed, Err: derr}
	}
	logger.Info("pipeline: decoded %d characters of %s", len(text), in.MediaType)

	logger.Section("Extraction")
	candidates := p.extractor.Extract(ctx, text, in.Identity)
	logger.Info("pipeline: %d candidate commitment(s)", len(candidates))

	logger.Section("Date resolution")
	resolved := make([]domain.ResolvedCommitment, 0, len(candidates))
	for _, c := range candidates {
		resolved = append(resolved, p.resolve(c, ref))
	}

	return domain.PipelineResult{
		State:       domain.PipelineCompleted,
		Text:        text,
		Commitments: resolved,
	}
}

func (p *PipelineService) resolve(c domain.CandidateCommitment, ref time.Time) domain.ResolvedCommitment {
	rc := domain.ResolvedCommitment{
		Title:       c.Title,
		Description: c.Description,
		DueDateRaw:  c.DueDateRaw,
		Status:      domain.TaskStatusTodo,
	}

	res := p.dates.ResolveDetailed(c.DueDateRaw, ref)
	rc.DueDate = res.Date
	rc.DateWarning = res.Warning

	if rc.DueDate != nil {
		logger.Debug("pipeline: %q due %s", rc.Title, rc.DueDate)
	}
	return rc
}
