package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/abdullah-sah/brain-assistant/internal/core/domain"
	"github.com/abdullah-sah/brain-assistant/internal/core/ports/driven"
	"github.com/abdullah-sah/brain-assistant/internal/core/ports/driving"
	"github.com/abdullah-sah/brain-assistant/internal/logger"
)

// Ensure CaptureService implements the interface.
var _ driving.CaptureService = (*CaptureService)(nil)

// PartialCaptureError reports a note that was stored while its tasks were not.
type PartialCaptureError struct {
	NoteID string
	Err    error
}

func (e *PartialCaptureError) Error() string {
	return fmt.Sprintf("note %s saved but tasks were not: %v", e.NoteID, e.Err)
}

func (e *PartialCaptureError) Unwrap() error {
	return e.Err
}

// CaptureService runs the pipeline and persists the note and its tasks.
type CaptureService struct {
	pipeline driving.PipelineService
	notes    driven.NoteStore
	tasks    driven.TaskStore
	identity domain.Identity
	maxBytes int64
	now      func() time.Time
}

// NewCaptureService creates a capture service. A non-positive maxBytes
// uses the default ceiling.
func NewCaptureService(
	pipeline driving.PipelineService,
	notes driven.NoteStore,
	tasks driven.TaskStore,
	identity domain.Identity,
	maxBytes int64,
) *CaptureService {
	if maxBytes <= 0 {
		maxBytes = domain.DefaultMaxUploadBytes
	}
	return &CaptureService{
		pipeline: pipeline,
		notes:    notes,
		tasks:    tasks,
		identity: identity,
		maxBytes: maxBytes,
		now:      time.Now,
	}
}

// Capture validates the request, runs the pipeline and stores the result.
// Nothing is stored when decoding fails. If the note is stored but the
// tasks are not, the result carries the note and the error is a
// *PartialCaptureError.
func (s *CaptureService) Capture(ctx context.Context, req driving.CaptureRequest) (*driving.CaptureResult, error) {
	if s.pipeline == nil || s.notes == nil || s.tasks == nil {
		return nil, domain.ErrNotImplemented
	}

	source := req.Source
	if source == "" {
		source = domain.SourceOther
	}
	if !source.IsValid() {
		return nil, fmt.Errorf("%w: source %q", domain.ErrInvalidInput, source)
	}

	mediaType, err := resolveMediaType(req)
	if err != nil {
		return nil, err
	}

	if int64(len(req.Content)) > s.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", domain.ErrTooLarge, len(req.Content), s.maxBytes)
	}

	now := s.now()
	res := s.pipeline.Run(ctx, driving.RunInput{
		Content:   req.Content,
		MediaType: mediaType,
		Source:    source,
		Identity:  s.identity,
		Reference: now,
	})
	if !res.Completed() {
		if res.Err != nil {
			return nil, res.Err
		}
		return nil, fmt.Errorf("pipeline ended in state %s", res.State)
	}

	note := domain.Note{
		ID:        uuid.New().String(),
		RawText:   res.Text,
		Source:    source,
		MediaType: mediaType,
		FileName:  req.FileName,
		CreatedAt: now.UTC(),
	}
	if err := s.notes.SaveNote(ctx, &note); err != nil {
		return nil, fmt.Errorf("save note: %w", err)
	}

	tasks := make([]domain.Task, 0, len(res.Commitments))
	for _, c := range res.Commitments {
		tasks = append(tasks, domain.Task{
			ID:          uuid.New().String(),
			NoteID:      note.ID,
			Title:       c.Title,
			Description: c.Description,
			DueDate:     c.DueDate,
			Status:      domain.TaskStatusTodo,
			Source:      source,
			CreatedAt:   note.CreatedAt,
			UpdatedAt:   note.CreatedAt,
		})
	}

	result := &driving.CaptureResult{Note: note, Tasks: tasks}
	if len(tasks) == 0 {
		logger.Info("capture: note %s saved with no tasks", note.ID)
		return result, nil
	}
	if err := s.tasks.SaveTasks(ctx, tasks); err != nil {
		result.Tasks = nil
		return result, &PartialCaptureError{NoteID: note.ID, Err: err}
	}

	logger.Info("capture: note %s saved with %d task(s)", note.ID, len(tasks))
	return result, nil
}

func resolveMediaType(req driving.CaptureRequest) (domain.MediaType, error) {
	if req.MediaType != "" {
		return domain.ParseMediaType(string(req.MediaType)), nil
	}
	if req.FileName == "" {
		return domain.MediaTypePlainText, nil
	}
	mt, ok := domain.MediaTypeFromPath(req.FileName)
	if !ok {
		return "", domain.NewDecodeError(domain.DecodeUnsupportedType,
			fmt.Sprintf("Unsupported file type: %s", req.FileName), domain.ErrUnsupportedType)
	}
	return mt, nil
}
