package driving

import (
	"context"

	"github.com/abdullah-sah/brain-assistant/internal/core/domain"
)

// TaskView is a task annotated for display.
type TaskView struct {
	domain.Task

	// IsOverdue is true when the due date is before today and the task is open.
	IsOverdue bool
}

// TaskService manages captured commitments.
type TaskService interface {
	// List returns tasks by due date, undated last, newest first within a date.
	List(ctx context.Context, filter domain.TaskFilter) ([]TaskView, error)

	// Get retrieves a task by ID.
	Get(ctx context.Context, id string) (*TaskView, error)

	// SetCompleted marks a task completed or reopens it.
	SetCompleted(ctx context.Context, id string, completed bool) (*TaskView, error)

	// Delete removes a task.
	Delete(ctx context.Context, id string) error
}

// NoteDetails is a note with the tasks extracted from it.
type NoteDetails struct {
	Note  domain.Note
	Tasks []TaskView
}

// NoteService gives read access to captured notes.
type NoteService interface {
	// List returns notes, newest first.
	List(ctx context.Context, limit int) ([]domain.Note, error)

	// Get returns a note with its tasks.
	Get(ctx context.Context, id string) (*NoteDetails, error)

	// Delete removes a note and its tasks.
	Delete(ctx context.Context, id string) error
}
