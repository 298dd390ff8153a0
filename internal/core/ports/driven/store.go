package driven

import (
	"context"

	"github.com/abdullah-sah/brain-assistant/internal/core/domain"
)

// NoteStore persists captured source text.
type NoteStore interface {
	// SaveNote stores a new note.
	SaveNote(ctx context.Context, note *domain.Note) error

	// GetNote retrieves a note by ID.
	GetNote(ctx context.Context, id string) (*domain.Note, error)

	// ListNotes returns notes, newest first. Zero limit means all.
	ListNotes(ctx context.Context, limit int) ([]domain.Note, error)

	// DeleteNote removes a note and its tasks.
	DeleteNote(ctx context.Context, id string) error
}

// TaskStore persists commitments.
type TaskStore interface {
	// SaveTasks inserts tasks in one batch. Either all are stored or none.
	SaveTasks(ctx context.Context, tasks []domain.Task) error

	// GetTask retrieves a task by ID.
	GetTask(ctx context.Context, id string) (*domain.Task, error)

	// ListTasks returns tasks ordered by due date ascending with undated
	// tasks last, then by creation time descending.
	ListTasks(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error)

	// UpdateTaskStatus sets a task's status.
	UpdateTaskStatus(ctx context.Context, id string, status domain.TaskStatus) error

	// DeleteTask removes a task.
	DeleteTask(ctx context.Context, id string) error
}
