package services

import (
	"context"
	"time"

	"github.com/abdullah-sah/brain-assistant/internal/core/domain"
	"github.com/abdullah-sah/brain-assistant/internal/core/ports/driven"
	"github.com/abdullah-sah/brain-assistant/internal/core/ports/driving"
)

// Ensure services implement the interfaces.
var (
	_ driving.TaskService = (*TaskService)(nil)
	_ driving.NoteService = (*NoteService)(nil)
)

// TaskService manages captured commitments.
type TaskService struct {
	store driven.TaskStore
	now   func() time.Time
}

// NewTaskService creates a new task service.
func NewTaskService(store driven.TaskStore) *TaskService {
	return &TaskService{store: store, now: time.Now}
}

// List returns tasks ordered by due date with undated tasks last.
func (s *TaskService) List(ctx context.Context, filter domain.TaskFilter) ([]driving.TaskView, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	tasks, err := s.store.ListTasks(ctx, filter)
	if err != nil {
		return nil, err
	}
	domain.SortTasks(tasks)
	return s.views(tasks), nil
}

// Get retrieves a task by ID.
func (s *TaskService) Get(ctx context.Context, id string) (*driving.TaskView, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	v := s.view(*task)
	return &v, nil
}

// SetCompleted marks a task completed or reopens it as todo.
func (s *TaskService) SetCompleted(ctx context.Context, id string, completed bool) (*driving.TaskView, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	status := domain.TaskStatusTodo
	if completed {
		status = domain.TaskStatusCompleted
	}
	if err := s.store.UpdateTaskStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a task.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	if s.store == nil {
		return domain.ErrNotImplemented
	}
	return s.store.DeleteTask(ctx, id)
}

func (s *TaskService) views(tasks []domain.Task) []driving.TaskView {
	out := make([]driving.TaskView, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, s.view(t))
	}
	return out
}

// view annotates a task. Overdue is judged against today's local date.
func (s *TaskService) view(t domain.Task) driving.TaskView {
	return driving.TaskView{Task: t, IsOverdue: t.IsOverdue(domain.DateOf(s.now()))}
}

// NoteService gives read access to captured notes.
type NoteService struct {
	notes driven.NoteStore
	tasks *TaskService
}

// NewNoteService creates a new note service.
func NewNoteService(notes driven.NoteStore, tasks driven.TaskStore) *NoteService {
	return &NoteService{notes: notes, tasks: NewTaskService(tasks)}
}

// List returns notes, newest first.
func (s *NoteService) List(ctx context.Context, limit int) ([]domain.Note, error) {
	if s.notes == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.notes.ListNotes(ctx, limit)
}

// Get returns a note with the tasks extracted from it.
func (s *NoteService) Get(ctx context.Context, id string) (*driving.NoteDetails, error) {
	if s.notes == nil {
		return nil, domain.ErrNotImplemented
	}
	note, err := s.notes.GetNote(ctx, id)
	if err != nil {
		return nil, err
	}
	details := &driving.NoteDetails{Note: *note}
	if s.tasks.store == nil {
		return details, nil
	}
	tasks, err := s.tasks.List(ctx, domain.TaskFilter{NoteID: id})
	if err != nil {
		return nil, err
	}
	details.Tasks = tasks
	return details, nil
}

// Delete removes a note and its tasks.
func (s *NoteService) Delete(ctx context.Context, id string) error {
	if s.notes == nil {
		return domain.ErrNotImplemented
	}
	return s.notes.DeleteNote(ctx, id)
}
