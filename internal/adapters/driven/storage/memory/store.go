package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/abdullah-sah/brain-assistant/internal/core/domain"
	"github.com/abdullah-sah/brain-assistant/internal/core/ports/driven"
)

// Ensure Store implements the interfaces.
var (
	_ driven.NoteStore = (*Store)(nil)
	_ driven.TaskStore = (*Store)(nil)
)

// Store keeps notes and tasks in maps guarded by one lock.
type Store struct {
	mu    sync.RWMutex
	notes map[string]domain.Note
	tasks map[string]domain.Task

	// FailSaveTasks makes SaveTasks return this error. Used by tests.
	FailSaveTasks error
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		notes: make(map[string]domain.Note),
		tasks: make(map[string]domain.Task),
	}
}

// SaveNote stores a new note.
func (s *Store) SaveNote(_ context.Context, note *domain.Note) error {
	if note == nil || note.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notes[note.ID]; ok {
		return domain.ErrAlreadyExists
	}
	s.notes[note.ID] = *note
	return nil
}

// GetNote retrieves a note by ID.
func (s *Store) GetNote(_ context.Context, id string) (*domain.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	note, ok := s.notes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &note, nil
}

// ListNotes returns notes newest first.
func (s *Store) ListNotes(_ context.Context, limit int) ([]domain.Note, error) {
	s.mu.RLock()
	notes := make([]domain.Note, 0, len(s.notes))
	for _, n := range s.notes {
		notes = append(notes, n)
	}
	s.mu.RUnlock()

	sort.Slice(notes, func(i, j int) bool {
		if !notes[i].CreatedAt.Equal(notes[j].CreatedAt) {
			return notes[i].CreatedAt.After(notes[j].CreatedAt)
		}
		return notes[i].ID < notes[j].ID
	})
	if limit > 0 && len(notes) > limit {
		notes = notes[:limit]
	}
	return notes, nil
}

// DeleteNote removes a note and its tasks.
func (s *Store) DeleteNote(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notes[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.notes, id)
	for tid, t := range s.tasks {
		if t.NoteID == id {
			delete(s.tasks, tid)
		}
	}
	return nil
}

// SaveTasks inserts all tasks or none.
func (s *Store) SaveTasks(_ context.Context, tasks []domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSaveTasks != nil {
		return s.FailSaveTasks
	}

	seen := make(map[string]bool, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		if t.ID == "" || seen[t.ID] {
			return domain.ErrInvalidInput
		}
		if _, ok := s.tasks[t.ID]; ok {
			return domain.ErrAlreadyExists
		}
		if _, ok := s.notes[t.NoteID]; !ok {
			return domain.ErrNotFound
		}
		seen[t.ID] = true
	}
	for _, t := range tasks {
		s.tasks[t.ID] = t
	}
	return nil
}

// GetTask retrieves a task by ID.
func (s *Store) GetTask(_ context.Context, id string) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &task, nil
}

// ListTasks returns filtered tasks in display order.
func (s *Store) ListTasks(_ context.Context, filter domain.TaskFilter) ([]domain.Task, error) {
	s.mu.RLock()
	tasks := make([]domain.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.NoteID != "" && t.NoteID != filter.NoteID {
			continue
		}
		tasks = append(tasks, t)
	}
	s.mu.RUnlock()

	domain.SortTasks(tasks)
	if filter.Limit > 0 && len(tasks) > filter.Limit {
		tasks = tasks[:filter.Limit]
	}
	return tasks, nil
}

// UpdateTaskStatus sets a task's status.
func (s *Store) UpdateTaskStatus(_ context.Context, id string, status domain.TaskStatus) error {
	if !status.IsValid() {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return domain.ErrNotFound
	}
	task.Status = status
	s.tasks[id] = task
	return nil
}

// DeleteTask removes a task.
func (s *Store) DeleteTask(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}
