package mcp

import (
	"context"

	"github.com/abdullah-sah/brain-assistant/internal/core/domain"
	"github.com/abdullah-sah/brain-assistant/internal/core/ports/driving"
)

// mockCaptureService is a mock implementation of driving.CaptureService.
type mockCaptureService struct {
	result *driving.CaptureResult
	err    error
	got    driving.CaptureRequest
}

func (m *mockCaptureService) Capture(_ context.Context, req driving.CaptureRequest) (*driving.CaptureResult, error) {
	m.got = req
	return m.result, m.err
}

// mockTaskService is a mock implementation of driving.TaskService.
type mockTaskService struct {
	tasks     []driving.TaskView
	err       error
	filter    domain.TaskFilter
	completed map[string]bool
}

func (m *mockTaskService) List(_ context.Context, filter domain.TaskFilter) ([]driving.TaskView, error) {
	m.filter = filter
	return m.tasks, m.err
}

func (m *mockTaskService) Get(_ context.Context, id string) (*driving.TaskView, error) {
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			return &m.tasks[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockTaskService) SetCompleted(ctx context.Context, id string, completed bool) (*driving.TaskView, error) {
	if m.err != nil {
		return nil, m.err
	}
	v, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.completed == nil {
		m.completed = map[string]bool{}
	}
	m.completed[id] = completed
	v.Status = domain.TaskStatusTodo
	if completed {
		v.Status = domain.TaskStatusCompleted
	}
	return v, nil
}

func (m *mockTaskService) Delete(_ context.Context, _ string) error {
	return m.err
}

// mockNoteService is a mock implementation of driving.NoteService.
type mockNoteService struct {
	details *driving.NoteDetails
	err     error
}

func (m *mockNoteService) List(_ context.Context, _ int) ([]domain.Note, error) {
	if m.details == nil {
		return nil, m.err
	}
	return []domain.Note{m.details.Note}, m.err
}

func (m *mockNoteService) Get(_ context.Context, id string) (*driving.NoteDetails, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.details == nil || m.details.Note.ID != id {
		return nil, domain.ErrNotFound
	}
	return m.details, nil
}

func (m *mockNoteService) Delete(_ context.Context, _ string) error {
	return m.err
}

func strPtr(s string) *string { return &s }

func newTestPorts() *Ports {
	return &Ports{
		Capture: &mockCaptureService{},
		Tasks:   &mockTaskService{},
	}
}
