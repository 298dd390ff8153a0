package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/abdullah-sah/brain-assistant/internal/core/domain"
	"github.com/abdullah-sah/brain-assistant/internal/core/ports/driving"
	"github.com/abdullah-sah/brain-assistant/internal/core/services"
)

// defaultTaskLimit caps list_tasks when no limit is given.
const defaultTaskLimit = 50

// CaptureTextInput is the input schema for the capture_text tool.
type CaptureTextInput struct {
	Text   string `json:"text" jsonschema:"the text to extract commitments from, e.g. a meeting transcript or email"`
	Source string `json:"source,omitempty" jsonschema:"where the text came from: meeting, email, message, note or other"`
}

// CaptureTextOutput is the output schema for the capture_text tool.
type CaptureTextOutput struct {
	NoteID string       `json:"note_id"`
	Tasks  []TaskOutput `json:"tasks"`
	Count  int          `json:"count"`
}

// ListTasksInput is the input schema for the list_tasks tool.
type ListTasksInput struct {
	Status string `json:"status,omitempty" jsonschema:"filter by status: todo or completed (default all)"`
	NoteID string `json:"note_id,omitempty" jsonschema:"only tasks extracted from this note"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of tasks to return (default 50)"`
}

// ListTasksOutput is the output schema for the list_tasks tool.
type ListTasksOutput struct {
	Tasks []TaskOutput `json:"tasks"`
	Count int          `json:"count"`
}

// CompleteTaskInput is the input schema for the complete_task tool.
type CompleteTaskInput struct {
	ID     string `json:"id" jsonschema:"the task id"`
	Reopen bool   `json:"reopen,omitempty" jsonschema:"set true to mark the task as todo again"`
}

// TaskOutput is a task as returned to the assistant.
type TaskOutput struct {
	ID          string `json:"id"`
	NoteID      string `json:"note_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
	Status      string `json:"status"`
	Source      string `json:"source"`
	Overdue     bool   `json:"overdue"`
	CreatedAt   string `json:"created_at"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "capture_text",
		Description: "Extract the user's commitments from a piece of text and save them as tasks",
	}, s.handleCaptureText)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_tasks",
		Description: "List captured tasks ordered by due date",
	}, s.handleListTasks)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "complete_task",
		Description: "Mark a task as completed, or reopen it",
	}, s.handleCompleteTask)
}

func (s *Server) handleCaptureText(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CaptureTextInput,
) (*mcp.CallToolResult, CaptureTextOutput, error) {
	source, ok := domain.ParseSourceCategory(input.Source)
	if !ok {
		return nil, CaptureTextOutput{}, fmt.Errorf("%w: unknown source %q", domain.ErrInvalidInput, input.Source)
	}

	res, err := s.ports.Capture.Capture(ctx, driving.CaptureRequest{
		Content:   []byte(input.Text),
		MediaType: domain.MediaTypePlainText,
		Source:    source,
	})
	if err != nil {
		var derr *domain.DecodeError
		if errors.As(err, &derr) {
			return nil, CaptureTextOutput{}, errors.New(derr.Cause)
		}
		var perr *services.PartialCaptureError
		if errors.As(err, &perr) {
			return nil, CaptureTextOutput{NoteID: perr.NoteID},
				fmt.Errorf("capture_text: %w", err)
		}
		return nil, CaptureTextOutput{}, err
	}

	today := domain.DateOf(time.Now())
	output := CaptureTextOutput{
		NoteID: res.Note.ID,
		Tasks:  make([]TaskOutput, len(res.Tasks)),
		Count:  len(res.Tasks),
	}
	for i, t := range res.Tasks {
		output.Tasks[i] = toTaskOutput(driving.TaskView{Task: t, IsOverdue: t.IsOverdue(today)})
	}
	return nil, output, nil
}

func (s *Server) handleListTasks(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListTasksInput,
) (*mcp.CallToolResult, ListTasksOutput, error) {
	status := domain.TaskStatus(input.Status)
	if status != "" && !status.IsValid() {
		return nil, ListTasksOutput{}, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, input.Status)
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultTaskLimit
	}

	tasks, err := s.ports.Tasks.List(ctx, domain.TaskFilter{
		Status: status,
		NoteID: input.NoteID,
		Limit:  limit,
	})
	if err != nil {
		return nil, ListTasksOutput{}, err
	}

	output := ListTasksOutput{
		Tasks: make([]TaskOutput, len(tasks)),
		Count: len(tasks),
	}
	for i := range tasks {
		output.Tasks[i] = toTaskOutput(tasks[i])
	}
	return nil, output, nil
}

func (s *Server) handleCompleteTask(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CompleteTaskInput,
) (*mcp.CallToolResult, TaskOutput, error) {
	if input.ID == "" {
		return nil, TaskOutput{}, fmt.Errorf("%w: id is required", domain.ErrInvalidInput)
	}
	view, err := s.ports.Tasks.SetCompleted(ctx, input.ID, !input.Reopen)
	if err != nil {
		return nil, TaskOutput{}, err
	}
	return nil, toTaskOutput(*view), nil
}

func toTaskOutput(v driving.TaskView) TaskOutput {
	out := TaskOutput{
		ID:        v.ID,
		NoteID:    v.NoteID,
		Title:     v.Title,
		Status:    v.Status.String(),
		Source:    v.Source.String(),
		Overdue:   v.IsOverdue,
		CreatedAt: v.CreatedAt.UTC().Format(time.RFC3339),
	}
	if v.Description != nil {
		out.Description = *v.Description
	}
	if v.DueDate != nil {
		out.DueDate = v.DueDate.String()
	}
	return out
}
