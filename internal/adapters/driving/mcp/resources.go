package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/abdullah-sah/brain-assistant/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for brain resources.
	uriScheme = "brain://"

	jsonMIME = "application/json"
)

// noteOutput is the JSON body of a note resource.
type noteOutput struct {
	ID        string       `json:"id"`
	Source    string       `json:"source"`
	MediaType string       `json:"media_type"`
	FileName  string       `json:"file_name,omitempty"`
	CreatedAt string       `json:"created_at"`
	Text      string       `json:"text"`
	Tasks     []TaskOutput `json:"tasks"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "tasks",
		Name:        "tasks",
		Description: "Open tasks ordered by due date",
		MIMEType:    jsonMIME,
	}, s.handleTasksResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "notes/{noteId}",
		Name:        "note",
		Description: "A captured note with the tasks extracted from it",
		MIMEType:    jsonMIME,
	}, s.handleNoteResource)
}

func (s *Server) handleTasksResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	tasks, err := s.ports.Tasks.List(ctx, domain.TaskFilter{Status: domain.TaskStatusTodo})
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}

	out := make([]TaskOutput, len(tasks))
	for i := range tasks {
		out[i] = toTaskOutput(tasks[i])
	}
	return jsonResult(req.Params.URI, out)
}

func (s *Server) handleNoteResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Notes == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	noteID := extractNoteID(req.Params.URI)
	if noteID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	details, err := s.ports.Notes.Get(ctx, noteID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting note: %w", err)
	}

	note := details.Note
	out := noteOutput{
		ID:        note.ID,
		Source:    note.Source.String(),
		MediaType: note.MediaType.String(),
		FileName:  note.FileName,
		CreatedAt: note.CreatedAt.UTC().Format(time.RFC3339),
		Text:      note.RawText,
		Tasks:     make([]TaskOutput, len(details.Tasks)),
	}
	for i := range details.Tasks {
		out.Tasks[i] = toTaskOutput(details.Tasks[i])
	}
	return jsonResult(req.Params.URI, out)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: jsonMIME,
			Text:     string(data),
		}},
	}, nil
}

// extractNoteID extracts the note ID from a URI like brain://notes/{noteId}.
func extractNoteID(uri string) string {
	const prefix = uriScheme + "notes/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
