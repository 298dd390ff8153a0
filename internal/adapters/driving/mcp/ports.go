package mcp

import (
	"github.com/abdullah-sah/brain-assistant/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Capture runs the pipeline on submitted text.
	Capture driving.CaptureService

	// Tasks lists and completes tasks.
	Tasks driving.TaskService

	// Notes serves note resources. Optional.
	Notes driving.NoteService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Capture == nil {
		return ErrMissingCaptureService
	}
	if p.Tasks == nil {
		return ErrMissingTaskService
	}
	return nil
}
