// Package mcp provides an MCP (Model Context Protocol) server adapter for brain.
// It lets AI assistants capture text and manage the tasks extracted from it.
package mcp

import "errors"

// Errors returned by NewServer when a required port is missing.
var (
	ErrMissingCaptureService = errors.New("mcp: capture service is required")
	ErrMissingTaskService    = errors.New("mcp: task service is required")
)
