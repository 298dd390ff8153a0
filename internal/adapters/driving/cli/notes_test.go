package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdullah-sah/brain-assistant/internal/core/domain"
	"github.com/abdullah-sah/brain-assistant/internal/core/ports/driving"
)

func TestNotesList(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.notes.notes = []domain.Note{
		{ID: "note-1", RawText: "Standup\nI'll fix the build", Source: domain.SourceMeeting, CreatedAt: testCreated},
		{ID: "note-2", RawText: "Email from Sam", Source: domain.SourceEmail, CreatedAt: testCreated},
	}

	out, err := execute(t, "", "notes", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "note-1")
	assert.Contains(t, out, "Standup")
	assert.NotContains(t, out, "fix the build")
	assert.Contains(t, out, "Email from Sam")
	assert.Contains(t, out, "Total: 2 notes")
}

func TestNotesList_Empty(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "", "notes", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No notes found.")
}

func TestNotesShow(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.notes.details = &driving.NoteDetails{
		Note: domain.Note{
			ID:        "note-1",
			RawText:   "I'll send the deck",
			Source:    domain.SourceMeeting,
			MediaType: domain.MediaTypePlainText,
			FileName:  "standup.txt",
			CreatedAt: testCreated,
		},
		Tasks: []driving.TaskView{{Task: sampleTask("task-1", "Send the deck")}},
	}

	out, err := execute(t, "", "notes", "show", "note-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Note: note-1")
	assert.Contains(t, out, "File:     standup.txt")
	assert.Contains(t, out, "I'll send the deck")
	assert.Contains(t, out, "Tasks (1):")
	assert.Contains(t, out, "[ ] Send the deck")
}

func TestNotesShow_NoTasks(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.notes.details = &driving.NoteDetails{Note: domain.Note{ID: "note-1", RawText: "hello"}}

	out, err := execute(t, "", "notes", "show", "note-1")
	require.NoError(t, err)
	assert.Contains(t, out, "No tasks were extracted from this note.")
}

func TestNotesShow_NotFound(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "", "notes", "show", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNotesDelete(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "", "notes", "delete", "note-1")
	require.NoError(t, err)
	assert.Equal(t, "note-1", ts.notes.deleted)
	assert.Contains(t, out, "Note note-1 and its tasks deleted.")
}

func TestPreview(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"short", "hello", "hello"},
		{"first line", "  first\nsecond", "first"},
		{"long", strings.Repeat("a", 80), strings.Repeat("a", 57) + "..."},
		{"runes", strings.Repeat("é", 61), strings.Repeat("é", 57) + "..."},
		{"exact", strings.Repeat("b", 60), strings.Repeat("b", 60)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, preview(tt.text))
		})
	}
}
