package domain

import (
	"sort"
	"time"
)

// Note is the immutable source-text record a pipeline run is anchored to.
type Note struct {
	ID        string
	RawText   string
	Source    SourceCategory
	MediaType MediaType

	// FileName is the uploaded file name, empty for pasted text.
	FileName  string
	CreatedAt time.Time
}

// TaskStatus is the lifecycle status of a task.
type TaskStatus string

// Task statuses. New tasks start as todo.
const (
	TaskStatusTodo      TaskStatus = "todo"
	TaskStatusCompleted TaskStatus = "completed"
)

// IsValid returns true if the status is recognised.
func (s TaskStatus) IsValid() bool {
	return s == TaskStatusTodo || s == TaskStatusCompleted
}

// String returns the string representation.
func (s TaskStatus) String() string {
	return string(s)
}

// Task is a persisted commitment referencing its note.
type Task struct {
	ID          string
	NoteID      string
	Title       string
	Description *string
	DueDate     *CalendarDate
	Status      TaskStatus
	Source      SourceCategory
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsOverdue reports whether the task is past due relative to today
// and has not been completed.
func (t Task) IsOverdue(today CalendarDate) bool {
	return t.DueDate != nil && t.Status != TaskStatusCompleted && t.DueDate.Before(today)
}

// TaskFilter narrows task listings.
type TaskFilter struct {
	// Status limits results to one status. Empty means all.
	Status TaskStatus

	// NoteID limits results to tasks of one note.
	NoteID string

	// Limit caps the number of results. Zero means no limit.
	Limit int
}

// SortTasks orders tasks by due date ascending with undated tasks last,
// then by creation time descending, then by ID for stability.
func SortTasks(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		switch {
		case a.DueDate != nil && b.DueDate == nil:
			return true
		case a.DueDate == nil && b.DueDate != nil:
			return false
		case a.DueDate != nil && *a.DueDate != *b.DueDate:
			return a.DueDate.Before(*b.DueDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
