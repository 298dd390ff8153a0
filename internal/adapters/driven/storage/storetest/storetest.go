// Package storetest holds behaviour checks shared by every NoteStore and
// TaskStore implementation.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdullah-sah/brain-assistant/internal/core/domain"
	"github.com/abdullah-sah/brain-assistant/internal/core/ports/driven"
)

// Factory returns fresh, empty stores for one subtest.
type Factory func(t *testing.T) (driven.NoteStore, driven.TaskStore)

// Run exercises the store contract.
func Run(t *testing.T, newStores Factory) {
	t.Run("NoteRoundTrip", func(t *testing.T) { testNoteRoundTrip(t, newStores) })
	t.Run("ListNotesNewestFirst", func(t *testing.T) { testListNotes(t, newStores) })
	t.Run("DuplicateNote", func(t *testing.T) { testDuplicateNote(t, newStores) })
	t.Run("TaskRoundTrip", func(t *testing.T) { testTaskRoundTrip(t, newStores) })
	t.Run("SaveTasksAtomic", func(t *testing.T) { testSaveTasksAtomic(t, newStores) })
	t.Run("ListTasksOrder", func(t *testing.T) { testListTasksOrder(t, newStores) })
	t.Run("ListTasksFilter", func(t *testing.T) { testListTasksFilter(t, newStores) })
	t.Run("UpdateStatus", func(t *testing.T) { testUpdateStatus(t, newStores) })
	t.Run("DeleteCascades", func(t *testing.T) { testDeleteCascades(t, newStores) })
	t.Run("NotFound", func(t *testing.T) { testNotFound(t, newStores) })
}

var base = time.Date(2025, 6, 1, 9, 30, 0, 123456789, time.UTC)

func note(id string, created time.Time) *domain.Note {
	return &domain.Note{
		ID:        id,
		RawText:   "Alex: I'll send the deck.",
		Source:    domain.SourceMeeting,
		MediaType: domain.MediaTypePlainText,
		FileName:  id + ".txt",
		CreatedAt: created,
	}
}

func task(id, noteID string, due *domain.CalendarDate, created time.Time) domain.Task {
	return domain.Task{
		ID:        id,
		NoteID:    noteID,
		Title:     "Task " + id,
		DueDate:   due,
		Status:    domain.TaskStatusTodo,
		Source:    domain.SourceMeeting,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func day(y int, m time.Month, d int) *domain.CalendarDate {
	return &domain.CalendarDate{Year: y, Month: m, Day: d}
}

func ids(tasks []domain.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func testNoteRoundTrip(t *testing.T, newStores Factory) {
	ctx := context.Background()
	notes, _ := newStores(t)

	want := note("n1", base)
	require.NoError(t, notes.SaveNote(ctx, want))

	got, err := notes.GetNote(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.RawText, got.RawText)
	assert.Equal(t, want.Source, got.Source)
	assert.Equal(t, want.MediaType, got.MediaType)
	assert.Equal(t, want.FileName, got.FileName)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "created_at %s != %s", want.CreatedAt, got.CreatedAt)
}

func testListNotes(t *testing.T, newStores Factory) {
	ctx := context.Background()
	notes, _ := newStores(t)

	require.NoError(t, notes.SaveNote(ctx, note("old", base)))
	require.NoError(t, notes.SaveNote(ctx, note("new", base.Add(time.Second))))
	require.NoError(t, notes.SaveNote(ctx, note("mid", base.Add(500*time.Millisecond))))

	all, err := notes.ListNotes(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{all[0].ID, all[1].ID, all[2].ID})

	two, err := notes.ListNotes(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}

func testDuplicateNote(t *testing.T, newStores Factory) {
	ctx := context.Background()
	notes, _ := newStores(t)

	require.NoError(t, notes.SaveNote(ctx, note("n1", base)))
	assert.ErrorIs(t, notes.SaveNote(ctx, note("n1", base)), domain.ErrAlreadyExists)
}

func testTaskRoundTrip(t *testing.T, newStores Factory) {
	ctx := context.Background()
	notes, tasks := newStores(t)
	require.NoError(t, notes.SaveNote(ctx, note("n1", base)))

	desc := "for the offsite"
	want := task("t1", "n1", day(2025, 12, 15), base)
	want.Description = &desc
	require.NoError(t, tasks.SaveTasks(ctx, []domain.Task{want, task("t2", "n1", nil, base)}))

	got, err := tasks.GetTask(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, "n1", got.NoteID)
	require.NotNil(t, got.Description)
	assert.Equal(t, desc, *got.Description)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, "2025-12-15", got.DueDate.String())
	assert.Equal(t, domain.TaskStatusTodo, got.Status)
	assert.Equal(t, domain.SourceMeeting, got.Source)

	undated, err := tasks.GetTask(ctx, "t2")
	require.NoError(t, err)
	assert.Nil(t, undated.DueDate)
	assert.Nil(t, undated.Description)
}

func testSaveTasksAtomic(t *testing.T, newStores Factory) {
	ctx := context.Background()
	notes, tasks := newStores(t)
	require.NoError(t, notes.SaveNote(ctx, note("n1", base)))

	err := tasks.SaveTasks(ctx, []domain.Task{
		task("ok", "n1", nil, base),
		task("orphan", "missing-note", nil, base),
	})
	require.Error(t, err)

	_, err = tasks.GetTask(ctx, "ok")
	assert.ErrorIs(t, err, domain.ErrNotFound, "a failed batch stores nothing")
}

func testListTasksOrder(t *testing.T, newStores Factory) {
	ctx := context.Background()
	notes, tasks := newStores(t)
	require.NoError(t, notes.SaveNote(ctx, note("n1", base)))

	require.NoError(t, tasks.SaveTasks(ctx, []domain.Task{
		task("undated-old", "n1", nil, base),
		task("undated-new", "n1", nil, base.Add(time.Minute)),
		task("july", "n1", day(2025, 7, 1), base),
		task("june", "n1", day(2025, 6, 3), base),
		task("june-new", "n1", day(2025, 6, 3), base.Add(time.Minute)),
	}))

	got, err := tasks.ListTasks(ctx, domain.TaskFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"june-new", "june", "july", "undated-new", "undated-old"}, ids(got))
}

func testListTasksFilter(t *testing.T, newStores Factory) {
	ctx := context.Background()
	notes, tasks := newStores(t)
	require.NoError(t, notes.SaveNote(ctx, note("n1", base)))
	require.NoError(t, notes.SaveNote(ctx, note("n2", base)))

	done := task("done", "n2", nil, base)
	done.Status = domain.TaskStatusCompleted
	require.NoError(t, tasks.SaveTasks(ctx, []domain.Task{
		task("a", "n1", nil, base),
		task("b", "n1", nil, base.Add(time.Second)),
		done,
	}))

	todo, err := tasks.ListTasks(ctx, domain.TaskFilter{Status: domain.TaskStatusTodo})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, ids(todo))

	n2, err := tasks.ListTasks(ctx, domain.TaskFilter{NoteID: "n2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"done"}, ids(n2))

	one, err := tasks.ListTasks(ctx, domain.TaskFilter{NoteID: "n1", Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids(one))
}

func testUpdateStatus(t *testing.T, newStores Factory) {
	ctx := context.Background()
	notes, tasks := newStores(t)
	require.NoError(t, notes.SaveNote(ctx, note("n1", base)))
	require.NoError(t, tasks.SaveTasks(ctx, []domain.Task{task("t1", "n1", nil, base)}))

	require.NoError(t, tasks.UpdateTaskStatus(ctx, "t1", domain.TaskStatusCompleted))
	got, err := tasks.GetTask(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusCompleted, got.Status)

	require.NoError(t, tasks.UpdateTaskStatus(ctx, "t1", domain.TaskStatusTodo))
	got, err = tasks.GetTask(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusTodo, got.Status)

	assert.ErrorIs(t, tasks.UpdateTaskStatus(ctx, "t1", "archived"), domain.ErrInvalidInput)
}

func testDeleteCascades(t *testing.T, newStores Factory) {
	ctx := context.Background()
	notes, tasks := newStores(t)
	require.NoError(t, notes.SaveNote(ctx, note("n1", base)))
	require.NoError(t, notes.SaveNote(ctx, note("n2", base)))
	require.NoError(t, tasks.SaveTasks(ctx, []domain.Task{
		task("t1", "n1", nil, base),
		task("t2", "n2", nil, base),
	}))

	require.NoError(t, notes.DeleteNote(ctx, "n1"))

	_, err := tasks.GetTask(ctx, "t1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = tasks.GetTask(ctx, "t2")
	assert.NoError(t, err)

	require.NoError(t, tasks.DeleteTask(ctx, "t2"))
	_, err = tasks.GetTask(ctx, "t2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testNotFound(t *testing.T, newStores Factory) {
	ctx := context.Background()
	notes, tasks := newStores(t)

	_, err := notes.GetNote(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, notes.DeleteNote(ctx, "nope"), domain.ErrNotFound)

	_, err = tasks.GetTask(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, tasks.DeleteTask(ctx, "nope"), domain.ErrNotFound)
	assert.ErrorIs(t, tasks.UpdateTaskStatus(ctx, "nope", domain.TaskStatusCompleted), domain.ErrNotFound)

	empty, err := tasks.ListTasks(ctx, domain.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, empty)
}
