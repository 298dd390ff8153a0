// Package postgres provides a Postgres implementation of the note and task
// stores on a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abdullah-sah/brain-assistant/internal/adapters/driven/storage/postgres/migrations"
	"github.com/abdullah-sah/brain-assistant/internal/core/domain"
	"github.com/abdullah-sah/brain-assistant/internal/core/ports/driven"
	"github.com/abdullah-sah/brain-assistant/internal/logger"
)

// Postgres error codes.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// Config holds pool settings.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// DefaultConfig returns pool settings suited to a single-user CLI.
func DefaultConfig(dsn string) Config {
	return Config{
		DSN:             dsn,
		MaxConns:        4,
		MinConns:        0,
		MaxConnLifetime: 30 * time.Minute,
		MaxConnIdleTime: 5 * time.Minute,
		DialTimeout:     5 * time.Second,
	}
}

// Store is a Postgres-backed note and task store.
type Store struct {
	pool *pgxpool.Pool
}

var (
	_ driven.NoteStore = (*Store)(nil)
	_ driven.TaskStore = (*Store)(nil)
)

// Open connects, pings and migrates.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("%w: postgres dsn is empty", domain.ErrInvalidInput)
	}
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	pc.MinConns = cfg.MinConns
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "brain"

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx, migrations.FS); err != nil {
		pool.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	logger.Debug("postgres: connected to %s", pc.ConnConfig.Host)
	return s, nil
}

// Close closes the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) migrate(ctx context.Context, fsys fs.FS) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current int
	if err := s.pool.QueryRow(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	names, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)

	for _, name := range names {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil || version <= current {
			continue
		}
		script, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, string(script)); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", version)
			return err
		})
		if err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}
	return nil
}

// SaveNote stores a new note.
func (s *Store) SaveNote(ctx context.Context, note *domain.Note) error {
	if note == nil || note.ID == "" {
		return domain.ErrInvalidInput
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO notes (id, raw_text, source, media_type, file_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		note.ID, note.RawText, string(note.Source), string(note.MediaType), note.FileName, note.CreatedAt)
	if err != nil {
		return mapError("saving note", err)
	}
	return nil
}

// GetNote retrieves a note by ID.
func (s *Store) GetNote(ctx context.Context, id string) (*domain.Note, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, raw_text, source, media_type, file_name, created_at
		FROM notes WHERE id = $1`, id)
	note, err := scanNote(row)
	if err != nil {
		return nil, mapError("scanning note", err)
	}
	return note, nil
}

// ListNotes returns notes newest first.
func (s *Store) ListNotes(ctx context.Context, limit int) ([]domain.Note, error) {
	query := `SELECT id, raw_text, source, media_type, file_name, created_at
		FROM notes ORDER BY created_at DESC, id ASC`
	var args []any
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying notes: %w", err)
	}
	defer rows.Close()

	var notes []domain.Note //nolint:prealloc // size unknown from query
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}
		notes = append(notes, *note)
	}
	return notes, rows.Err()
}

// DeleteNote removes a note and, through the cascade, its tasks.
func (s *Store) DeleteNote(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM notes WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting note: %w", err)
	}
	return requireAffected(tag)
}

const taskColumns = `id, note_id, title, description, due_date, status, source, created_at, updated_at`

// SaveTasks inserts tasks in one transaction using a batch.
func (s *Store) SaveTasks(ctx context.Context, tasks []domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	now := time.Now().UTC()
	batch := &pgx.Batch{}
	for i := range tasks {
		t := &tasks[i]
		if t.ID == "" {
			return domain.ErrInvalidInput
		}
		if t.Status == "" {
			t.Status = domain.TaskStatusTodo
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}
		if t.UpdatedAt.IsZero() {
			t.UpdatedAt = t.CreatedAt
		}
		batch.Queue(`INSERT INTO tasks (`+taskColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			t.ID, t.NoteID, t.Title, t.Description, dateValue(t.DueDate),
			string(t.Status), string(t.Source), t.CreatedAt, t.UpdatedAt)
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return mapError("saving tasks", err)
		}
		return nil
	})
}

// GetTask retrieves a task by ID.
func (s *Store) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	task, err := scanTask(row)
	if err != nil {
		return nil, mapError("scanning task", err)
	}
	return task, nil
}

// ListTasks returns tasks with dated tasks first, soonest first.
func (s *Store) ListTasks(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error) {
	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.NoteID != "" {
		args = append(args, filter.NoteID)
		where = append(where, fmt.Sprintf("note_id = $%d", len(args)))
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY due_date ASC NULLS LAST, created_at DESC, id ASC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task //nolint:prealloc // size unknown from query
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

// UpdateTaskStatus sets a task's status and bumps updated_at.
func (s *Store) UpdateTaskStatus(ctx context.Context, id string, status domain.TaskStatus) error {
	if !status.IsValid() {
		return domain.ErrInvalidInput
	}
	tag, err := s.pool.Exec(ctx, "UPDATE tasks SET status = $1, updated_at = now() WHERE id = $2",
		string(status), id)
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	return requireAffected(tag)
}

// DeleteTask removes a task.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	return requireAffected(tag)
}

func scanNote(row pgx.Row) (*domain.Note, error) {
	var (
		note              domain.Note
		source, mediaType string
	)
	if err := row.Scan(&note.ID, &note.RawText, &source, &mediaType, &note.FileName, &note.CreatedAt); err != nil {
		return nil, err
	}
	note.Source = domain.SourceCategory(source)
	note.MediaType = domain.MediaType(mediaType)
	note.CreatedAt = note.CreatedAt.UTC()
	return &note, nil
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var (
		task           domain.Task
		due            *time.Time
		status, source string
	)
	if err := row.Scan(&task.ID, &task.NoteID, &task.Title, &task.Description, &due,
		&status, &source, &task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, err
	}
	task.Status = domain.TaskStatus(status)
	task.Source = domain.SourceCategory(source)
	if due != nil {
		d := domain.DateOf(due.UTC())
		task.DueDate = &d
	}
	task.CreatedAt = task.CreatedAt.UTC()
	task.UpdatedAt = task.UpdatedAt.UTC()
	return &task, nil
}

// dateValue maps a calendar date to a DATE parameter.
func dateValue(d *domain.CalendarDate) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time(time.UTC)
	return &t
}

func requireAffected(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// mapError translates driver errors into domain errors.
func mapError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%w: %s", domain.ErrAlreadyExists, pgErr.Detail)
		case codeForeignKeyViolation:
			return fmt.Errorf("%w: %s", domain.ErrNotFound, pgErr.Detail)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
