package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdullah-sah/brain-assistant/internal/adapters/driving/watcher"
	"github.com/abdullah-sah/brain-assistant/internal/core/domain"
	"github.com/abdullah-sah/brain-assistant/internal/core/ports/driving"
	"github.com/abdullah-sah/brain-assistant/internal/logger"
)

// Mocks for the driving ports.

type mockCaptureService struct {
	result *driving.CaptureResult
	err    error
	got    driving.CaptureRequest
}

func (m *mockCaptureService) Capture(_ context.Context, req driving.CaptureRequest) (*driving.CaptureResult, error) {
	m.got = req
	return m.result, m.err
}

type mockTaskService struct {
	tasks   []driving.TaskView
	err     error
	filter  domain.TaskFilter
	deleted string
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
	v, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	v.Status = domain.TaskStatusTodo
	if completed {
		v.Status = domain.TaskStatusCompleted
	}
	return v, nil
}

func (m *mockTaskService) Delete(_ context.Context, id string) error {
	m.deleted = id
	return m.err
}

type mockNoteService struct {
	notes   []domain.Note
	details *driving.NoteDetails
	err     error
	deleted string
}

func (m *mockNoteService) List(_ context.Context, _ int) ([]domain.Note, error) {
	return m.notes, m.err
}

func (m *mockNoteService) Get(_ context.Context, id string) (*driving.NoteDetails, error) {
	if m.details == nil || m.details.Note.ID != id {
		return nil, domain.ErrNotFound
	}
	return m.details, nil
}

func (m *mockNoteService) Delete(_ context.Context, id string) error {
	m.deleted = id
	return m.err
}

type mockSettingsService struct {
	settings domain.AppSettings
	set      map[string]string
	err      error
	provider domain.AIProvider
	model    string
	apiKey   string
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, m.err
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.err != nil {
		return m.err
	}
	if m.set == nil {
		m.set = map[string]string{}
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) SetIdentity(name string, aliases []string) error {
	m.settings.Identity = domain.IdentitySettings{Name: name, Aliases: aliases}
	return m.err
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.provider, m.model, m.apiKey = provider, model, apiKey
	m.settings.LLM.Provider = provider
	m.settings.LLM.Model = model
	m.settings.LLM.APIKey = apiKey
	return m.err
}

func (m *mockSettingsService) Keys() []string {
	return []string{"identity.name", "llm.provider"}
}

type mockValidator struct {
	err error
	got *domain.LLMSettings
}

func (m *mockValidator) ValidateLLM(config *domain.LLMSettings) error {
	m.got = config
	return m.err
}

type testServices struct {
	capture  *mockCaptureService
	tasks    *mockTaskService
	notes    *mockNoteService
	settings *mockSettingsService
	valid    *mockValidator
}

// setupTestServices installs fresh mocks and returns a cleanup func.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		capture:  &mockCaptureService{},
		tasks:    &mockTaskService{},
		notes:    &mockNoteService{},
		settings: &mockSettingsService{settings: domain.DefaultAppSettings()},
		valid:    &mockValidator{},
	}
	SetServices(Services{
		Capture:   ts.capture,
		Tasks:     ts.tasks,
		Notes:     ts.notes,
		Settings:  ts.settings,
		Validator: ts.valid,
	})
	return ts, func() { SetServices(Services{}) }
}

// resetFlags restores flag variables shared across executions.
func resetFlags() {
	verboseFlag, quietFlag = false, false
	captureSource, captureJSON, uploadType = "", false, ""
	taskStatus, taskNote, taskLimit, taskJSON, exportXLSX = "", "", 0, false, ""
	noteLimit = 20
	skipValidation = false
	watchRecursive, watchInitial, watchDebounce = false, false, watcher.DefaultDebounce
	mcpPort = 0
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		logger.SetOutput(os.Stderr)
		logger.SetVerbose(false)
		logger.SetQuiet(false)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

func strPtr(s string) *string { return &s }

var testCreated = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

func sampleTask(id, title string) domain.Task {
	due := domain.CalendarDate{Year: 2025, Month: time.June, Day: 2}
	return domain.Task{
		ID:        id,
		NoteID:    "note-1",
		Title:     title,
		DueDate:   &due,
		Status:    domain.TaskStatusTodo,
		Source:    domain.SourceMeeting,
		CreatedAt: testCreated,
	}
}

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "brain", rootCmd.Use)
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0)
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"process", "upload", "tasks", "notes", "watch", "settings", "mcp", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCmd_VerboseFlagEnablesLogger(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "", "--verbose", "version")
	require.NoError(t, err)
	assert.True(t, logger.IsVerbose())
}

func TestSetVersion(t *testing.T) {
	original := version
	defer func() { version = original }()

	SetVersion("")
	assert.Equal(t, original, version)
	SetVersion("1.2.3")
	assert.Equal(t, "1.2.3", version)
}

func TestCommands_WithoutServices(t *testing.T) {
	SetServices(Services{})

	for _, args := range [][]string{
		{"process", "hello"},
		{"tasks", "list"},
		{"notes", "list"},
		{"settings", "show"},
		{"mcp"},
	} {
		_, err := execute(t, "", args...)
		require.Error(t, err, args)
		assert.Contains(t, err.Error(), "not configured", args)
	}
}

func TestExecute_PropagatesErrors(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.tasks.err = errors.New("database error")

	_, err := execute(t, "", "tasks", "list")
	assert.ErrorContains(t, err, "database error")
}
