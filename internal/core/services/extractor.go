package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/abdullah-sah/brain-assistant/internal/core/domain"
	"github.com/abdullah-sah/brain-assistant/internal/core/llmjson"
	"github.com/abdullah-sah/brain-assistant/internal/core/ports/driven"
	"github.com/abdullah-sah/brain-assistant/internal/core/ports/driving"
	"github.com/abdullah-sah/brain-assistant/internal/logger"
)

// Ensure CommitmentExtractor implements the interfaces.
var (
	_ driving.CommitmentExtractor = (*CommitmentExtractor)(nil)
	_ driven.PromptStoreAware     = (*CommitmentExtractor)(nil)
)

// DefaultExtractionPrompt is the text/template used to build extraction requests.
// It is executed with the owner's Name, their Aliases, and the subject Text.
const DefaultExtractionPrompt = `You are a personal task extraction assistant{{if .Named}} for {{.Name}}{{end}}.

Your job is to extract ONLY the tasks and commitments that {{.Name}} personally agrees to do. Do NOT extract tasks for other people.

**User Identity:**
{{- if .Aliases}}
{{.Name}} may be referred to as:
{{- range .Aliases}}
- {{.}}
{{- end}}
- "I" or "I'll" when spoken by {{.Name}} in a transcript
{{- else}}
The user may be referred to as "I" or "I'll" in first-person transcripts
{{- end}}

**What to extract:**
- Tasks where {{.Name}} explicitly commits to doing something
- Look for phrases like: "I will", "I'll", "Let me", "I can", "I'll handle", "I'll take care of", "I need to"
- Action items explicitly assigned to {{.Name}}
- Follow-up items {{.Name}} agrees to do

**What NOT to extract:**
- Tasks assigned to other people
- General team goals or discussions unless {{.Name}} specifically commits
- Questions or suggestions that aren't commitments
- Tasks where {{.Name}} is just mentioned but doesn't commit

**Task Details:**
- Provide a concise, actionable title from {{.Name}}'s perspective (e.g., "Send report to Sarah", not "Sarah needs report")
- Add a description only if there's additional context worth capturing
- Extract due dates in their original format (e.g., "tomorrow", "next Friday", "15th December", "2025-12-15")
- If no due date is mentioned, set due_date_raw to null

**If the text contains no commitments from {{.Name}}, return an empty array.**

Text to analyse:
{{.Text}}`

// TasksSchema is the response schema for extraction.
var TasksSchema = driven.ResponseSchema{
	Name: "tasks_response",
	Schema: map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"tasks"},
		"properties": map[string]any{
			"tasks": map[string]any{
				"type":        "array",
				"description": "Array of tasks extracted from the text",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []any{"title", "description", "due_date_raw"},
					"properties": map[string]any{
						"title": map[string]any{
							"type":        "string",
							"description": "A concise title for the task",
						},
						"description": map[string]any{
							"type":        []any{"string", "null"},
							"description": "Optional detailed description of the task",
						},
						"due_date_raw": map[string]any{
							"type": []any{"string", "null"},
							"description": "The due date in natural language format " +
								`(e.g., "tomorrow", "next Monday", "2025-12-15", or null if no date mentioned)`,
						},
					},
				},
			},
		},
	},
}

var compiledTasksSchema = llmjson.MustCompile(TasksSchema.Schema)

// nullish due-date strings some models emit instead of JSON null.
var nullishDates = map[string]bool{"null": true, "none": true, "n/a": true, "na": true, "no date": true}

type tasksResponse struct {
	Tasks []domain.CandidateCommitment `json:"tasks"`
}

type promptData struct {
	Name    string
	Named   bool
	Aliases []string
	Text    string
}

// CommitmentExtractor asks an LLM for the owner's commitments in a text.
// Any inference failure is logged and yields an empty list.
type CommitmentExtractor struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	timeout time.Duration
	model   string
	warn    logger.Func
}

// NewCommitmentExtractor creates an extractor. A nil llm disables extraction.
// A non-positive timeout uses the default.
func NewCommitmentExtractor(llm driven.LLMService, timeout time.Duration) *CommitmentExtractor {
	if timeout <= 0 {
		timeout = domain.DefaultExtractTimeout
	}
	return &CommitmentExtractor{llm: llm, timeout: timeout, warn: logger.Warn}
}

// SetPromptStore sets the store used to override the extraction prompt.
func (e *CommitmentExtractor) SetPromptStore(store driven.PromptStore) {
	e.prompts = store
}

// SetWarnFunc replaces the function failures are reported to.
func (e *CommitmentExtractor) SetWarnFunc(f logger.Func) {
	if f != nil {
		e.warn = f
	}
}

// SetModel overrides the model used for extraction.
func (e *CommitmentExtractor) SetModel(model string) {
	e.model = model
}

// Extract returns the owner's commitments. It never fails: no commitments
// and a failed inference call both produce an empty, non-nil list.
func (e *CommitmentExtractor) Extract(ctx context.Context, text string, identity domain.Identity) []domain.CandidateCommitment {
	out, err := e.extract(ctx, text, identity)
	if err != nil {
		e.warn("extract: %v", err)
		return []domain.CandidateCommitment{}
	}
	return out
}

func (e *CommitmentExtractor) extract(ctx context.Context, text string, identity domain.Identity) ([]domain.CandidateCommitment, error) {
	if e.llm == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrExtractionFailed, domain.ErrLLMUnavailable)
	}
	if strings.TrimSpace(text) == "" {
		return []domain.CandidateCommitment{}, nil
	}

	prompt, err := e.buildPrompt(identity, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	raw, err := e.llm.GenerateStructured(ctx, prompt, TasksSchema, driven.GenerateOptions{Model: e.model})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrExtractionFailed, e.llm.ModelName(), err)
	}
	logger.Debug("extract: %s responded in %s (%d bytes)", e.llm.ModelName(), time.Since(start), len(raw))

	raw = llmjson.StripFences(raw)
	if err := compiledTasksSchema.Validate(raw); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err)
	}

	var resp tasksResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", domain.ErrExtractionFailed, err)
	}

	return e.sanitise(resp.Tasks), nil
}

func (e *CommitmentExtractor) buildPrompt(identity domain.Identity, text string) (string, error) {
	src := DefaultExtractionPrompt
	if e.prompts != nil {
		if p, err := e.prompts.Load(driven.PromptCommitmentExtraction); err == nil && strings.TrimSpace(p) != "" {
			src = p
		}
	}

	tmpl, err := template.New(driven.PromptCommitmentExtraction).Parse(src)
	if err != nil {
		return "", fmt.Errorf("parse prompt: %w", err)
	}

	name := identity.Name
	if strings.TrimSpace(name) == "" {
		name = domain.DefaultOwnerName
	}
	var buf bytes.Buffer
	err = tmpl.Execute(&buf, promptData{
		Name:    name,
		Named:   name != domain.DefaultOwnerName,
		Aliases: identity.Aliases,
		Text:    text,
	})
	if err != nil {
		return "", fmt.Errorf("execute prompt: %w", err)
	}
	return buf.String(), nil
}

// sanitise trims fields, turns blank optional fields into nil and drops
// candidates without a title.
func (e *CommitmentExtractor) sanitise(in []domain.CandidateCommitment) []domain.CandidateCommitment {
	out := make([]domain.CandidateCommitment, 0, len(in))
	dropped := 0
	for _, c := range in {
		c.Title = strings.TrimSpace(c.Title)
		if c.Title == "" {
			dropped++
			continue
		}
		c.Description = trimOptional(c.Description)
		c.DueDateRaw = trimOptional(c.DueDateRaw)
		if c.DueDateRaw != nil && nullishDates[strings.ToLower(*c.DueDateRaw)] {
			c.DueDateRaw = nil
		}
		out = append(out, c)
	}
	if dropped > 0 {
		e.warn("extract: dropped %d candidate(s) without a title", dropped)
	}
	return out
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
