// Package anthropic provides an LLM service adapter using the Anthropic
// Messages API. Structured output is obtained through a forced tool call.
package anthropic

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/abdullah-sah/brain-assistant/internal/core/domain"
	"github.com/abdullah-sah/brain-assistant/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-3-5-haiku-latest"
	DefaultTimeout   = 120 * time.Second
	DefaultMaxTokens = 4096

	// anthropicVersion is the required API version header.
	anthropicVersion = "2023-06-01"
)

const maxErrorBody = 512

// Config holds configuration for the Anthropic LLM service.
type Config struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.anthropic.com).
	BaseURL string

	// Model is the LLM model to use (default: claude-3-5-haiku-latest).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// LLMService provides LLM operations using Anthropic API.
type LLMService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// messagesRequest is the /v1/messages request format.
type messagesRequest struct {
	Model       string     `json:"model"`
	Messages    []message  `json:"messages"`
	MaxTokens   int        `json:"max_tokens"`
	Temperature *float64   `json:"temperature,omitempty"`
	Tools       []tool     `json:"tools,omitempty"`
	ToolChoice  *toolMatch `json:"tool_choice,omitempty"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema"`
}

type toolMatch struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// messagesResponse is the /v1/messages response format.
type messagesResponse struct {
	Content []struct {
		Type  string          `json:"type"`
		Text  string          `json:"text"`
		Name  string          `json:"name"`
		Input json.RawMessage `json:"input"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewLLMService creates a new Anthropic LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &LLMService{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Generate produces text completion from a prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	resp, err := s.send(ctx, s.request(opts, contentBlock{Type: "text", Text: prompt}))
	if err != nil {
		return "", err
	}
	return textOf(resp), nil
}

// GenerateStructured forces a single tool call whose input schema is the
// response schema and returns the tool input.
func (s *LLMService) GenerateStructured(
	ctx context.Context,
	prompt string,
	schema driven.ResponseSchema,
	opts driven.GenerateOptions,
) ([]byte, error) {
	name := schema.Name
	if name == "" {
		name = "respond"
	}
	req := s.request(opts, contentBlock{Type: "text", Text: prompt})
	req.Tools = []tool{{
		Name:        name,
		Description: "Record the response in the required structure.",
		InputSchema: schema.Schema,
	}}
	req.ToolChoice = &toolMatch{Type: "tool", Name: name}

	resp, err := s.send(ctx, req)
	if err != nil {
		return nil, err
	}
	for _, block := range resp.Content {
		if block.Type == "tool_use" && block.Name == name {
			return block.Input, nil
		}
	}
	// Fall back to text, which the caller still validates.
	if text := textOf(resp); text != "" {
		return []byte(text), nil
	}
	return nil, errors.New("anthropic: no structured output returned")
}

// Transcribe sends the image as a base64 content block followed by the instruction.
func (s *LLMService) Transcribe(
	ctx context.Context,
	image driven.Image,
	prompt string,
	opts driven.GenerateOptions,
) (string, error) {
	if len(image.Data) == 0 {
		return "", fmt.Errorf("anthropic: %w: empty image", domain.ErrInvalidInput)
	}
	resp, err := s.send(ctx, s.request(opts,
		contentBlock{Type: "image", Source: &imageSource{
			Type:      "base64",
			MediaType: image.MediaType,
			Data:      base64.StdEncoding.EncodeToString(image.Data),
		}},
		contentBlock{Type: "text", Text: prompt},
	))
	if err != nil {
		return "", err
	}
	return textOf(resp), nil
}

func (s *LLMService) request(opts driven.GenerateOptions, blocks ...contentBlock) messagesRequest {
	req := messagesRequest{
		Model:     s.model,
		Messages:  []message{{Role: "user", Content: blocks}},
		MaxTokens: DefaultMaxTokens,
	}
	if opts.Model != "" {
		req.Model = opts.Model
	}
	if opts.MaxTokens > 0 {
		req.MaxTokens = opts.MaxTokens
	}
	if opts.Temperature > 0 {
		t := opts.Temperature
		req.Temperature = &t
	}
	return req
}

func (s *LLMService) send(ctx context.Context, reqBody messagesRequest) (*messagesResponse, error) {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/messages", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	s.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w: %w", domain.ErrLLMUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode, body)
	}

	var msgResp messagesResponse
	if err := json.Unmarshal(body, &msgResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if msgResp.Error != nil {
		return nil, fmt.Errorf("anthropic error: %s", msgResp.Error.Message)
	}
	if len(msgResp.Content) == 0 {
		return nil, errors.New("anthropic: no response content returned")
	}
	return &msgResp, nil
}

func (s *LLMService) setHeaders(req *http.Request) {
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
}

func textOf(resp *messagesResponse) string {
	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}

// statusError maps an HTTP failure to a domain error. Anthropic uses 529
// for overload.
func statusError(code int, body []byte) error {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	switch {
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("anthropic: %w (status %d): %s", domain.ErrRateLimited, code, string(body))
	case code >= 500:
		return fmt.Errorf("anthropic: %w (status %d): %s", domain.ErrLLMUnavailable, code, string(body))
	default:
		return fmt.Errorf("anthropic error (status %d): %s", code, string(body))
	}
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the API key by listing models.
func (s *LLMService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/v1/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("anthropic: failed to create ping request: %w", err)
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("anthropic: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("anthropic: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
