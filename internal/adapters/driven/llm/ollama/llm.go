// Package ollama provides an LLM service adapter using a local Ollama server.
package ollama

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
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
	DefaultBaseURL    = "http://localhost:11434"
	DefaultLLMModel   = "llama3.2"
	DefaultLLMTimeout = 300 * time.Second
)

// LLMConfig holds configuration for the Ollama LLM service.
type LLMConfig struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the LLM model to use (default: llama3.2).
	Model string

	// Timeout is the request timeout (default: 300s, local models are slow).
	Timeout time.Duration
}

// LLMService provides LLM operations using Ollama.
type LLMService struct {
	client  *http.Client
	baseURL string
	model   string
}

// generateRequest is the /api/generate request format. Format is either
// "json" or a JSON Schema object.
type generateRequest struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	Stream  bool     `json:"stream"`
	Format  any      `json:"format,omitempty"`
	Images  []string `json:"images,omitempty"`
	Options *options `json:"options,omitempty"`
}

// options holds generation parameters.
type options struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// generateResponse is the /api/generate response format.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// NewLLMService creates a new Ollama LLM service.
func NewLLMService(cfg LLMConfig) *LLMService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	return &LLMService{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
	}
}

// Generate produces text completion from a prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	return s.generate(ctx, s.request(prompt, opts))
}

// GenerateStructured passes the schema as the format constraint.
func (s *LLMService) GenerateStructured(
	ctx context.Context,
	prompt string,
	schema driven.ResponseSchema,
	opts driven.GenerateOptions,
) ([]byte, error) {
	req := s.request(prompt, opts)
	if schema.Schema != nil {
		req.Format = schema.Schema
	} else {
		req.Format = "json"
	}
	out, err := s.generate(ctx, req)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

// Transcribe requires a vision model such as llava or llama3.2-vision.
func (s *LLMService) Transcribe(
	ctx context.Context,
	image driven.Image,
	prompt string,
	opts driven.GenerateOptions,
) (string, error) {
	if len(image.Data) == 0 {
		return "", fmt.Errorf("ollama: %w: empty image", domain.ErrInvalidInput)
	}
	req := s.request(prompt, opts)
	req.Images = []string{base64.StdEncoding.EncodeToString(image.Data)}
	return s.generate(ctx, req)
}

func (s *LLMService) request(prompt string, opts driven.GenerateOptions) generateRequest {
	req := generateRequest{Model: s.model, Prompt: prompt}
	if opts.Model != "" {
		req.Model = opts.Model
	}
	if opts.MaxTokens > 0 || opts.Temperature > 0 {
		req.Options = &options{NumPredict: opts.MaxTokens, Temperature: opts.Temperature}
	}
	return req
}

func (s *LLMService) generate(ctx context.Context, reqBody generateRequest) (string, error) {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/generate", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama: %w: %w", domain.ErrLLMUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var genResp generateResponse
	if jsonErr := json.Unmarshal(body, &genResp); jsonErr != nil && resp.StatusCode == http.StatusOK {
		return "", fmt.Errorf("decode response: %w", jsonErr)
	}

	if resp.StatusCode != http.StatusOK {
		msg := genResp.Error
		if msg == "" {
			msg = string(body)
		}
		if resp.StatusCode >= 500 {
			return "", fmt.Errorf("ollama: %w (status %d): %s", domain.ErrLLMUnavailable, resp.StatusCode, msg)
		}
		return "", fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, msg)
	}
	if genResp.Error != "" {
		return "", fmt.Errorf("ollama error: %s", genResp.Error)
	}

	return genResp.Response, nil
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping checks the server is up by listing local models.
func (s *LLMService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: failed to create ping request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: ping failed (is Ollama running at %s?): %w", s.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama: server returned status %d", resp.StatusCode)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
