package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an inference service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// LLMSettings holds inference provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the model used for extraction.
	Model string

	// VisionModel is the model used for image OCR. Empty means Model.
	VisionModel string

	// BaseURL is the API endpoint. Empty uses the provider default.
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// RequestsPerMinute throttles inference calls. Zero disables throttling.
	RequestsPerMinute int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// IdentitySettings configures whose commitments are extracted.
type IdentitySettings struct {
	Name    string
	Aliases []string
}

// Identity builds the immutable identity context.
func (s IdentitySettings) Identity() Identity {
	return NewIdentity(s.Name, s.Aliases...)
}

// PipelineSettings bounds the external calls of a run.
type PipelineSettings struct {
	DecodeTimeout  time.Duration
	ExtractTimeout time.Duration
}

// DateSettings configures the due-date plausibility window.
type DateSettings struct {
	// PastYears and PastDays bound how far before the reference instant
	// a date is plausible, in calendar years plus days. Both zero means
	// DefaultPastYears.
	PastYears int
	PastDays  int

	// FutureYears is how many years after the reference instant a date is plausible.
	FutureYears int

	// StrictWindow drops out-of-range dates instead of only warning.
	StrictWindow bool
}

// ImageSettings configures OCR preprocessing.
type ImageSettings struct {
	MaxWidth    int
	JPEGQuality int

	// HEICConverter forces a converter binary. Empty tries each known tool.
	HEICConverter string
}

// StorageBackend selects the persistence adapter.
type StorageBackend string

// Available storage backends.
const (
	StorageSQLite   StorageBackend = "sqlite"
	StoragePostgres StorageBackend = "postgres"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	return b == StorageSQLite || b == StoragePostgres
}

// StorageSettings configures persistence.
type StorageSettings struct {
	Backend StorageBackend

	// Path is the SQLite data directory. Empty uses ~/.brain/data.
	Path string

	// DSN is the Postgres connection string.
	DSN string
}

// AppSettings aggregates all application settings.
type AppSettings struct {
	Identity IdentitySettings
	LLM      LLMSettings
	Pipeline PipelineSettings
	Dates    DateSettings
	Image    ImageSettings
	Storage  StorageSettings

	// MaxUploadBytes is the size ceiling enforced before decoding.
	MaxUploadBytes int64
}

// Default values.
const (
	DefaultDecodeTimeout     = 2 * time.Minute
	DefaultExtractTimeout    = 90 * time.Second
	DefaultPastYears         = 1
	DefaultFutureYears       = 10
	DefaultImageMaxWidth     = 2000
	DefaultJPEGQuality       = 90
	DefaultMaxUploadBytes    = 200 * 1024 * 1024
	DefaultRequestsPerMinute = 60
)

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Identity: IdentitySettings{Name: DefaultOwnerName},
		LLM: LLMSettings{
			Provider:          AIProviderOpenAI,
			Model:             "gpt-4o-mini",
			RequestsPerMinute: DefaultRequestsPerMinute,
		},
		Pipeline: PipelineSettings{
			DecodeTimeout:  DefaultDecodeTimeout,
			ExtractTimeout: DefaultExtractTimeout,
		},
		Dates: DateSettings{
			PastYears:   DefaultPastYears,
			FutureYears: DefaultFutureYears,
		},
		Image: ImageSettings{
			MaxWidth:    DefaultImageMaxWidth,
			JPEGQuality: DefaultJPEGQuality,
		},
		Storage:        StorageSettings{Backend: StorageSQLite},
		MaxUploadBytes: DefaultMaxUploadBytes,
	}
}
