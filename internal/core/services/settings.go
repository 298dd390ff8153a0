package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/abdullah-sah/brain-assistant/internal/core/domain"
	"github.com/abdullah-sah/brain-assistant/internal/core/ports/driven"
	"github.com/abdullah-sah/brain-assistant/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyIdentityName      = "identity.name"
	keyIdentityAliases   = "identity.aliases"
	keyLLMProvider       = "llm.provider"
	keyLLMModel          = "llm.model"
	keyLLMVisionModel    = "llm.vision_model"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
	keyLLMRequestsPerMin = "llm.requests_per_minute"
	keyDecodeTimeout     = "pipeline.decode_timeout"
	keyExtractTimeout    = "pipeline.extract_timeout"
	keyDatesPastYears    = "dates.past_window_years"
	keyDatesPastDays     = "dates.past_window_days"
	keyDatesFutureYears  = "dates.future_window_years"
	keyDatesStrict       = "dates.strict_window"
	keyImageMaxWidth     = "image.max_width"
	keyImageQuality      = "image.jpeg_quality"
	keyImageHEIC         = "image.heic_converter"
	keyStorageBackend    = "storage.backend"
	keyStoragePath       = "storage.path"
	keyStorageDSN        = "storage.dsn"
	keyUploadMaxBytes    = "upload.max_bytes"
)

// Environment variables that override the config file.
const (
	EnvUserName        = "USER_NAME"
	EnvUserIdentifiers = "USER_IDENTIFIERS"
	EnvOpenAIKey       = "OPENAI_API_KEY"
	EnvAnthropicKey    = "ANTHROPIC_API_KEY"
)

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindBool
	kindDuration
	kindList
	kindProvider
	kindBackend
)

var settingKeys = map[string]keyKind{
	keyIdentityName:      kindString,
	keyIdentityAliases:   kindList,
	keyLLMProvider:       kindProvider,
	keyLLMModel:          kindString,
	keyLLMVisionModel:    kindString,
	keyLLMBaseURL:        kindString,
	keyLLMAPIKey:         kindString,
	keyLLMRequestsPerMin: kindInt,
	keyDecodeTimeout:     kindDuration,
	keyExtractTimeout:    kindDuration,
	keyDatesPastYears:    kindInt,
	keyDatesPastDays:     kindInt,
	keyDatesFutureYears:  kindInt,
	keyDatesStrict:       kindBool,
	keyImageMaxWidth:     kindInt,
	keyImageQuality:      kindInt,
	keyImageHEIC:         kindString,
	keyStorageBackend:    kindBackend,
	keyStoragePath:       kindString,
	keyStorageDSN:        kindString,
	keyUploadMaxBytes:    kindInt,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore, getenv: os.Getenv}
}

// Get retrieves current application settings: environment over file over defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	if s.configStore == nil {
		return nil, domain.ErrNotImplemented
	}
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Identity: domain.IdentitySettings{
			Name:    s.getString(keyIdentityName, d.Identity.Name),
			Aliases: s.configStore.GetStringSlice(keyIdentityAliases),
		},
		LLM: domain.LLMSettings{
			Provider:          s.getProvider(d.LLM.Provider),
			Model:             s.configStore.GetString(keyLLMModel),
			VisionModel:       s.configStore.GetString(keyLLMVisionModel),
			BaseURL:           s.configStore.GetString(keyLLMBaseURL), // Empty uses the provider default
			APIKey:            s.configStore.GetString(keyLLMAPIKey),
			RequestsPerMinute: s.getInt(keyLLMRequestsPerMin, d.LLM.RequestsPerMinute),
		},
		Pipeline: domain.PipelineSettings{
			DecodeTimeout:  s.getDuration(keyDecodeTimeout, d.Pipeline.DecodeTimeout),
			ExtractTimeout: s.getDuration(keyExtractTimeout, d.Pipeline.ExtractTimeout),
		},
		Dates: domain.DateSettings{
			PastYears:    s.getInt(keyDatesPastYears, d.Dates.PastYears),
			PastDays:     s.getInt(keyDatesPastDays, d.Dates.PastDays),
			FutureYears:  s.getInt(keyDatesFutureYears, d.Dates.FutureYears),
			StrictWindow: s.configStore.GetBool(keyDatesStrict),
		},
		Image: domain.ImageSettings{
			MaxWidth:      s.getInt(keyImageMaxWidth, d.Image.MaxWidth),
			JPEGQuality:   s.getInt(keyImageQuality, d.Image.JPEGQuality),
			HEICConverter: s.configStore.GetString(keyImageHEIC),
		},
		Storage: domain.StorageSettings{
			Backend: s.getBackend(d.Storage.Backend),
			Path:    s.configStore.GetString(keyStoragePath),
			DSN:     s.configStore.GetString(keyStorageDSN),
		},
		MaxUploadBytes: int64(s.getInt(keyUploadMaxBytes, int(d.MaxUploadBytes))),
	}

	if settings.LLM.Model == "" && settings.LLM.Provider == d.LLM.Provider {
		settings.LLM.Model = d.LLM.Model
	}
	s.applyEnv(settings)
	return settings, nil
}

// applyEnv overlays environment variables.
func (s *SettingsService) applyEnv(settings *domain.AppSettings) {
	if name := strings.TrimSpace(s.getenv(EnvUserName)); name != "" {
		settings.Identity.Name = name
	}
	if ids := s.getenv(EnvUserIdentifiers); strings.TrimSpace(ids) != "" {
		settings.Identity.Aliases = splitList(ids)
	}
	if settings.LLM.APIKey == "" {
		switch settings.LLM.Provider {
		case domain.AIProviderOpenAI:
			settings.LLM.APIKey = s.getenv(EnvOpenAIKey)
		case domain.AIProviderAnthropic:
			settings.LLM.APIKey = s.getenv(EnvAnthropicKey)
		}
	}
}

// Set stores a single setting, converting value to the key's type.
func (s *SettingsService) Set(key, value string) error {
	if s.configStore == nil {
		return domain.ErrNotImplemented
	}
	kind, ok := settingKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	value = strings.TrimSpace(value)
	var v any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
		}
		v = n
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		v = b
	case kindDuration:
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%w: %s must be a duration like 90s or 2m", domain.ErrInvalidInput, key)
		}
		v = value
	case kindList:
		v = splitList(value)
	case kindProvider:
		if !domain.AIProvider(value).IsValid() {
			return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, value)
		}
		v = value
	case kindBackend:
		if !domain.StorageBackend(value).IsValid() {
			return fmt.Errorf("%w: unknown storage backend %q", domain.ErrInvalidInput, value)
		}
		v = value
	default:
		v = value
	}

	if err := s.configStore.Set(key, v); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// SetIdentity stores the owner's name and aliases.
func (s *SettingsService) SetIdentity(name string, aliases []string) error {
	if s.configStore == nil {
		return domain.ErrNotImplemented
	}
	id := domain.NewIdentity(name, aliases...)
	if err := s.configStore.Set(keyIdentityName, id.Name); err != nil {
		return fmt.Errorf("save identity name: %w", err)
	}
	if err := s.configStore.Set(keyIdentityAliases, id.Aliases); err != nil {
		return fmt.Errorf("save identity aliases: %w", err)
	}
	return nil
}

// SetLLMProvider stores the inference provider configuration.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if s.configStore == nil {
		return domain.ErrNotImplemented
	}
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" && s.configStore.GetString(keyLLMAPIKey) == "" {
		return fmt.Errorf("provider %s requires an API key", provider.Description())
	}

	if err := s.configStore.Set(keyLLMProvider, provider.String()); err != nil {
		return fmt.Errorf("save llm provider: %w", err)
	}
	if err := s.configStore.Set(keyLLMModel, model); err != nil {
		return fmt.Errorf("save llm model: %w", err)
	}
	if apiKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, apiKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}
	return nil
}

// Keys lists the settable keys in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKeys))
	for k := range settingKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetDuration(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getProvider(defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(keyLLMProvider))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.StorageBackend) domain.StorageBackend {
	backend := domain.StorageBackend(s.configStore.GetString(keyStorageBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
