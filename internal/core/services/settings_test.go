package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdullah-sah/brain-assistant/internal/adapters/driven/storage/memory"
	"github.com/abdullah-sah/brain-assistant/internal/core/domain"
)

func newTestSettings(store *memory.ConfigStore, env map[string]string) *SettingsService {
	s := NewSettingsService(store)
	s.getenv = func(k string) string { return env[k] }
	return s
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := newTestSettings(memory.NewConfigStore(), nil)

	settings, err := service.Get()
	require.NoError(t, err)

	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults, *settings)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStoreFrom(map[string]any{
		"identity.name":            "Alex",
		"identity.aliases":         []any{"AJ", "Alexander"},
		"llm.provider":             "anthropic",
		"llm.model":                "claude-haiku",
		"llm.api_key":              "sk-file",
		"pipeline.extract_timeout": "30s",
		"dates.past_window_days":   int64(30),
		"dates.strict_window":      true,
		"image.max_width":          1600,
		"storage.backend":          "postgres",
		"storage.dsn":              "postgres://localhost/brain",
	})
	service := newTestSettings(store, nil)

	settings, err := service.Get()
	require.NoError(t, err)

	assert.Equal(t, "Alex", settings.Identity.Name)
	assert.Equal(t, []string{"AJ", "Alexander"}, settings.Identity.Aliases)
	assert.Equal(t, domain.AIProviderAnthropic, settings.LLM.Provider)
	assert.Equal(t, "claude-haiku", settings.LLM.Model)
	assert.Equal(t, "sk-file", settings.LLM.APIKey)
	assert.Equal(t, 30*time.Second, settings.Pipeline.ExtractTimeout)
	assert.Equal(t, domain.DefaultDecodeTimeout, settings.Pipeline.DecodeTimeout)
	assert.Equal(t, domain.DefaultPastYears, settings.Dates.PastYears)
	assert.Equal(t, 30, settings.Dates.PastDays)
	assert.True(t, settings.Dates.StrictWindow)
	assert.Equal(t, 1600, settings.Image.MaxWidth)
	assert.Equal(t, domain.StoragePostgres, settings.Storage.Backend)
	assert.Equal(t, "postgres://localhost/brain", settings.Storage.DSN)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	store := memory.NewConfigStoreFrom(map[string]any{
		"llm.provider":            "bogus",
		"storage.backend":         "mongo",
		"pipeline.decode_timeout": "whenever",
	})
	service := newTestSettings(store, nil)

	settings, err := service.Get()
	require.NoError(t, err)

	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.LLM.Provider, settings.LLM.Provider)
	assert.Equal(t, defaults.Storage.Backend, settings.Storage.Backend)
	assert.Equal(t, defaults.Pipeline.DecodeTimeout, settings.Pipeline.DecodeTimeout)
}

func TestSettingsService_Get_EnvironmentOverrides(t *testing.T) {
	store := memory.NewConfigStoreFrom(map[string]any{
		"identity.name":    "Alex",
		"identity.aliases": []string{"AJ"},
	})
	service := newTestSettings(store, map[string]string{
		EnvUserName:        "Dana",
		EnvUserIdentifiers: "D, Dee ,",
		EnvOpenAIKey:       "sk-env",
	})

	settings, err := service.Get()
	require.NoError(t, err)

	assert.Equal(t, "Dana", settings.Identity.Name)
	assert.Equal(t, []string{"D", "Dee"}, settings.Identity.Aliases)
	assert.Equal(t, "sk-env", settings.LLM.APIKey)
}

func TestSettingsService_Get_FileKeyBeatsEnvKey(t *testing.T) {
	store := memory.NewConfigStoreFrom(map[string]any{
		"llm.provider": "anthropic",
		"llm.api_key":  "sk-file",
	})
	service := newTestSettings(store, map[string]string{EnvAnthropicKey: "sk-env"})

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "sk-file", settings.LLM.APIKey)
}

func TestSettingsService_Set(t *testing.T) {
	tests := []struct {
		key   string
		value string
		want  any
	}{
		{"identity.name", " Alex ", "Alex"},
		{"identity.aliases", "AJ, Alexander", []string{"AJ", "Alexander"}},
		{"llm.provider", "ollama", "ollama"},
		{"llm.requests_per_minute", "20", 20},
		{"dates.strict_window", "true", true},
		{"pipeline.decode_timeout", "45s", "45s"},
		{"storage.backend", "postgres", "postgres"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			store := memory.NewConfigStore()
			service := newTestSettings(store, nil)

			require.NoError(t, service.Set(tt.key, tt.value))
			got, ok := store.Get(tt.key)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSettingsService_Set_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"no.such.key", "x"},
		{"llm.provider", "skynet"},
		{"image.max_width", "wide"},
		{"image.max_width", "-5"},
		{"dates.strict_window", "maybe"},
		{"pipeline.extract_timeout", "soon"},
		{"storage.backend", "mongo"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			service := newTestSettings(memory.NewConfigStore(), nil)
			assert.ErrorIs(t, service.Set(tt.key, tt.value), domain.ErrInvalidInput)
		})
	}
}

func TestSettingsService_SetIdentity(t *testing.T) {
	store := memory.NewConfigStore()
	service := newTestSettings(store, nil)

	require.NoError(t, service.SetIdentity("Alex", []string{"AJ", "aj", " "}))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "Alex", settings.Identity.Name)
	assert.Equal(t, []string{"AJ"}, settings.Identity.Aliases)
}

func TestSettingsService_SetLLMProvider(t *testing.T) {
	store := memory.NewConfigStore()
	service := newTestSettings(store, nil)

	err := service.SetLLMProvider(domain.AIProviderOpenAI, "gpt-4o", "")
	assert.Error(t, err, "openai needs a key")

	err = service.SetLLMProvider("nope", "", "")
	assert.Error(t, err)

	require.NoError(t, service.SetLLMProvider(domain.AIProviderOllama, "llama3.2", ""))
	require.NoError(t, service.SetLLMProvider(domain.AIProviderOpenAI, "gpt-4o", "sk-123"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, settings.LLM.Provider)
	assert.Equal(t, "gpt-4o", settings.LLM.Model)
	assert.Equal(t, "sk-123", settings.LLM.APIKey)
	assert.True(t, settings.LLM.IsConfigured())
}

func TestSettingsService_Keys(t *testing.T) {
	keys := NewSettingsService(memory.NewConfigStore()).Keys()
	assert.Contains(t, keys, "identity.name")
	assert.Contains(t, keys, "llm.api_key")
	assert.IsIncreasing(t, keys)
}

func TestSettingsService_NilStore(t *testing.T) {
	service := NewSettingsService(nil)

	_, err := service.Get()
	assert.ErrorIs(t, err, domain.ErrNotImplemented)
	assert.ErrorIs(t, service.Set("identity.name", "x"), domain.ErrNotImplemented)
}
