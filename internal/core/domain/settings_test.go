package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestAIProvider_IsValid tests all valid and invalid providers
func TestAIProvider_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		provider AIProvider
		expected bool
	}{
		{name: "ollama is valid", provider: AIProviderOllama, expected: true},
		{name: "openai is valid", provider: AIProviderOpenAI, expected: true},
		{name: "anthropic is valid", provider: AIProviderAnthropic, expected: true},
		{name: "empty string is invalid", provider: AIProvider(""), expected: false},
		{name: "unknown provider is invalid", provider: AIProvider("cohere"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.provider.IsValid())
		})
	}
}

func TestAIProvider_RequiresAPIKey(t *testing.T) {
	assert.True(t, AIProviderOpenAI.RequiresAPIKey())
	assert.True(t, AIProviderAnthropic.RequiresAPIKey())
	assert.False(t, AIProviderOllama.RequiresAPIKey())
	assert.True(t, AIProviderOllama.IsLocal())
}

func TestAIProvider_Description(t *testing.T) {
	assert.Equal(t, "Ollama (local)", AIProviderOllama.Description())
	assert.Equal(t, "Unknown", AIProvider("x").Description())
}

func TestLLMSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings LLMSettings
		expected bool
	}{
		{"openai with key", LLMSettings{Provider: AIProviderOpenAI, APIKey: "sk-1"}, true},
		{"openai without key", LLMSettings{Provider: AIProviderOpenAI}, false},
		{"ollama without key", LLMSettings{Provider: AIProviderOllama}, true},
		{"invalid provider", LLMSettings{Provider: "nope", APIKey: "k"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.settings.IsConfigured())
		})
	}
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, DefaultOwnerName, s.Identity.Name)
	assert.Equal(t, 2000, s.Image.MaxWidth)
	assert.Equal(t, 90, s.Image.JPEGQuality)
	assert.Equal(t, 10, s.Dates.FutureYears)
	assert.False(t, s.Dates.StrictWindow)
	assert.Equal(t, StorageSQLite, s.Storage.Backend)
	assert.Equal(t, int64(200*1024*1024), s.MaxUploadBytes)
}

func TestIdentitySettings_Identity(t *testing.T) {
	id := IdentitySettings{Name: " Alex ", Aliases: []string{"AJ", "", "aj", "Alexander"}}.Identity()

	assert.Equal(t, "Alex", id.Name)
	assert.Equal(t, []string{"AJ", "Alexander"}, id.Aliases)
	assert.True(t, id.HasAliases())
}

func TestStorageBackend_IsValid(t *testing.T) {
	assert.True(t, StorageSQLite.IsValid())
	assert.True(t, StoragePostgres.IsValid())
	assert.False(t, StorageBackend("mysql").IsValid())
}
