package driving

import "github.com/abdullah-sah/brain-assistant/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get returns the current settings merged over defaults.
	Get() (*domain.AppSettings, error)

	// Set stores a single setting by its dot-path key.
	Set(key, value string) error

	// SetIdentity stores the owner's name and aliases.
	SetIdentity(name string, aliases []string) error

	// SetLLMProvider stores the inference provider configuration.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// Keys lists the settable keys.
	Keys() []string
}
