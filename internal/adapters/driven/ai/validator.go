package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/abdullah-sah/brain-assistant/internal/core/domain"
	"github.com/abdullah-sah/brain-assistant/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator checks that provider settings reach a working model.
type ConfigValidator struct {
	timeout time.Duration
}

// NewConfigValidator creates a validator that waits pingTimeout for the provider.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{timeout: pingTimeout}
}

// ValidateLLM rejects incomplete settings, then pings the provider.
// Empty settings are valid: extraction is simply disabled.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	if config == nil || config.Provider == "" {
		return nil
	}
	if !config.Provider.IsValid() {
		return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, config.Provider)
	}
	if config.Provider.RequiresAPIKey() && config.APIKey == "" {
		return fmt.Errorf("%w: %s needs an API key", domain.ErrInvalidInput, config.Provider.Description())
	}

	svc, err := CreateLLMService(config)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%s: %w", svc.ModelName(), err)
	}
	return nil
}
