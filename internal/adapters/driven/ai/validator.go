package ai

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator checks provider settings by building the adapter and
// pinging it. Unconfigured settings are accepted as-is.
type ConfigValidator struct{}

// NewConfigValidator creates a new AI config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateEmbedding validates the embedding provider.
func (v *ConfigValidator) ValidateEmbedding(settings *domain.EmbeddingSettings) error {
	if err := ValidateEmbeddingConfig(settings); err != nil {
		return fmt.Errorf("embedding provider %s: %w", settings.Provider, err)
	}
	return nil
}

// ValidateLLM validates the LLM provider.
func (v *ConfigValidator) ValidateLLM(settings *domain.LLMSettings) error {
	if err := ValidateLLMConfig(settings); err != nil {
		return fmt.Errorf("llm provider %s: %w", settings.Provider, err)
	}
	return nil
}

// ValidateAll validates both providers and joins their errors.
func (v *ConfigValidator) ValidateAll(settings *domain.AppSettings) error {
	return errors.Join(
		v.ValidateEmbedding(&settings.Embedding),
		v.ValidateLLM(&settings.LLM),
	)
}
