package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/insectopedia/insectopedia/internal/core/domain"
	"github.com/insectopedia/insectopedia/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator pings the configured providers. Each check is bounded by
// its own deadline on top of the per-ping timeout.
type ConfigValidator struct {
	deadline time.Duration
}

// NewConfigValidator creates a validator whose checks give up after twice
// the ping timeout.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{deadline: 2 * pingTimeout}
}

// ValidateEmbedding creates the embedding service and pings it.
func (v *ConfigValidator) ValidateEmbedding(settings *domain.EmbeddingSettings) error {
	ctx, cancel := context.WithTimeout(context.Background(), v.deadline)
	defer cancel()

	if err := ValidateEmbeddingConfig(ctx, settings); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrEmbeddingUnavailable, settings.Provider.Label(), err)
	}
	return nil
}

// ValidateLLM creates the LLM service and pings it.
func (v *ConfigValidator) ValidateLLM(settings *domain.LLMSettings) error {
	ctx, cancel := context.WithTimeout(context.Background(), v.deadline)
	defer cancel()

	if err := ValidateLLMConfig(ctx, settings); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrLLMUnavailable, settings.Provider.Label(), err)
	}
	return nil
}
