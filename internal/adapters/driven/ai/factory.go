// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/insectopedia/insectopedia/internal/adapters/driven/embedding/cache"
	geminiembed "github.com/insectopedia/insectopedia/internal/adapters/driven/embedding/gemini"
	"github.com/insectopedia/insectopedia/internal/adapters/driven/embedding/hashing"
	ollamaembed "github.com/insectopedia/insectopedia/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/insectopedia/insectopedia/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/insectopedia/insectopedia/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/insectopedia/insectopedia/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/insectopedia/insectopedia/internal/adapters/driven/llm/ollama"
	openaillm "github.com/insectopedia/insectopedia/internal/adapters/driven/llm/openai"
	"github.com/insectopedia/insectopedia/internal/adapters/driven/ratelimit"
	"github.com/insectopedia/insectopedia/internal/core/domain"
	"github.com/insectopedia/insectopedia/internal/core/ports/driven"
	"github.com/insectopedia/insectopedia/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// probeText is embedded once to learn the vector size of an unknown model.
const probeText = "insect"

// guidance is appended to factory errors shown to the user.
const guidance = "Run 'insectopedia settings' to fix"

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateEmbeddingService(
	ctx context.Context, settings *domain.EmbeddingSettings,
) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateEmbeddingService(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrEmbeddingUnavailable, err, guidance)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(pingCtx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). %s", domain.ErrEmbeddingUnavailable, err, guidance)
	}

	return svc, nil
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
func ValidateEmbeddingConfig(ctx context.Context, settings *domain.EmbeddingSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := createEmbedding(ctx, settings, domain.EmbeddingDimensions()[settings.Model])
	if err != nil {
		return err
	}
	defer svc.Close()

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return svc.Ping(pingCtx)
}

// ValidateLLMConfig validates an LLM configuration by creating a service and pinging it.
func ValidateLLMConfig(ctx context.Context, settings *domain.LLMSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateLLMService(ctx, settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return svc.Ping(pingCtx)
}

// CreateEmbeddingService creates the embedding service selected by settings.
// Returns nil if the provider is not configured.
//
// The vector size comes from the table of known models. For any other model
// the service embeds a probe text once and uses the length it gets back, so
// an unknown model needs a reachable provider.
func CreateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	if settings.Provider == domain.AIProviderHashing {
		dims, err := HashingDimensions(settings.Model)
		if err != nil {
			return nil, err
		}
		return hashing.NewEmbeddingService(dims), nil
	}

	dims := domain.EmbeddingDimensions()[settings.Model]
	svc, err := createEmbedding(ctx, settings, dims)
	if err != nil {
		return nil, err
	}
	if dims > 0 || settings.Model == "" {
		return svc, nil
	}

	probed, err := probeDimensions(ctx, svc)
	svc.Close()
	if err != nil {
		return nil, fmt.Errorf("determine dimensions of %q: %w", settings.Model, err)
	}
	logger.Debug("embedding model %s has %d dimensions", settings.Model, probed)
	return createEmbedding(ctx, settings, probed)
}

// CreateQueryEmbeddingService is CreateEmbeddingService wrapped in an LRU
// cache when settings.CacheSize is positive.
func CreateQueryEmbeddingService(
	ctx context.Context, settings *domain.EmbeddingSettings,
) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(ctx, settings)
	if err != nil || svc == nil || settings.CacheSize <= 0 {
		return svc, err
	}
	cached, err := cache.New(svc, settings.CacheSize)
	if err != nil {
		svc.Close()
		return nil, err
	}
	return cached, nil
}

// CreateLLMService creates the LLM service selected by settings.
// Returns nil if the provider is not configured.
func CreateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	limiter := newLimiter("llm/"+settings.Provider.String(), settings.RequestsPerSecond)

	switch settings.Provider {
	case domain.AIProviderGemini:
		return geminillm.NewLLMService(ctx, geminillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Limiter: limiter,
		})

	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
			Limiter: limiter,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
			Limiter: limiter,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
			Limiter: limiter,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// HashingDimensions parses the vector size from a "hashing-N" model name.
// An empty name selects the default size.
func HashingDimensions(model string) (int, error) {
	if model == "" {
		return hashing.DefaultDimensions, nil
	}
	n, err := strconv.Atoi(strings.TrimPrefix(model, "hashing-"))
	if !strings.HasPrefix(model, "hashing-") || err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: hashing model must be named hashing-<dimensions>, got %q",
			domain.ErrInvalidConfig, model)
	}
	return n, nil
}

// createEmbedding builds a remote embedding service. A zero dims lets the
// adapter apply its own default.
func createEmbedding(
	ctx context.Context, settings *domain.EmbeddingSettings, dims int,
) (driven.EmbeddingService, error) {
	limiter := newLimiter("embedding/"+settings.Provider.String(), settings.RequestsPerSecond)

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dims,
			Limiter:    limiter,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dims,
			Limiter:    limiter,
		})

	case domain.AIProviderGemini:
		return geminiembed.NewEmbeddingService(ctx, geminiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dims,
			Limiter:    limiter,
		})

	case domain.AIProviderHashing:
		return hashing.NewEmbeddingService(dims), nil

	case domain.AIProviderAnthropic:
		// Anthropic does not support embeddings.
		return nil, fmt.Errorf("anthropic does not support embeddings, use ollama, openai or gemini")

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

func probeDimensions(ctx context.Context, svc driven.EmbeddingService) (int, error) {
	vec, err := svc.Embed(ctx, probeText)
	if err != nil {
		return 0, err
	}
	if len(vec) == 0 {
		return 0, fmt.Errorf("provider returned an empty vector")
	}
	return len(vec), nil
}

// newLimiter always returns a limiter. With rps <= 0 it only applies the 429 backoff.
func newLimiter(name string, rps float64) *ratelimit.Limiter {
	return ratelimit.New(name, rps, 1)
}
