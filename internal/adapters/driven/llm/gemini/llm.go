// Package gemini provides an LLM service adapter using the Gemini API.
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/api/generativelanguage/v1beta"

	"github.com/insectopedia/insectopedia/internal/adapters/driven/gemini"
	"github.com/insectopedia/insectopedia/internal/adapters/driven/ratelimit"
	"github.com/insectopedia/insectopedia/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// DefaultModel is the generative model used when none is configured.
const DefaultModel = "gemini-1.5-flash"

// Config holds configuration for the Gemini LLM service.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// BaseURL replaces the public endpoint when set.
	BaseURL string

	// Model is the generative model (default: gemini-1.5-flash).
	Model string

	// Limiter throttles requests. Nil means unthrottled.
	Limiter *ratelimit.Limiter
}

// LLMService generates text with the Gemini API.
type LLMService struct {
	models  *generativelanguage.ModelsService
	model   string
	limiter *ratelimit.Limiter
}

// NewLLMService creates a new Gemini LLM service.
func NewLLMService(ctx context.Context, cfg Config) (*LLMService, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	svc, err := gemini.NewService(ctx, cfg.APIKey, cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	return &LLMService{
		models:  svc.Models,
		model:   cfg.Model,
		limiter: cfg.Limiter,
	}, nil
}

// Generate sends the prompt as a single user turn and returns the text of
// the first candidate. A blocked or empty response yields "".
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}

	resp, err := s.models.GenerateContent(gemini.ModelResource(s.model), buildRequest(prompt, opts)).
		Context(ctx).Do()
	if err != nil {
		if gemini.IsRateLimited(err) {
			s.limiter.RecordRateLimitError(gemini.RetryAfter(err))
		}
		return "", fmt.Errorf("gemini: generate: %w", gemini.WrapError(err))
	}
	return gemini.ResponseText(resp), nil
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the key by fetching the model description.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.models.Get(gemini.ModelResource(s.model)).Context(ctx).Do(); err != nil {
		return fmt.Errorf("gemini: ping failed: %w", gemini.WrapError(err))
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}

func buildRequest(prompt string, opts driven.GenerateOptions) *generativelanguage.GenerateContentRequest {
	req := &generativelanguage.GenerateContentRequest{
		Contents: []*generativelanguage.Content{gemini.TextContent(prompt)},
	}
	// Temperature is left to the model default.
	if opts.MaxTokens > 0 {
		req.GenerationConfig = &generativelanguage.GenerationConfig{
			MaxOutputTokens: int64(opts.MaxTokens),
		}
	}
	return req
}
