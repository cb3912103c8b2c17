// Package gemini provides an embedding service adapter using the Gemini API.
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/api/generativelanguage/v1beta"

	"github.com/insectopedia/insectopedia/internal/adapters/driven/gemini"
	"github.com/insectopedia/insectopedia/internal/adapters/driven/ratelimit"
	"github.com/insectopedia/insectopedia/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultModel      = "text-embedding-004"
	DefaultDimensions = 768

	// maxBatch is the most texts the API accepts in one batch request.
	maxBatch = 100
)

// Config holds configuration for the Gemini embedding service.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// BaseURL replaces the public endpoint when set.
	BaseURL string

	// Model is the embedding model (default: text-embedding-004).
	Model string

	// Dimensions is the embedding vector size (default: 768).
	Dimensions int

	// Limiter throttles requests. Nil means unthrottled.
	Limiter *ratelimit.Limiter
}

// EmbeddingService generates embeddings using the Gemini API.
type EmbeddingService struct {
	models     *generativelanguage.ModelsService
	model      string
	dimensions int
	limiter    *ratelimit.Limiter
}

// NewEmbeddingService creates a new Gemini embedding service.
func NewEmbeddingService(ctx context.Context, cfg Config) (*EmbeddingService, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}

	svc, err := gemini.NewService(ctx, cfg.APIKey, cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	return &EmbeddingService{
		models:     svc.Models,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		limiter:    cfg.Limiter,
	}, nil
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := s.models.EmbedContent(gemini.ModelResource(s.model), &generativelanguage.EmbedContentRequest{
		Content: gemini.TextContent(text),
	}).Context(ctx).Do()
	if err != nil {
		return nil, s.fail(err)
	}
	if resp.Embedding == nil {
		return nil, fmt.Errorf("gemini: no embedding returned")
	}
	return toFloat32(resp.Embedding.Values), nil
}

// EmbedBatch embeds texts with batch requests of up to 100 texts each.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxBatch {
		end := min(start+maxBatch, len(texts))
		batch, err := s.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed texts %d-%d: %w", start, end-1, err)
		}
		embeddings = append(embeddings, batch...)
	}
	return embeddings, nil
}

func (s *EmbeddingService) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resource := gemini.ModelResource(s.model)
	requests := make([]*generativelanguage.EmbedContentRequest, len(texts))
	for i, text := range texts {
		requests[i] = &generativelanguage.EmbedContentRequest{
			Model:   resource,
			Content: gemini.TextContent(text),
		}
	}

	resp, err := s.models.BatchEmbedContents(resource, &generativelanguage.BatchEmbedContentsRequest{
		Requests: requests,
	}).Context(ctx).Do()
	if err != nil {
		return nil, s.fail(err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini: got %d embeddings for %d texts", len(resp.Embeddings), len(texts))
	}

	out := make([][]float32, len(texts))
	for i, e := range resp.Embeddings {
		if e == nil {
			return nil, fmt.Errorf("gemini: no embedding returned for text %d", i)
		}
		out[i] = toFloat32(e.Values)
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping validates the key by fetching the model description.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if _, err := s.models.Get(gemini.ModelResource(s.model)).Context(ctx).Do(); err != nil {
		return fmt.Errorf("gemini: ping failed: %w", gemini.WrapError(err))
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

func (s *EmbeddingService) fail(err error) error {
	if gemini.IsRateLimited(err) {
		s.limiter.RecordRateLimitError(gemini.RetryAfter(err))
	}
	return gemini.WrapError(err)
}

func toFloat32(values []float64) []float32 {
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out
}
