// Package cache decorates an embedding service with an in-memory LRU cache.
//
// Repeated questions are common in a Q&A service; caching their vectors
// skips a remote round trip. Cached vectors are shared between callers and
// must not be mutated.
package cache

import (
	"context"
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/insectopedia/insectopedia/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Stats reports cache effectiveness.
type Stats struct {
	Hits   uint64
	Misses uint64
	Size   int
}

// EmbeddingService caches the vectors produced by an underlying service.
type EmbeddingService struct {
	next   driven.EmbeddingService
	cache  *lru.Cache[string, []float32]
	hits   atomic.Uint64
	misses atomic.Uint64
}

// New wraps next with a cache holding up to size vectors.
func New(next driven.EmbeddingService, size int) (*EmbeddingService, error) {
	c, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}
	return &EmbeddingService{next: next, cache: c}, nil
}

// Embed returns the cached vector for text, embedding it on a miss.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	key := s.key(text)
	if vec, ok := s.cache.Get(key); ok {
		s.hits.Add(1)
		return vec, nil
	}
	s.misses.Add(1)

	vec, err := s.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, vec)
	return vec, nil
}

// EmbedBatch serves cached texts from memory and embeds the rest in one call.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missIdx []int
	for i, text := range texts {
		if vec, ok := s.cache.Get(s.key(text)); ok {
			out[i] = vec
			s.hits.Add(1)
			continue
		}
		missIdx = append(missIdx, i)
	}
	if len(missIdx) == 0 {
		return out, nil
	}
	s.misses.Add(uint64(len(missIdx)))

	req := make([]string, len(missIdx))
	for j, i := range missIdx {
		req[j] = texts[i]
	}
	vecs, err := s.next.EmbedBatch(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(req) {
		return nil, fmt.Errorf("embedding cache: got %d vectors for %d texts", len(vecs), len(req))
	}
	for j, i := range missIdx {
		out[i] = vecs[j]
		s.cache.Add(s.key(texts[i]), vecs[j])
	}
	return out, nil
}

// Dimensions returns the underlying vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.next.Dimensions()
}

// ModelName returns the underlying model name.
func (s *EmbeddingService) ModelName() string {
	return s.next.ModelName()
}

// Ping pings the underlying service.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

// Close purges the cache and closes the underlying service.
func (s *EmbeddingService) Close() error {
	s.cache.Purge()
	return s.next.Close()
}

// Stats returns hit and miss counts.
func (s *EmbeddingService) Stats() Stats {
	return Stats{
		Hits:   s.hits.Load(),
		Misses: s.misses.Load(),
		Size:   s.cache.Len(),
	}
}

func (s *EmbeddingService) key(text string) string {
	return s.next.ModelName() + "|" + text
}
