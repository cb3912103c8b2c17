package services

import (
	"context"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/insectopedia/insectopedia/internal/core/domain"
	"github.com/insectopedia/insectopedia/internal/core/ports/driven"
	"github.com/insectopedia/insectopedia/internal/core/ports/driving"
	"github.com/insectopedia/insectopedia/internal/logger"
)

// Ensure Retriever implements the interface.
var _ driving.RetrievalService = (*Retriever)(nil)

// Retriever answers similarity queries against one loaded index snapshot.
// It is safe for concurrent use.
//
// Every query re-checks that the index and the chunk list have the same
// length. The first failed check poisons the Retriever; all later queries
// fail with domain.ErrIndexCorrupt.
type Retriever struct {
	manifest domain.IndexManifest
	index    driven.VectorIndex
	docs     []domain.Chunk
	embedder driven.EmbeddingService
	poisoned atomic.Bool
}

// NewRetriever builds the search index for snap and checks that embedder
// matches the model and dimensions the snapshot was built with.
func NewRetriever(
	snap *domain.IndexSnapshot,
	newIndex driven.VectorIndexFactory,
	embedder driven.EmbeddingService,
) (*Retriever, error) {
	if embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	m := snap.Manifest
	if embedder.ModelName() != m.Model {
		return nil, fmt.Errorf("%w: index was built with %q but %q is configured",
			domain.ErrModelMismatch, m.Model, embedder.ModelName())
	}
	if embedder.Dimensions() != m.Dimensions {
		return nil, fmt.Errorf("%w: index has %d dimensions but %s produces %d",
			domain.ErrDimensionMismatch, m.Dimensions, embedder.ModelName(), embedder.Dimensions())
	}
	if len(snap.Vectors) != len(snap.Docs) || m.Count != len(snap.Docs) {
		return nil, fmt.Errorf("%w: manifest count %d, %d vectors, %d chunks",
			domain.ErrIndexCorrupt, m.Count, len(snap.Vectors), len(snap.Docs))
	}

	index, err := newIndex(m.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	for i, vec := range snap.Vectors {
		if err := index.Add(vec); err != nil {
			return nil, fmt.Errorf("%w: vector %d: %w", domain.ErrIndexCorrupt, i, err)
		}
	}

	logger.Debug("Loaded index %s: model=%s dims=%d count=%d", m.BuildID, m.Model, m.Dimensions, m.Count)
	return &Retriever{
		manifest: m,
		index:    index,
		docs:     snap.Docs,
		embedder: embedder,
	}, nil
}

// Manifest describes the loaded index.
func (r *Retriever) Manifest() domain.IndexManifest {
	return r.manifest
}

// Search embeds query and returns up to topK chunks, best first.
// A topK of zero selects domain.DefaultTopK; a negative topK is invalid.
func (r *Retriever) Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	k, err := r.prepare(topK)
	if err != nil {
		return nil, err
	}
	if k == 0 {
		return []domain.SearchResult{}, nil
	}

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return r.search(vec, k)
}

// SearchVector is Search for a caller that already holds the query vector.
// The vector is normalised on a copy.
func (r *Retriever) SearchVector(_ context.Context, vec []float32, topK int) ([]domain.SearchResult, error) {
	k, err := r.prepare(topK)
	if err != nil {
		return nil, err
	}
	if k == 0 {
		return []domain.SearchResult{}, nil
	}
	return r.search(vec, k)
}

// prepare validates topK and the index parity, and returns the number of
// results to fetch. Zero means the index is empty.
func (r *Retriever) prepare(topK int) (int, error) {
	if r.poisoned.Load() {
		return 0, fmt.Errorf("%w: refusing queries after an earlier integrity failure", domain.ErrIndexCorrupt)
	}
	if topK < 0 {
		return 0, fmt.Errorf("%w: top_k must not be negative, got %d", domain.ErrInvalidInput, topK)
	}
	if topK == 0 {
		topK = domain.DefaultTopK
	}

	if n := r.index.Len(); n != len(r.docs) {
		r.poisoned.Store(true)
		logger.Error("index holds %d vectors but metadata has %d chunks", n, len(r.docs))
		return 0, fmt.Errorf("%w: index holds %d vectors but metadata has %d chunks",
			domain.ErrIndexCorrupt, n, len(r.docs))
	}

	return min(topK, len(r.docs)), nil
}

func (r *Retriever) search(vec []float32, k int) ([]domain.SearchResult, error) {
	if len(vec) != r.index.Dimensions() {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrDimensionMismatch, len(vec), r.index.Dimensions())
	}

	query := make([]float32, len(vec))
	copy(query, vec)
	domain.Normalize(query)

	hits, err := r.index.Search(query, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	slices.SortStableFunc(hits, func(a, b driven.VectorHit) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return a.Position - b.Position
		}
	})

	results := make([]domain.SearchResult, 0, len(hits))
	for _, hit := range hits {
		if hit.Position < 0 || hit.Position >= len(r.docs) {
			continue
		}
		results = append(results, domain.SearchResult{
			Chunk: r.docs[hit.Position],
			Score: hit.Score,
			Rank:  len(results) + 1,
		})
	}
	return results, nil
}
