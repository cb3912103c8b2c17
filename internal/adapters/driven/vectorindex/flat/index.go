// Package flat provides an exhaustive inner-product vector index.
//
// Every search scores the query against every stored vector, so results are
// exact. Vectors are stored contiguously in insertion order; the position of
// a vector is its insertion ordinal.
package flat

import (
	"fmt"
	"sort"

	"github.com/insectopedia/insectopedia/internal/core/domain"
	"github.com/insectopedia/insectopedia/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is a flat inner-product index. It is not safe for concurrent
// mutation; once built it may be searched from many goroutines.
type Index struct {
	dims int
	data []float32
}

// New creates an empty index for vectors of the given dimension.
func New(dims int) (*Index, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("%w: dimensions must be positive, got %d", domain.ErrInvalidConfig, dims)
	}
	return &Index{dims: dims}, nil
}

// Factory is a driven.VectorIndexFactory producing flat indexes.
func Factory(dims int) (driven.VectorIndex, error) {
	idx, err := New(dims)
	if err != nil {
		return nil, err
	}
	return idx, nil
}

// FromVectors builds an index holding vecs in order.
func FromVectors(dims int, vecs [][]float32) (*Index, error) {
	idx, err := New(dims)
	if err != nil {
		return nil, err
	}
	idx.data = make([]float32, 0, len(vecs)*dims)
	for i, v := range vecs {
		if err := idx.Add(v); err != nil {
			return nil, fmt.Errorf("vector %d: %w", i, err)
		}
	}
	return idx, nil
}

// Add appends a vector.
func (x *Index) Add(vec []float32) error {
	if len(vec) != x.dims {
		return fmt.Errorf("%w: expected %d, got %d", domain.ErrDimensionMismatch, x.dims, len(vec))
	}
	x.data = append(x.data, vec...)
	return nil
}

// Search returns the k best hits. When k exceeds the number of vectors,
// the missing slots are filled with Position -1.
func (x *Index) Search(query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) != x.dims {
		return nil, fmt.Errorf("%w: expected %d, got %d", domain.ErrDimensionMismatch, x.dims, len(query))
	}
	if k <= 0 {
		return []driven.VectorHit{}, nil
	}

	n := x.Len()
	hits := make([]driven.VectorHit, n)
	for i := 0; i < n; i++ {
		hits[i] = driven.VectorHit{
			Position: i,
			Score:    domain.Dot(query, x.data[i*x.dims:(i+1)*x.dims]),
		}
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Score > hits[b].Score
	})

	if k < n {
		return hits[:k], nil
	}
	for len(hits) < k {
		hits = append(hits, driven.VectorHit{Position: -1})
	}
	return hits, nil
}

// Len returns the number of vectors.
func (x *Index) Len() int {
	return len(x.data) / x.dims
}

// Dimensions returns the vector size.
func (x *Index) Dimensions() int {
	return x.dims
}

// Vector returns a copy of the vector at position i.
func (x *Index) Vector(i int) []float32 {
	out := make([]float32, x.dims)
	copy(out, x.data[i*x.dims:(i+1)*x.dims])
	return out
}
