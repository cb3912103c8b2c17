package driven

// VectorIndex is an ordered, exhaustive similarity index.
// The vector added n-th sits at position n, which is also the position of its
// chunk in the metadata. Vectors are expected to be unit-normalised so that the
// inner product is the cosine similarity.
type VectorIndex interface {
	// Add appends a vector. It fails if the vector has the wrong dimension.
	Add(vec []float32) error

	// Search returns up to k hits ranked by descending inner product.
	// Ties are broken by ascending position. Positions are never reordered.
	Search(query []float32, k int) ([]VectorHit, error)

	// Len returns the number of vectors in the index.
	Len() int

	// Dimensions returns the vector size.
	Dimensions() int
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// Position is the index of the matched vector, or -1 when the index
	// had no more matches to offer.
	Position int

	// Score is the inner product with the query, in [-1, 1] for unit vectors.
	Score float64
}

// VectorIndexFactory creates an empty index of the given dimension.
type VectorIndexFactory func(dims int) (VectorIndex, error)
