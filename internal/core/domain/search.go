package domain

// DefaultTopK is the number of chunks retrieved when the caller does not say.
const DefaultTopK = 3

// SearchResult represents a single retrieved chunk.
type SearchResult struct {
	// Chunk is the matched chunk.
	Chunk Chunk `json:"chunk"`

	// Score is the inner-product similarity in [-1, 1]. Higher is closer.
	// It is computed per query and never persisted.
	Score float64 `json:"score"`

	// Rank is the 1-based position in the result list.
	Rank int `json:"rank"`
}
