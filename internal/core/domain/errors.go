package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig indicates a setting has an unusable value.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidChunking indicates chunk size and overlap cannot produce progress.
	// Overlap must be non-negative and strictly smaller than the chunk size.
	ErrInvalidChunking = errors.New("invalid chunking configuration")

	// ErrSourceData indicates the corpus file is missing, unreadable or malformed.
	// It is fatal to a build and is reported before any artifact is written.
	ErrSourceData = errors.New("source data error")

	// Index Errors.

	// ErrIndexNotFound indicates the index or metadata file does not exist.
	// Run a build before serving queries.
	ErrIndexNotFound = errors.New("index not found")

	// ErrIndexCorrupt indicates the vector index and chunk metadata disagree.
	// Queries against a corrupt index are refused for the life of the process.
	ErrIndexCorrupt = errors.New("index corrupt")

	// ErrModelMismatch indicates the index was built with a different embedding model
	// than the one configured for queries.
	ErrModelMismatch = errors.New("embedding model mismatch")

	// ErrDimensionMismatch indicates a vector does not have the index dimensionality.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// Service Errors.

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Questions can still be searched but not answered.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Neither builds nor queries are possible without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates no index has been loaded.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrRateLimited indicates a provider rejected a request for exceeding its quota.
	ErrRateLimited = errors.New("rate limited")
)
