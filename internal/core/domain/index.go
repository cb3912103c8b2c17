package domain

import "time"

// MetricInnerProduct is the only similarity metric the index supports.
// Vectors are unit-normalised, so it is equivalent to cosine similarity.
const MetricInnerProduct = "inner_product"

// IndexManifest is the format contract stored alongside every index.
// A query process must use the same embedding model the index was built with.
type IndexManifest struct {
	// Model is the embedding model identifier used at build time.
	Model string `json:"model"`

	// Dimensions is the vector size.
	Dimensions int `json:"dimensions"`

	// Count is the number of vectors, equal to the number of chunks.
	Count int `json:"count"`

	// Metric is the similarity metric, always MetricInnerProduct.
	Metric string `json:"metric"`

	// BuildID uniquely identifies the build run that produced the index.
	BuildID string `json:"build_id"`

	// CreatedAt is when the build finished.
	CreatedAt time.Time `json:"created_at"`
}

// IndexSnapshot is a complete index in memory: manifest, vectors and chunks.
// Vectors[i] belongs to Docs[i]. Snapshots are immutable once built or loaded.
type IndexSnapshot struct {
	Manifest IndexManifest
	Vectors  [][]float32
	Docs     []Chunk
}

// Len returns the number of chunks in the snapshot.
func (s *IndexSnapshot) Len() int {
	return len(s.Docs)
}

// BuildReport summarises a completed build.
type BuildReport struct {
	// Records is the number of source records read.
	Records int

	// Chunks is the number of chunks indexed.
	Chunks int

	// Manifest is the manifest written with the index.
	Manifest IndexManifest

	// IndexPath and MetaPath are where the pair was written.
	IndexPath string
	MetaPath  string

	// Duration is the wall-clock build time.
	Duration time.Duration
}
