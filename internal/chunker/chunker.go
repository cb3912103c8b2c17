// Package chunker splits record text into fixed-size, overlapping windows.
package chunker

import (
	"fmt"
	"strings"

	"github.com/insectopedia/insectopedia/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 400

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 50

// Chunker splits normalised text into windows of chunkSize characters,
// each starting chunkSize-overlap characters after the previous one.
// Sizes count runes, not bytes.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		c.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		c.overlap = overlap
	}
}

// New creates a chunker. It fails with domain.ErrInvalidChunking when the
// window could not advance: a non-positive size, a negative overlap, or an
// overlap not smaller than the size.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	settings := domain.ChunkingSettings{ChunkSize: c.chunkSize, Overlap: c.overlap}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("new chunker: %w", err)
	}

	return c, nil
}

// ChunkSize returns the window size in characters.
func (c *Chunker) ChunkSize() int { return c.chunkSize }

// Overlap returns the overlap in characters.
func (c *Chunker) Overlap() int { return c.overlap }

// Normalize collapses every run of whitespace to a single space and trims both ends.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Split normalises text and cuts it into windows.
//
// Text no longer than the chunk size yields exactly one chunk, which may be
// empty. Longer text yields windows until one reaches the end of the text;
// the last window may be shorter than the chunk size.
func (c *Chunker) Split(text string) []string {
	runes := []rune(Normalize(text))
	if len(runes) <= c.chunkSize {
		return []string{string(runes)}
	}

	step := c.chunkSize - c.overlap
	chunks := make([]string, 0, (len(runes)-c.overlap+step-1)/step)

	for start := 0; ; start += step {
		end := min(start+c.chunkSize, len(runes))
		chunks = append(chunks, string(runes[start:end]))
		if end >= len(runes) {
			break
		}
	}

	return chunks
}

// ChunkRecord splits a record's descriptive text. Chunk i gets the ID
// "{record id}_{i}" and carries the record's name and taxonomy.
func (c *Chunker) ChunkRecord(rec domain.SourceRecord) []domain.Chunk {
	texts := c.Split(rec.DescriptiveText())
	chunks := make([]domain.Chunk, 0, len(texts))

	for i, text := range texts {
		chunks = append(chunks, domain.Chunk{
			ID:        domain.ChunkID(rec.ID, i),
			SpeciesID: rec.ID,
			Name:      rec.Name,
			Taxonomy:  rec.Taxonomy,
			Text:      text,
		})
	}

	return chunks
}
