package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/insectopedia/insectopedia/internal/chunker"
	"github.com/insectopedia/insectopedia/internal/core/domain"
	"github.com/insectopedia/insectopedia/internal/core/ports/driven"
	"github.com/insectopedia/insectopedia/internal/core/ports/driving"
	"github.com/insectopedia/insectopedia/internal/logger"
)

// Ensure IndexBuilder implements the interface.
var _ driving.IndexBuilder = (*IndexBuilder)(nil)

// DefaultBatchSize is the number of chunks embedded per request.
const DefaultBatchSize = 32

// IndexBuilder turns the corpus into a persisted index pair.
// Concurrent builds writing the same paths are not coordinated.
type IndexBuilder struct {
	source    driven.RecordSource
	chunker   *chunker.Chunker
	embedder  driven.EmbeddingService
	store     driven.IndexStore
	batchSize int
	now       func() time.Time
}

// NewIndexBuilder creates an index builder. A non-positive batchSize selects
// DefaultBatchSize.
func NewIndexBuilder(
	source driven.RecordSource,
	ch *chunker.Chunker,
	embedder driven.EmbeddingService,
	store driven.IndexStore,
	batchSize int,
) *IndexBuilder {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &IndexBuilder{
		source:    source,
		chunker:   ch,
		embedder:  embedder,
		store:     store,
		batchSize: batchSize,
		now:       time.Now,
	}
}

// Build reads, chunks, embeds and indexes the whole corpus, then writes the
// index pair. Nothing is written unless every earlier step succeeded.
func (b *IndexBuilder) Build(ctx context.Context, req driving.BuildRequest) (*domain.BuildReport, error) {
	logger.Section("Index Build")
	start := time.Now()

	if b.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	records, err := b.source.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("read records from %s: %w", b.source.Location(), err)
	}
	logger.Info("Read %d records from %s", len(records), b.source.Location())

	var chunks []domain.Chunk
	for _, rec := range records {
		chunks = append(chunks, b.chunker.ChunkRecord(rec)...)
	}
	logger.Info("Split into %d chunks (size=%d, overlap=%d)",
		len(chunks), b.chunker.ChunkSize(), b.chunker.Overlap())

	vectors, err := b.embed(ctx, chunks, req.Progress)
	if err != nil {
		return nil, err
	}

	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: %d vectors for %d chunks",
			domain.ErrIndexCorrupt, len(vectors), len(chunks))
	}

	docs := chunks
	if docs == nil {
		docs = []domain.Chunk{}
	}
	snapshot := &domain.IndexSnapshot{
		Manifest: domain.IndexManifest{
			Model:      b.embedder.ModelName(),
			Dimensions: b.embedder.Dimensions(),
			Count:      len(docs),
			Metric:     domain.MetricInnerProduct,
			BuildID:    uuid.NewString(),
			CreatedAt:  b.now().UTC(),
		},
		Vectors: vectors,
		Docs:    docs,
	}

	if err := b.store.Write(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("write index: %w", err)
	}

	indexPath, metaPath := b.store.Locations()
	report := &domain.BuildReport{
		Records:   len(records),
		Chunks:    len(docs),
		Manifest:  snapshot.Manifest,
		IndexPath: indexPath,
		MetaPath:  metaPath,
		Duration:  time.Since(start),
	}
	logger.Info("Build %s wrote %d vectors in %s", snapshot.Manifest.BuildID, len(docs), report.Duration)
	return report, nil
}

// embed embeds chunk texts in batches and returns unit-normalised copies.
func (b *IndexBuilder) embed(
	ctx context.Context, chunks []domain.Chunk, progress func(done, total int),
) ([][]float32, error) {
	defer logger.Timed("embedding")()

	total := len(chunks)
	dims := b.embedder.Dimensions()
	vectors := make([][]float32, 0, total)
	if progress != nil {
		progress(0, total)
	}

	for start := 0; start < total; start += b.batchSize {
		end := min(start+b.batchSize, total)
		batch, err := b.embedBatch(ctx, chunks[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed chunks %d-%d: %w", start, end-1, err)
		}

		for i, vec := range batch {
			if len(vec) != dims {
				return nil, fmt.Errorf("%w: chunk %s has %d dimensions, want %d",
					domain.ErrDimensionMismatch, chunks[start+i].ID, len(vec), dims)
			}
			unit := make([]float32, dims)
			copy(unit, vec)
			domain.Normalize(unit)
			vectors = append(vectors, unit)
		}

		logger.Debug("Embedded %d/%d chunks", end, total)
		if progress != nil {
			progress(end, total)
		}
	}
	return vectors, nil
}

// embedBatch returns one vector per chunk. Blank chunks are not sent to the
// provider and get a zero vector, which matches nothing.
func (b *IndexBuilder) embedBatch(ctx context.Context, chunks []domain.Chunk) ([][]float32, error) {
	vectors := make([][]float32, len(chunks))
	texts := make([]string, 0, len(chunks))
	positions := make([]int, 0, len(chunks))
	for i, c := range chunks {
		if strings.TrimSpace(c.Text) == "" {
			vectors[i] = make([]float32, b.embedder.Dimensions())
			continue
		}
		texts = append(texts, c.Text)
		positions = append(positions, i)
	}
	if len(texts) == 0 {
		return vectors, nil
	}

	embedded, err := b.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(embedded) != len(texts) {
		return nil, fmt.Errorf("got %d vectors for %d texts", len(embedded), len(texts))
	}
	for i, vec := range embedded {
		vectors[positions[i]] = vec
	}
	return vectors, nil
}
