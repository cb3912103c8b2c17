package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insectopedia/insectopedia/internal/adapters/driven/embedding/hashing"
	"github.com/insectopedia/insectopedia/internal/adapters/driven/records/csv"
	"github.com/insectopedia/insectopedia/internal/adapters/driven/storage/file"
	"github.com/insectopedia/insectopedia/internal/adapters/driven/storage/memory"
	"github.com/insectopedia/insectopedia/internal/adapters/driven/vectorindex/flat"
	"github.com/insectopedia/insectopedia/internal/chunker"
	"github.com/insectopedia/insectopedia/internal/core/domain"
	"github.com/insectopedia/insectopedia/internal/core/ports/driving"
)

const antBeeCSV = `id,name,taxonomy,description,habitat
1,Ant,Formicidae,Ants live in colonies and farm aphids,underground nests
2,Honey bee,Apidae,Bees collect nectar and make honey,hives
`

// TestPipeline_BuildLoadAsk builds an index from a CSV file, reloads it
// from disk and answers questions against it.
func TestPipeline_BuildLoadAsk(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "insects.csv")
	require.NoError(t, os.WriteFile(dataPath, []byte(antBeeCSV), 0o644))

	store := file.NewIndexStore(filepath.Join(dir, "index", "insects.index"), filepath.Join(dir, "index", "meta.json"))
	embedder := hashing.NewEmbeddingService(384)
	ch, err := chunker.New()
	require.NoError(t, err)

	builder := NewIndexBuilder(csv.NewSource(dataPath), ch, embedder, store, 0)
	report, err := builder.Build(ctx, driving.BuildRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Records)
	assert.Equal(t, 2, report.Chunks)
	assert.Equal(t, "hashing-384", report.Manifest.Model)

	snap, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, report.Manifest.BuildID, snap.Manifest.BuildID)

	retriever, err := NewRetriever(snap, flat.Factory, embedder)
	require.NoError(t, err)

	results, err := retriever.Search(ctx, "Where do ants live?", 0)
	require.NoError(t, err)
	require.Len(t, results, 2, "top_k is clamped to the corpus size")
	assert.Equal(t, "1_0", results[0].Chunk.ID)
	assert.Equal(t, "Ant", results[0].Chunk.Name)
	assert.Greater(t, results[0].Score, 0.0)
	assert.InDelta(t, 0.0, results[1].Score, 1e-9)

	results, err = retriever.Search(ctx, "How do bees make honey?", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "2_0", results[0].Chunk.ID)

	llm := &mockLLM{text: "Ants live in underground nests."}
	history := memory.NewHistoryStore()
	svc := NewAnswerService(retriever, NewGenerator(llm, nil, domain.AIProviderGemini, time.Second), history, 1)

	answer, err := svc.Ask(ctx, "Where do ants live?")
	require.NoError(t, err)
	assert.Equal(t, "Ants live in underground nests.", answer.Text)
	assert.Equal(t, "Ant (id=1_0): Ants live in colonies and farm aphids underground nests", answer.Context)
	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], answer.Context)

	records, err := NewHistoryService(history).List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"1_0"}, records[0].SourceIDs)
}

func TestPipeline_ModelMismatchAfterRebuild(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "insects.csv")
	require.NoError(t, os.WriteFile(dataPath, []byte(antBeeCSV), 0o644))
	store := file.NewIndexStore(filepath.Join(dir, "i.index"), filepath.Join(dir, "m.json"))
	ch, err := chunker.New()
	require.NoError(t, err)

	_, err = NewIndexBuilder(csv.NewSource(dataPath), ch, hashing.NewEmbeddingService(64), store, 0).
		Build(ctx, driving.BuildRequest{})
	require.NoError(t, err)

	snap, err := store.Read(ctx)
	require.NoError(t, err)

	_, err = NewRetriever(snap, flat.Factory, hashing.NewEmbeddingService(128))
	assert.ErrorIs(t, err, domain.ErrModelMismatch)
}

func TestPipeline_MissingCorpusWritesNothing(t *testing.T) {
	dir := t.TempDir()
	indexPath := filepath.Join(dir, "i.index")
	store := file.NewIndexStore(indexPath, filepath.Join(dir, "m.json"))
	ch, err := chunker.New()
	require.NoError(t, err)

	_, err = NewIndexBuilder(csv.NewSource(filepath.Join(dir, "missing.csv")), ch,
		hashing.NewEmbeddingService(0), store, 0).Build(context.Background(), driving.BuildRequest{})
	assert.ErrorIs(t, err, domain.ErrSourceData)
	assert.NoFileExists(t, indexPath)
}

const socialInsectsCSV = `id,name,taxonomy,description,habitat
1,Ant,,Ants are social insects.,
2,Bee,,Bees pollinate flowers.,
`

// buildFromCSV writes data to a temp corpus, builds it with a 384-dimension
// hashing embedder and loads the persisted pair back into a retriever.
func buildFromCSV(t *testing.T, data string) (*Retriever, *domain.IndexSnapshot, *hashing.EmbeddingService) {
	t.Helper()
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "insects.csv")
	require.NoError(t, os.WriteFile(dataPath, []byte(data), 0o644))

	store := file.NewIndexStore(filepath.Join(dir, "insects.index"), filepath.Join(dir, "meta.json"))
	embedder := hashing.NewEmbeddingService(384)
	ch, err := chunker.New(chunker.WithChunkSize(400))
	require.NoError(t, err)

	_, err = NewIndexBuilder(csv.NewSource(dataPath), ch, embedder, store, 0).
		Build(context.Background(), driving.BuildRequest{})
	require.NoError(t, err)

	snap, err := store.Read(context.Background())
	require.NoError(t, err)
	retriever, err := NewRetriever(snap, flat.Factory, embedder)
	require.NoError(t, err)
	return retriever, snap, embedder
}

func TestPipeline_BeeRankedAboveAnt(t *testing.T) {
	retriever, _, _ := buildFromCSV(t, socialInsectsCSV)

	results, err := retriever.Search(context.Background(), "What do bees do?", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "Bee", results[0].Chunk.Name)
	assert.Equal(t, "Ant", results[1].Chunk.Name)
	assert.Greater(t, results[0].Score, results[1].Score)
	assert.Contains(t, AssembleContext(results), "Bee (id=2_0): Bees pollinate flowers.")
}

func TestPipeline_RoundTripParity(t *testing.T) {
	retriever, snap, embedder := buildFromCSV(t, socialInsectsCSV)
	require.Len(t, snap.Vectors, len(snap.Docs))

	for i, doc := range snap.Docs {
		t.Run(doc.ID, func(t *testing.T) {
			vec, err := embedder.Embed(context.Background(), doc.Text)
			require.NoError(t, err)

			results, err := retriever.SearchVector(context.Background(), vec, 1)
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, snap.Docs[i].ID, results[0].Chunk.ID)
			assert.Equal(t, 1, results[0].Rank)
			assert.InDelta(t, 1.0, results[0].Score, 1e-5)
		})
	}
}
