package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insectopedia/insectopedia/internal/adapters/driving/cli"
	"github.com/insectopedia/insectopedia/internal/core/domain"
	"github.com/insectopedia/insectopedia/internal/core/ports/driving"
)

const corpus = `id,name,taxonomy,description,habitat
1,Honey Bee,Apis mellifera,Honey bees live in colonies and make honey from nectar.,Gardens and meadows
2,Monarch Butterfly,Danaus plexippus,Monarchs migrate thousands of kilometres every autumn.,Fields with milkweed
3,Praying Mantis,Mantis religiosa,Mantises ambush other insects with raking forelegs.,Shrubs and tall grass
`

// newTestBackend returns a backend using the offline hashing embedder and no
// configured LLM, with the corpus and index under a temp directory.
func newTestBackend(t *testing.T, noHistory bool) *Backend {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "")

	dir := t.TempDir()
	dataPath := filepath.Join(dir, "insects.csv")
	require.NoError(t, os.WriteFile(dataPath, []byte(corpus), 0o600))

	b, err := New(cli.Options{ConfigDir: filepath.Join(dir, "config"), NoHistory: noHistory})
	require.NoError(t, err)

	s := domain.DefaultAppSettings()
	s.Embedding.Provider = domain.AIProviderHashing
	s.Embedding.Model = "hashing-64"
	s.Chunking = domain.ChunkingSettings{ChunkSize: 40, Overlap: 10}
	s.Paths = domain.PathSettings{
		DataPath:  dataPath,
		IndexPath: filepath.Join(dir, "index", "insects.index"),
		MetaPath:  filepath.Join(dir, "index", "meta.json"),
	}
	require.NoError(t, b.Settings().Save(&s))
	return b
}

func build(t *testing.T, b *Backend) *domain.BuildReport {
	t.Helper()
	builder, release, err := b.Builder(context.Background())
	require.NoError(t, err)
	defer release()

	report, err := builder.Build(context.Background(), driving.BuildRequest{})
	require.NoError(t, err)
	return report
}

func TestNewBackend_DefaultsDirFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("INSECTOPEDIA_HOME", dir)

	b, err := New(cli.Options{})
	require.NoError(t, err)
	assert.Equal(t, dir, b.Dir())

	var _ cli.Backend = b
}

func TestBackend_Builder(t *testing.T) {
	b := newTestBackend(t, false)
	report := build(t, b)

	assert.Equal(t, 3, report.Records)
	assert.Greater(t, report.Chunks, 3)
	assert.Equal(t, "hashing-64", report.Manifest.Model)
	assert.Equal(t, 64, report.Manifest.Dimensions)
	assert.FileExists(t, report.IndexPath)
	assert.FileExists(t, report.MetaPath)
}

func TestBackend_Builder_InvalidChunking(t *testing.T) {
	b := newTestBackend(t, false)
	s, err := b.Settings().Get()
	require.NoError(t, err)
	s.Chunking.Overlap = 40
	require.NoError(t, b.Settings().Save(s))

	_, _, err = b.Builder(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidChunking)
}

func TestBackend_Open_WithoutIndex(t *testing.T) {
	b := newTestBackend(t, false)

	_, err := b.Open(context.Background())
	assert.ErrorIs(t, err, domain.ErrIndexNotFound)
}

func TestBackend_Open_ModelMismatch(t *testing.T) {
	b := newTestBackend(t, false)
	build(t, b)

	require.NoError(t, b.Settings().Set("embedding.model", "hashing-32"))

	_, err := b.Open(context.Background())
	assert.ErrorIs(t, err, domain.ErrModelMismatch)
}

func TestBackend_Open_SearchAndAsk(t *testing.T) {
	b := newTestBackend(t, false)
	build(t, b)

	session, err := b.Open(context.Background())
	require.NoError(t, err)
	defer session.Close()

	assert.Equal(t, "hashing-64", session.Retrieval.Manifest().Model)

	results, err := session.Retrieval.Search(context.Background(), "honey bees nectar", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "1", results[0].Chunk.SpeciesID)

	// No LLM is configured, so the answer reports the generation failure
	// and still carries its sources.
	answer, err := session.Answer.Ask(context.Background(), "  Where do monarchs migrate?  ")
	require.NoError(t, err)
	assert.True(t, answer.Failed)
	assert.Equal(t, "Where do monarchs migrate?", answer.Question)
	assert.Len(t, answer.Sources, domain.DefaultTopK)

	records, err := session.History.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Where do monarchs migrate?", records[0].Question)
}

func TestBackend_History_PersistsAcrossSessions(t *testing.T) {
	b := newTestBackend(t, false)
	build(t, b)

	session, err := b.Open(context.Background())
	require.NoError(t, err)
	_, err = session.Answer.Ask(context.Background(), "What do mantises eat?")
	require.NoError(t, err)
	require.NoError(t, session.Close())

	history, release, err := b.History()
	require.NoError(t, err)
	defer release()

	records, err := history.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)

	n, err := history.Clear(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestBackend_NoHistory(t *testing.T) {
	b := newTestBackend(t, true)
	build(t, b)

	session, err := b.Open(context.Background())
	require.NoError(t, err)
	_, err = session.Answer.Ask(context.Background(), "What do mantises eat?")
	require.NoError(t, err)
	require.NoError(t, session.Close())

	history, release, err := b.History()
	require.NoError(t, err)
	defer release()

	records, err := history.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}
