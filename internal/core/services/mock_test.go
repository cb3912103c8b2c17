package services

import (
	"context"
	"sync"

	"github.com/insectopedia/insectopedia/internal/core/domain"
	"github.com/insectopedia/insectopedia/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbedder implements driven.EmbeddingService for testing.
// Texts found in vectors get that vector; others get a one-hot vector.
type mockEmbedder struct {
	mu         sync.Mutex
	model      string
	dims       int
	vectors    map[string][]float32
	embedErr   error
	batchErr   error
	shortBatch bool
	embedCalls int
	batchSizes []int
}

func newMockEmbedder(dims int) *mockEmbedder {
	return &mockEmbedder{model: "mock-embed", dims: dims, vectors: map[string][]float32{}}
}

func (m *mockEmbedder) vector(text string) []float32 {
	if v, ok := m.vectors[text]; ok {
		return v
	}
	v := make([]float32, m.dims)
	v[0] = 1
	return v
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embedCalls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vector(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchSizes = append(m.batchSizes, len(texts))
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vector(t)
	}
	if m.shortBatch && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int            { return m.dims }
func (m *mockEmbedder) ModelName() string          { return m.model }
func (m *mockEmbedder) Ping(context.Context) error { return nil }
func (m *mockEmbedder) Close() error               { return nil }

// mockLLM implements driven.LLMService for testing.
type mockLLM struct {
	mu      sync.Mutex
	text    string
	err     error
	prompts []string
	block   bool
}

func (m *mockLLM) Generate(ctx context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	if m.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return m.text, m.err
}

func (m *mockLLM) ModelName() string          { return "mock-llm" }
func (m *mockLLM) Ping(context.Context) error { return nil }
func (m *mockLLM) Close() error               { return nil }

// mockRecordSource implements driven.RecordSource for testing.
type mockRecordSource struct {
	records []domain.SourceRecord
	err     error
}

func (m *mockRecordSource) Records(context.Context) ([]domain.SourceRecord, error) {
	return m.records, m.err
}

func (m *mockRecordSource) Location() string { return "mock.csv" }

// mockIndexStore implements driven.IndexStore for testing.
type mockIndexStore struct {
	written  *domain.IndexSnapshot
	writeErr error
	readErr  error
}

func (m *mockIndexStore) Write(_ context.Context, snap *domain.IndexSnapshot) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.written = snap
	return nil
}

func (m *mockIndexStore) Read(context.Context) (*domain.IndexSnapshot, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	if m.written == nil {
		return nil, domain.ErrIndexNotFound
	}
	return m.written, nil
}

func (m *mockIndexStore) Locations() (string, string) { return "mock.index", "mock.json" }

// mockVectorIndex implements driven.VectorIndex with scripted behaviour.
type mockVectorIndex struct {
	dims      int
	count     int
	lenDelta  int
	hits      []driven.VectorHit
	searchErr error
}

func (m *mockVectorIndex) Add(vec []float32) error {
	m.count++
	return nil
}

func (m *mockVectorIndex) Search(_ []float32, k int) ([]driven.VectorHit, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k < len(m.hits) {
		return m.hits[:k], nil
	}
	return m.hits, nil
}

func (m *mockVectorIndex) Len() int        { return m.count + m.lenDelta }
func (m *mockVectorIndex) Dimensions() int { return m.dims }

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompt string
	err    error
}

func (m *mockPromptStore) Load(string) (string, error) { return m.prompt, m.err }
func (m *mockPromptStore) Reload()                     {}

// mockHistoryStore wraps a slice and can fail on save.
type mockHistoryStore struct {
	saved   []domain.QueryRecord
	saveErr error
}

func (m *mockHistoryStore) Save(_ context.Context, rec *domain.QueryRecord) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, *rec)
	return nil
}

func (m *mockHistoryStore) List(context.Context, int) ([]domain.QueryRecord, error) {
	return m.saved, nil
}

func (m *mockHistoryStore) Clear(context.Context) (int, error) {
	n := len(m.saved)
	m.saved = nil
	return n, nil
}

func (m *mockHistoryStore) Close() error { return nil }

// indexFactory returns a factory that hands out idx.
func indexFactory(idx driven.VectorIndex) driven.VectorIndexFactory {
	return func(dims int) (driven.VectorIndex, error) { return idx, nil }
}
