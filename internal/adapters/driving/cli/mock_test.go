package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/insectopedia/insectopedia/internal/core/domain"
	"github.com/insectopedia/insectopedia/internal/core/ports/driving"
)

type mockRetrieval struct {
	results  []domain.SearchResult
	err      error
	manifest domain.IndexManifest
	query    string
	topK     int
}

func (m *mockRetrieval) Search(_ context.Context, query string, topK int) ([]domain.SearchResult, error) {
	m.query, m.topK = query, topK
	return m.results, m.err
}

func (m *mockRetrieval) Manifest() domain.IndexManifest { return m.manifest }

type mockAnswer struct {
	answer   *domain.Answer
	err      error
	question string
}

func (m *mockAnswer) Ask(_ context.Context, question string) (*domain.Answer, error) {
	m.question = question
	return m.answer, m.err
}

type mockHistory struct {
	records  []domain.QueryRecord
	err      error
	limit    int
	released bool
}

func (m *mockHistory) List(_ context.Context, limit int) ([]domain.QueryRecord, error) {
	m.limit = limit
	return m.records, m.err
}

func (m *mockHistory) Clear(context.Context) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	n := len(m.records)
	m.records = nil
	return n, nil
}

type mockBuilder struct {
	report *domain.BuildReport
	err    error
	calls  int
}

func (m *mockBuilder) Build(_ context.Context, req driving.BuildRequest) (*domain.BuildReport, error) {
	m.calls++
	if req.Progress != nil && m.report != nil {
		req.Progress(m.report.Chunks, m.report.Chunks)
	}
	return m.report, m.err
}

type mockSettings struct {
	settings    *domain.AppSettings
	getErr      error
	validateErr error
	embedErr    error
	llmErr      error
	values      map[string]string
	embedding   []string
	llm         []string
}

func newMockSettings() *mockSettings {
	s := domain.DefaultAppSettings()
	return &mockSettings{settings: &s, values: map[string]string{}}
}

func (m *mockSettings) Get() (*domain.AppSettings, error) { return m.settings, m.getErr }
func (m *mockSettings) Save(s *domain.AppSettings) error  { m.settings = s; return nil }

func (m *mockSettings) Set(key, value string) error {
	if !strings.Contains(key, ".") {
		return errors.New("invalid config: unknown setting \"" + key + "\"")
	}
	if value == "bad" {
		return errors.New("invalid config: bad value")
	}
	m.values[key] = value
	return nil
}

func (m *mockSettings) Keys() []string {
	return []string{"chunking.chunk_size", "llm.provider"}
}

func (m *mockSettings) SetEmbeddingProvider(p domain.AIProvider, model, apiKey string) error {
	m.embedding = []string{p.String(), model, apiKey}
	return nil
}

func (m *mockSettings) SetLLMProvider(p domain.AIProvider, model, apiKey string) error {
	m.llm = []string{p.String(), model, apiKey}
	return nil
}

func (m *mockSettings) Validate() error                 { return m.validateErr }
func (m *mockSettings) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }
func (m *mockSettings) ValidateEmbeddingConfig() error  { return m.embedErr }
func (m *mockSettings) ValidateLLMConfig() error        { return m.llmErr }

type mockBackend struct {
	settings  *mockSettings
	builder   *mockBuilder
	retrieval *mockRetrieval
	answer    *mockAnswer
	history   *mockHistory

	openErr    error
	builderErr error
	closed     bool
	released   bool
}

func newMockBackend() *mockBackend {
	return &mockBackend{
		settings: newMockSettings(),
		builder: &mockBuilder{report: &domain.BuildReport{
			Records:   2,
			Chunks:    5,
			Manifest:  domain.IndexManifest{Model: "hashing-384", Dimensions: 384, Count: 5},
			IndexPath: "index/insects.index",
			MetaPath:  "index/meta.json",
		}},
		retrieval: &mockRetrieval{manifest: domain.IndexManifest{Model: "hashing-384", Count: 5}},
		answer:    &mockAnswer{},
		history:   &mockHistory{},
	}
}

func (b *mockBackend) Settings() driving.SettingsService { return b.settings }

func (b *mockBackend) Builder(context.Context) (driving.IndexBuilder, func() error, error) {
	if b.builderErr != nil {
		return nil, nil, b.builderErr
	}
	return b.builder, func() error { b.released = true; return nil }, nil
}

func (b *mockBackend) Open(context.Context) (*Session, error) {
	if b.openErr != nil {
		return nil, b.openErr
	}
	return &Session{
		Settings:  b.settings.settings,
		Retrieval: b.retrieval,
		Answer:    b.answer,
		History:   b.history,
		Close:     func() error { b.closed = true; return nil },
	}, nil
}

func (b *mockBackend) History() (driving.HistoryService, func() error, error) {
	return b.history, func() error { b.history.released = true; return nil }, nil
}

// execute runs the root command against b and returns everything it printed.
func execute(t *testing.T, b Backend, stdin string, args ...string) (string, error) {
	t.Helper()

	backend = b
	out := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	t.Cleanup(func() {
		backend = nil
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		askShowContext = false
		searchTopK = 0
		searchJSON = false
		historyLimit = 20
		historyJSON = false
		settingsYAML = false
		buildWatch = false
		serveAddr = ""
		mcpPort = 0
	})

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}
