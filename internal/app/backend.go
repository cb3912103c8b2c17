// Package app wires the adapters and core services into a cli.Backend.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/insectopedia/insectopedia/internal/adapters/driven/ai"
	configfile "github.com/insectopedia/insectopedia/internal/adapters/driven/config/file"
	"github.com/insectopedia/insectopedia/internal/adapters/driven/records/csv"
	storagefile "github.com/insectopedia/insectopedia/internal/adapters/driven/storage/file"
	"github.com/insectopedia/insectopedia/internal/adapters/driven/storage/memory"
	"github.com/insectopedia/insectopedia/internal/adapters/driven/storage/sqlite"
	"github.com/insectopedia/insectopedia/internal/adapters/driven/vectorindex/flat"
	"github.com/insectopedia/insectopedia/internal/adapters/driving/cli"
	"github.com/insectopedia/insectopedia/internal/chunker"
	"github.com/insectopedia/insectopedia/internal/core/domain"
	"github.com/insectopedia/insectopedia/internal/core/ports/driven"
	"github.com/insectopedia/insectopedia/internal/core/ports/driving"
	"github.com/insectopedia/insectopedia/internal/core/services"
	"github.com/insectopedia/insectopedia/internal/logger"
)

// Ensure Backend implements the interface.
var _ cli.Backend = (*Backend)(nil)

// Backend creates services from the settings stored in one configuration
// directory.
type Backend struct {
	dir       string
	noHistory bool
	settings  *services.SettingsService
	prompts   driven.PromptStore
}

// NewBackend opens the configuration directory named by opts.
func NewBackend(opts cli.Options) (cli.Backend, error) {
	return New(opts)
}

// New is NewBackend returning the concrete type.
func New(opts cli.Options) (*Backend, error) {
	dir := opts.ConfigDir
	if dir == "" {
		d, err := configfile.DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	store, err := configfile.NewConfigStore(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidConfig, err)
	}
	prompts, err := configfile.NewPromptStore(filepath.Join(dir, "prompts"))
	if err != nil {
		return nil, err
	}

	return &Backend{
		dir:       dir,
		noHistory: opts.NoHistory,
		settings:  services.NewSettingsService(store, ai.NewConfigValidator()),
		prompts:   prompts,
	}, nil
}

// Dir returns the configuration directory.
func (b *Backend) Dir() string {
	return b.dir
}

// Settings returns the settings service.
func (b *Backend) Settings() driving.SettingsService {
	return b.settings
}

// loadSettings reads and validates the settings every command starts from.
func (b *Backend) loadSettings() (*domain.AppSettings, error) {
	s, err := b.settings.Get()
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Builder returns an index builder. The embedding provider is contacted once
// to check it is reachable.
func (b *Backend) Builder(ctx context.Context) (driving.IndexBuilder, func() error, error) {
	s, err := b.loadSettings()
	if err != nil {
		return nil, nil, err
	}

	embedder, err := ai.CreateAndValidateEmbeddingService(ctx, &s.Embedding)
	if err != nil {
		return nil, nil, err
	}
	if embedder == nil {
		return nil, nil, fmt.Errorf("%w: no embedding provider configured", domain.ErrEmbeddingUnavailable)
	}

	ch, err := chunker.New(
		chunker.WithChunkSize(s.Chunking.ChunkSize),
		chunker.WithOverlap(s.Chunking.Overlap),
	)
	if err != nil {
		embedder.Close()
		return nil, nil, err
	}

	builder := services.NewIndexBuilder(
		csv.NewSource(s.Paths.DataPath),
		ch,
		embedder,
		storagefile.NewIndexStore(s.Paths.IndexPath, s.Paths.MetaPath),
		s.Embedding.BatchSize,
	)
	return builder, embedder.Close, nil
}

// Open loads the persisted index and prepares retrieval and answering.
// A missing or unreachable LLM does not fail Open; answers then carry a
// generation failure instead.
func (b *Backend) Open(ctx context.Context) (*cli.Session, error) {
	s, err := b.loadSettings()
	if err != nil {
		return nil, err
	}

	embedder, err := ai.CreateQueryEmbeddingService(ctx, &s.Embedding)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if embedder == nil {
		return nil, fmt.Errorf("%w: no embedding provider configured", domain.ErrEmbeddingUnavailable)
	}

	closers := []func() error{embedder.Close}
	fail := func(err error) (*cli.Session, error) {
		closeAll(closers)
		return nil, err
	}

	done := logger.Timed("load index")
	snap, err := storagefile.NewIndexStore(s.Paths.IndexPath, s.Paths.MetaPath).Read(ctx)
	done()
	if err != nil {
		return fail(err)
	}

	retriever, err := services.NewRetriever(snap, flat.Factory, embedder)
	if err != nil {
		return fail(err)
	}

	llm, err := ai.CreateLLMService(ctx, &s.LLM)
	if err != nil {
		logger.Warn("LLM unavailable, answers will report the failure: %v", err)
		llm = nil
	}
	if llm != nil {
		closers = append(closers, llm.Close)
	}
	generator := services.NewGenerator(llm, b.prompts, s.LLM.Provider, s.LLM.Timeout)

	var history driven.HistoryStore
	if s.History.Enabled && !b.noHistory {
		h, err := sqlite.NewHistoryStore(b.dir)
		if err != nil {
			return fail(err)
		}
		history = h
	} else {
		history = memory.NewHistoryStore()
	}
	closers = append(closers, history.Close)

	return &cli.Session{
		Settings:  s,
		Retrieval: retriever,
		Answer:    services.NewAnswerService(retriever, generator, history, s.Retrieval.TopK),
		History:   services.NewHistoryService(history),
		Close:     func() error { return closeAll(closers) },
	}, nil
}

// History opens the persistent query history.
func (b *Backend) History() (driving.HistoryService, func() error, error) {
	store, err := sqlite.NewHistoryStore(b.dir)
	if err != nil {
		return nil, nil, err
	}
	return services.NewHistoryService(store), store.Close, nil
}

// closeAll runs closers in reverse order and joins their errors.
func closeAll(closers []func() error) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
