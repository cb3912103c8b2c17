package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/insectopedia/insectopedia/internal/core/domain"
	"github.com/insectopedia/insectopedia/internal/core/ports/driven"
	"github.com/insectopedia/insectopedia/internal/core/ports/driving"
	"github.com/insectopedia/insectopedia/internal/logger"
)

// Ensure AnswerService and HistoryService implement their interfaces.
var (
	_ driving.AnswerService  = (*AnswerService)(nil)
	_ driving.HistoryService = (*HistoryService)(nil)
)

// AnswerService runs the full question answering pipeline.
type AnswerService struct {
	retriever driving.RetrievalService
	generator *Generator
	history   driven.HistoryStore
	topK      int
}

// NewAnswerService creates an answer service. history may be nil to skip recording.
func NewAnswerService(
	retriever driving.RetrievalService,
	generator *Generator,
	history driven.HistoryStore,
	topK int,
) *AnswerService {
	return &AnswerService{
		retriever: retriever,
		generator: generator,
		history:   history,
		topK:      topK,
	}
}

// Ask retrieves passages for question and generates an answer from them.
// Retrieval and embedding failures are returned as errors. Generation
// failures are not: the Answer carries the message and Failed is set.
func (s *AnswerService) Ask(ctx context.Context, question string) (*domain.Answer, error) {
	logger.Section("Ask")
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	}
	start := time.Now()

	results, err := s.retriever.Search(ctx, question, s.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}
	logger.Debug("Retrieved %d passages", len(results))

	passages := AssembleContext(results)
	gen := s.generator.Generate(ctx, question, passages)

	answer := &domain.Answer{
		Question: question,
		Text:     gen.Message(),
		Failed:   gen.Failed(),
		Context:  passages,
		Sources:  results,
		Latency:  time.Since(start),
	}
	s.record(ctx, answer)
	return answer, nil
}

// record saves the answer to history. A history failure is logged, never returned.
func (s *AnswerService) record(ctx context.Context, answer *domain.Answer) {
	if s.history == nil {
		return
	}

	ids := make([]string, len(answer.Sources))
	for i, r := range answer.Sources {
		ids[i] = r.Chunk.ID
	}
	rec := &domain.QueryRecord{
		Question:  answer.Question,
		Answer:    answer.Text,
		Failed:    answer.Failed,
		SourceIDs: ids,
		Latency:   answer.Latency,
		CreatedAt: time.Now(),
	}
	if err := s.history.Save(ctx, rec); err != nil {
		logger.Warn("Failed to record history: %v", err)
	}
}

// HistoryService exposes the query history.
type HistoryService struct {
	store driven.HistoryStore
}

// NewHistoryService creates a history service. A nil store behaves as empty.
func NewHistoryService(store driven.HistoryStore) *HistoryService {
	return &HistoryService{store: store}
}

// List returns up to limit records, newest first.
func (s *HistoryService) List(ctx context.Context, limit int) ([]domain.QueryRecord, error) {
	if s.store == nil {
		return []domain.QueryRecord{}, nil
	}
	return s.store.List(ctx, limit)
}

// Clear removes all records and reports how many were removed.
func (s *HistoryService) Clear(ctx context.Context) (int, error) {
	if s.store == nil {
		return 0, nil
	}
	return s.store.Clear(ctx)
}
