package mcp

import (
	"context"

	"github.com/insectopedia/insectopedia/internal/core/domain"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results  []domain.SearchResult
	manifest domain.IndexManifest
	err      error
	lastTopK int
	query    string
	calls    int
}

func (m *mockRetrievalService) Search(_ context.Context, query string, topK int) ([]domain.SearchResult, error) {
	m.calls++
	m.query = query
	m.lastTopK = topK
	return m.results, m.err
}

func (m *mockRetrievalService) Manifest() domain.IndexManifest {
	return m.manifest
}

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer *domain.Answer
	err    error
}

func (m *mockAnswerService) Ask(_ context.Context, _ string) (*domain.Answer, error) {
	return m.answer, m.err
}

// mockHistoryService is a mock implementation of driving.HistoryService.
type mockHistoryService struct {
	records []domain.QueryRecord
	err     error
}

func (m *mockHistoryService) List(_ context.Context, _ int) ([]domain.QueryRecord, error) {
	return m.records, m.err
}

func (m *mockHistoryService) Clear(_ context.Context) (int, error) {
	return len(m.records), m.err
}
