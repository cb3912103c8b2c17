package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/insectopedia/insectopedia/internal/core/domain"
	"github.com/insectopedia/insectopedia/internal/core/ports/driven"
)

// Ensure HistoryStore implements the interface.
var _ driven.HistoryStore = (*HistoryStore)(nil)

// HistoryStore is an in-memory implementation of driven.HistoryStore.
// It backs --no-history runs and tests.
type HistoryStore struct {
	mu      sync.RWMutex
	records []domain.QueryRecord
}

// NewHistoryStore creates a new in-memory history store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{}
}

// Save appends a record, assigning an ID when it has none.
func (s *HistoryStore) Save(_ context.Context, rec *domain.QueryRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	stored := *rec
	stored.SourceIDs = append([]string(nil), rec.SourceIDs...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, stored)
	return nil
}

// List returns records newest first. A non-positive limit returns all.
func (s *HistoryStore) List(_ context.Context, limit int) ([]domain.QueryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.records)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.QueryRecord, 0, n)
	for i := len(s.records) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

// Clear removes all records and returns how many there were.
func (s *HistoryStore) Clear(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.records)
	s.records = nil
	return n, nil
}

// Close is a no-op.
func (s *HistoryStore) Close() error {
	return nil
}
