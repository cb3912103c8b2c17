package driven

import (
	"context"

	"github.com/insectopedia/insectopedia/internal/core/domain"
)

// HistoryStore persists answered questions.
type HistoryStore interface {
	// Save records a query.
	Save(ctx context.Context, record *domain.QueryRecord) error

	// List returns the most recent records, newest first.
	// A limit of zero or less returns all records.
	List(ctx context.Context, limit int) ([]domain.QueryRecord, error)

	// Clear deletes every record and returns how many were removed.
	Clear(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}
