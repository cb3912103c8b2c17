package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/insectopedia/insectopedia/internal/core/domain"
	"github.com/insectopedia/insectopedia/internal/core/ports/driven"
)

// Ensure HistoryStore implements the interface.
var _ driven.HistoryStore = (*HistoryStore)(nil)

// HistoryStore implements driven.HistoryStore on the query_history table.
type HistoryStore struct {
	store *Store
}

// NewHistoryStore opens the database in dataDir and returns its history.
// Closing the history closes the database.
func NewHistoryStore(dataDir string) (*HistoryStore, error) {
	store, err := NewStore(dataDir)
	if err != nil {
		return nil, err
	}
	return store.HistoryStore(), nil
}

// Save inserts a record, assigning an ID and timestamp when missing.
func (h *HistoryStore) Save(ctx context.Context, rec *domain.QueryRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	sources := rec.SourceIDs
	if sources == nil {
		sources = []string{}
	}
	sourcesJSON, err := json.Marshal(sources)
	if err != nil {
		return fmt.Errorf("marshalling source ids: %w", err)
	}

	_, err = h.store.db.ExecContext(ctx, `
		INSERT INTO query_history (id, question, answer, failed, source_ids, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Question, rec.Answer, rec.Failed, string(sourcesJSON),
		rec.Latency.Milliseconds(), rec.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("saving query record: %w", err)
	}
	return nil
}

// List returns records newest first. A non-positive limit returns all.
func (h *HistoryStore) List(ctx context.Context, limit int) ([]domain.QueryRecord, error) {
	query := `
		SELECT id, question, answer, failed, source_ids, latency_ms, created_at
		FROM query_history
		ORDER BY created_at DESC, rowid DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing query history: %w", err)
	}
	defer rows.Close()

	records := []domain.QueryRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// Clear deletes all records and returns how many were removed.
func (h *HistoryStore) Clear(ctx context.Context) (int, error) {
	res, err := h.store.db.ExecContext(ctx, "DELETE FROM query_history")
	if err != nil {
		return 0, fmt.Errorf("clearing query history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Close closes the underlying database.
func (h *HistoryStore) Close() error {
	return h.store.Close()
}

func scanRecord(rows *sql.Rows) (*domain.QueryRecord, error) {
	var (
		rec         domain.QueryRecord
		sourcesJSON string
		latencyMS   int64
		createdAt   string
	)
	if err := rows.Scan(&rec.ID, &rec.Question, &rec.Answer, &rec.Failed,
		&sourcesJSON, &latencyMS, &createdAt); err != nil {
		return nil, fmt.Errorf("scanning query record: %w", err)
	}

	if err := json.Unmarshal([]byte(sourcesJSON), &rec.SourceIDs); err != nil {
		return nil, fmt.Errorf("unmarshalling source ids: %w", err)
	}
	rec.Latency = time.Duration(latencyMS) * time.Millisecond

	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
	}
	rec.CreatedAt = t
	return &rec, nil
}
