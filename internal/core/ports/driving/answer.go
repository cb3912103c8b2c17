package driving

import (
	"context"

	"github.com/insectopedia/insectopedia/internal/core/domain"
)

// AnswerService answers insect questions using retrieved context.
type AnswerService interface {
	// Ask retrieves context for the question and asks the model.
	// Generation failures are reported in the Answer, not as an error;
	// an error means retrieval itself failed.
	Ask(ctx context.Context, question string) (*domain.Answer, error)
}

// HistoryService exposes previously answered questions.
type HistoryService interface {
	// List returns up to limit records, newest first.
	List(ctx context.Context, limit int) ([]domain.QueryRecord, error)

	// Clear removes all records.
	Clear(ctx context.Context) (int, error)
}
