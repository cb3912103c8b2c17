package driven

import (
	"context"

	"github.com/insectopedia/insectopedia/internal/core/domain"
)

// RecordSource reads the species corpus.
type RecordSource interface {
	// Records returns every record in file order.
	// Any read or parse failure wraps domain.ErrSourceData.
	Records(ctx context.Context) ([]domain.SourceRecord, error)

	// Location describes where records are read from.
	Location() string
}
