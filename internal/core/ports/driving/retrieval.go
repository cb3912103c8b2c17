package driving

import (
	"context"

	"github.com/insectopedia/insectopedia/internal/core/domain"
)

// RetrievalService finds the chunks most similar to a question.
type RetrievalService interface {
	// Search embeds the query and returns up to topK results, best first.
	// A topK of zero selects domain.DefaultTopK.
	Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error)

	// Manifest describes the loaded index.
	Manifest() domain.IndexManifest
}
