package driving

import (
	"context"

	"github.com/insectopedia/insectopedia/internal/core/domain"
)

// BuildRequest parameterises an index build.
type BuildRequest struct {
	// Progress, when set, is called after each embedded batch.
	Progress func(done, total int)
}

// IndexBuilder builds the vector index and metadata from the corpus.
type IndexBuilder interface {
	// Build rebuilds the index pair from scratch.
	Build(ctx context.Context, req BuildRequest) (*domain.BuildReport, error)
}
