package driven

import (
	"context"

	"github.com/insectopedia/insectopedia/internal/core/domain"
)

// IndexStore persists the index/metadata pair.
type IndexStore interface {
	// Write stores the snapshot. Readers never observe a new index file
	// next to an old metadata file, or the reverse.
	Write(ctx context.Context, snapshot *domain.IndexSnapshot) error

	// Read loads the pair. It returns domain.ErrIndexNotFound when either
	// file is missing and domain.ErrIndexCorrupt when they disagree.
	Read(ctx context.Context) (*domain.IndexSnapshot, error)

	// Locations returns the index and metadata paths, for messages.
	Locations() (indexPath, metaPath string)
}
