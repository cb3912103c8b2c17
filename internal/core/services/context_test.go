package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/insectopedia/insectopedia/internal/core/domain"
)

func TestAssembleContext(t *testing.T) {
	results := []domain.SearchResult{
		{Chunk: domain.Chunk{ID: "1_0", Name: "Ant", Text: "Ants live in colonies."}, Rank: 1},
		{Chunk: domain.Chunk{ID: "2_1", Name: "Bee", Text: "Bees make honey."}, Rank: 2},
	}

	got := AssembleContext(results)

	assert.Equal(t, "Ant (id=1_0): Ants live in colonies.\n\n---\n\nBee (id=2_1): Bees make honey.", got)
}

func TestAssembleContext_Empty(t *testing.T) {
	assert.Equal(t, "", AssembleContext(nil))
}

func TestAssembleContext_SinglePassageHasNoSeparator(t *testing.T) {
	got := AssembleContext([]domain.SearchResult{{Chunk: domain.Chunk{ID: "x_0", Name: "Moth", Text: "Nocturnal."}}})
	assert.Equal(t, "Moth (id=x_0): Nocturnal.", got)
	assert.NotContains(t, got, "---")
}
