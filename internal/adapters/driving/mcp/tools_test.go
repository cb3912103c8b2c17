package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insectopedia/insectopedia/internal/core/domain"
)

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns passages", func(t *testing.T) {
		retrieval := &mockRetrievalService{
			results: []domain.SearchResult{
				{
					Chunk: domain.Chunk{
						ID:        "1_0",
						SpeciesID: "1",
						Name:      "Ant",
						Taxonomy:  "Formicidae",
						Text:      "Ants live in colonies.",
					},
					Score: 0.95,
					Rank:  1,
				},
			},
		}

		server, err := NewServer(&Ports{Retrieval: retrieval})
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "ants", TopK: 5})

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		require.Len(t, output.Results, 1)
		assert.Equal(t, PassageOutput{
			ChunkID:   "1_0",
			SpeciesID: "1",
			Name:      "Ant",
			Taxonomy:  "Formicidae",
			Text:      "Ants live in colonies.",
			Score:     0.95,
			Rank:      1,
		}, output.Results[0])
		assert.Equal(t, 5, retrieval.lastTopK)
	})

	t.Run("zero top_k is passed through for the default", func(t *testing.T) {
		retrieval := &mockRetrievalService{}
		server, err := NewServer(&Ports{Retrieval: retrieval})
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "ants"})

		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
		assert.Equal(t, 0, retrieval.lastTopK)
	})

	t.Run("trims the query", func(t *testing.T) {
		retrieval := &mockRetrievalService{}
		server, err := NewServer(&Ports{Retrieval: retrieval})
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{Query: "  ants \n"})

		require.NoError(t, err)
		assert.Equal(t, "ants", retrieval.query)
	})

	t.Run("rejects a blank query", func(t *testing.T) {
		for _, query := range []string{"", "   ", "\t\n"} {
			retrieval := &mockRetrievalService{}
			server, err := NewServer(&Ports{Retrieval: retrieval})
			require.NoError(t, err)

			_, _, err = server.handleSearch(ctx, nil, SearchInput{Query: query})

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Zero(t, retrieval.calls, "blank query %q must not reach the embedder", query)
		}
	})

	t.Run("returns error on search failure", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{err: domain.ErrIndexCorrupt}})
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{Query: "ants"})
		assert.ErrorIs(t, err, domain.ErrIndexCorrupt)
	})
}

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns answer and sources", func(t *testing.T) {
		answer := &mockAnswerService{answer: &domain.Answer{
			Text: "In colonies.",
			Sources: []domain.SearchResult{
				{Chunk: domain.Chunk{ID: "1_0"}},
				{Chunk: domain.Chunk{ID: "2_0"}},
			},
		}}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Answer: answer})
		require.NoError(t, err)

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "Where do ants live?"})

		require.NoError(t, err)
		assert.Equal(t, "In colonies.", output.Answer)
		assert.False(t, output.Failed)
		assert.Equal(t, []string{"1_0", "2_0"}, output.Sources)
	})

	t.Run("generation failure is not a tool error", func(t *testing.T) {
		answer := &mockAnswerService{answer: &domain.Answer{Text: "⚠️ Gemini returned no response.", Failed: true}}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Answer: answer})
		require.NoError(t, err)

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "q"})

		require.NoError(t, err)
		assert.True(t, output.Failed)
		assert.Equal(t, "⚠️ Gemini returned no response.", output.Answer)
		assert.Empty(t, output.Sources)
	})

	t.Run("returns error on retrieval failure", func(t *testing.T) {
		answer := &mockAnswerService{err: errors.New("retrieve context: boom")}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Answer: answer})
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{Question: "q"})
		assert.EqualError(t, err, "retrieve context: boom")
	})

	t.Run("no answer service", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}})
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{Question: "q"})
		assert.ErrorIs(t, err, ErrAnswerUnavailable)
	})
}
