package hashing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insectopedia/insectopedia/internal/core/domain"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"what", "do", "bees", "do"}, Tokenize("What do bees do?"))
	assert.Equal(t, []string{"käfer", "2x"}, Tokenize("  Käfer--2x! "))
	assert.Empty(t, Tokenize("?! ..."))
}

func TestNewEmbeddingService(t *testing.T) {
	svc := NewEmbeddingService(0)
	assert.Equal(t, DefaultDimensions, svc.Dimensions())
	assert.Equal(t, "hashing-384", svc.ModelName())

	small := NewEmbeddingService(16)
	assert.Equal(t, "hashing-16", small.ModelName())
}

func TestEmbed_Deterministic(t *testing.T) {
	svc := NewEmbeddingService(64)

	a, err := svc.Embed(context.Background(), "Bees pollinate flowers.")
	require.NoError(t, err)
	b, err := svc.Embed(context.Background(), "bees POLLINATE flowers")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	var total float32
	for _, x := range a {
		total += x
	}
	assert.Equal(t, float32(3), total)
}

func TestEmbed_SharedWordsScoreHigher(t *testing.T) {
	svc := NewEmbeddingService(DefaultDimensions)
	ctx := context.Background()

	vecs, err := svc.EmbedBatch(ctx, []string{
		"What do bees do?",
		"Ants are social insects.",
		"Bees pollinate flowers.",
	})
	require.NoError(t, err)
	for _, v := range vecs {
		domain.Normalize(v)
	}

	ant := domain.Dot(vecs[0], vecs[1])
	bee := domain.Dot(vecs[0], vecs[2])
	assert.Greater(t, bee, ant)
}

func TestEmbed_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEmbeddingService(8).EmbedBatch(ctx, []string{"x"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPingAndClose(t *testing.T) {
	svc := NewEmbeddingService(8)
	assert.NoError(t, svc.Ping(context.Background()))
	assert.NoError(t, svc.Close())
}
