package csv

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insectopedia/insectopedia/internal/core/domain"
)

func TestParse(t *testing.T) {
	input := "id,name,taxonomy,description,habitat\n" +
		"1,Ant,Formicidae,Ants are social insects.,Everywhere\n" +
		"2,Bee,Apidae,\"Bees pollinate, and make honey.\",Meadows\n"

	records, err := Parse(context.Background(), strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, domain.SourceRecord{
		ID: "1", Name: "Ant", Taxonomy: "Formicidae",
		Description: "Ants are social insects.", Habitat: "Everywhere",
	}, records[0])
	assert.Equal(t, "Bees pollinate, and make honey.", records[1].Description)
}

func TestParse_HeaderIsCaseInsensitiveAndReordered(t *testing.T) {
	input := "\ufeffHabitat, Name ,ID,Description,Extra\n" +
		"Ponds,Dragonfly,9,Fast fliers.,x\n"

	records, err := Parse(context.Background(), strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "9", records[0].ID)
	assert.Equal(t, "Dragonfly", records[0].Name)
	assert.Equal(t, "Ponds", records[0].Habitat)
	assert.Equal(t, "Fast fliers.", records[0].Description)
	assert.Empty(t, records[0].Taxonomy, "missing column reads as empty")
}

func TestParse_EmptyCells(t *testing.T) {
	input := "id,name,taxonomy,description,habitat\n3,Mayfly,,,\n"

	records, err := Parse(context.Background(), strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, " ", records[0].DescriptiveText())
}

func TestParse_HeaderOnly(t *testing.T) {
	records, err := Parse(context.Background(), strings.NewReader("id,name,taxonomy,description,habitat\n"))

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		contain string
	}{
		{"empty file", "", "header row is required"},
		{"wrong field count", "id,name\n1,Ant\n2,Bee,extra\n", "line 3"},
		{"bare quote", "id,name\n1,\"Ant\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(context.Background(), strings.NewReader(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrSourceData)
			if tt.contain != "" {
				assert.Contains(t, err.Error(), tt.contain)
			}
		})
	}
}

func TestSource_Records(t *testing.T) {
	path := filepath.Join(t.TempDir(), "insects.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,name\n1,Ant\n"), 0o644))

	src := NewSource(path)
	records, err := src.Records(context.Background())

	require.NoError(t, err)
	assert.Equal(t, path, src.Location())
	require.Len(t, records, 1)
	assert.Equal(t, "Ant", records[0].Name)
}

func TestSource_MissingFile(t *testing.T) {
	src := NewSource(filepath.Join(t.TempDir(), "missing.csv"))

	_, err := src.Records(context.Background())
	assert.ErrorIs(t, err, domain.ErrSourceData)
}
