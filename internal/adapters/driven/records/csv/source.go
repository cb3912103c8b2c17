// Package csv reads species records from a CSV corpus file.
//
// Columns are matched by header name, case-insensitively and ignoring
// surrounding whitespace: id, name, taxonomy, description, habitat.
// Unknown columns are ignored and missing ones read as "".
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/insectopedia/insectopedia/internal/core/domain"
	"github.com/insectopedia/insectopedia/internal/core/ports/driven"
	"github.com/insectopedia/insectopedia/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.RecordSource = (*Source)(nil)

// Column names recognised in the header row.
const (
	colID          = "id"
	colName        = "name"
	colTaxonomy    = "taxonomy"
	colDescription = "description"
	colHabitat     = "habitat"
)

// Source reads records from a CSV file.
type Source struct {
	path string
}

// NewSource creates a record source for the file at path.
func NewSource(path string) *Source {
	return &Source{path: path}
}

// Location returns the file path.
func (s *Source) Location() string {
	return s.path
}

// Records reads and parses the whole file.
func (s *Source) Records(ctx context.Context) ([]domain.SourceRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", domain.ErrSourceData, s.path, err)
	}
	defer f.Close()

	records, err := Parse(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}

	logger.Debug("read %d records from %s", len(records), s.path)
	return records, nil
}

// Parse reads records from r. Rows whose field count differs from the
// header are rejected with the offending line number.
func Parse(ctx context.Context, r io.Reader) ([]domain.SourceRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 0
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: file is empty, a header row is required", domain.ErrSourceData)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSourceData, err)
	}

	cols := columnIndex(header)
	for _, name := range []string{colID, colName, colTaxonomy, colDescription, colHabitat} {
		if _, ok := cols[name]; !ok {
			logger.Warn("column %q not found, values read as empty", name)
		}
	}

	var records []domain.SourceRecord
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrSourceData, err)
		}

		records = append(records, domain.SourceRecord{
			ID:          field(row, cols, colID),
			Name:        field(row, cols, colName),
			Taxonomy:    field(row, cols, colTaxonomy),
			Description: field(row, cols, colDescription),
			Habitat:     field(row, cols, colHabitat),
		})
	}

	return records, nil
}

func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		key := strings.ToLower(strings.TrimSpace(name))
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}
	return cols
}

func field(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok {
		return ""
	}
	return row[i]
}
