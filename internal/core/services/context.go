package services

import (
	"fmt"
	"strings"

	"github.com/insectopedia/insectopedia/internal/core/domain"
)

// ContextSeparator separates passages in an assembled context.
const ContextSeparator = "\n\n---\n\n"

// AssembleContext renders results, in order, as the context block given to
// the model. Each passage is "{name} (id={chunk_id}): {text}".
func AssembleContext(results []domain.SearchResult) string {
	passages := make([]string, len(results))
	for i, r := range results {
		passages[i] = fmt.Sprintf("%s (id=%s): %s", r.Chunk.Name, r.Chunk.ID, r.Chunk.Text)
	}
	return strings.Join(passages, ContextSeparator)
}
