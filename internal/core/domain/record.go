package domain

import "strings"

// SourceRecord is one row of the species corpus.
// Records are transient: they exist only while an index is being built.
// Any column absent from the input is the empty string.
type SourceRecord struct {
	// ID is the opaque species identifier.
	ID string

	// Name is the common name of the species.
	Name string

	// Taxonomy is the free-form classification string.
	Taxonomy string

	// Description is the main descriptive text.
	Description string

	// Habitat describes where the species lives.
	Habitat string
}

// DescriptiveText joins the descriptive fields with a single space.
// The result is not normalised; the chunker does that.
func (r SourceRecord) DescriptiveText() string {
	return strings.Join([]string{r.Description, r.Habitat}, " ")
}
