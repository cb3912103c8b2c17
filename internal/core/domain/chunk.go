package domain

import "strconv"

// Chunk is a bounded window of a record's descriptive text.
// It carries the record fields it was derived from so that a retrieved chunk
// can be rendered without the original record.
type Chunk struct {
	// ID is "{record_id}_{sequence}", unique within one corpus.
	ID string `json:"id"`

	// SpeciesID is the ID of the record the chunk came from.
	SpeciesID string `json:"species_id"`

	// Name is the species name.
	Name string `json:"name"`

	// Taxonomy is the species taxonomy.
	Taxonomy string `json:"taxonomy"`

	// Text is the chunk's own characters.
	Text string `json:"text"`
}

// ChunkID derives the identifier of the seq-th chunk of a record.
func ChunkID(recordID string, seq int) string {
	return recordID + "_" + strconv.Itoa(seq)
}

// Metadata is the persisted, ordered chunk list.
// Position i describes the vector at position i of the index.
type Metadata struct {
	Docs []Chunk `json:"docs"`
}
