// Package domain defines the core business entities for InsectoPedia.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SourceRecord: One species row read from the corpus file
//   - Chunk: A bounded window of a record's descriptive text, the retrieval unit
//   - IndexManifest: The format contract persisted with every vector index
//   - IndexSnapshot: A loaded, read-only index plus its chunk metadata
//   - SearchResult: A retrieved chunk with its similarity score
//   - Generation: The typed outcome of a call to the generative model
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
