// Package file persists the vector index and its chunk metadata as a pair of
// files on the local filesystem.
//
// The index file is little-endian binary:
//
//	magic    [4]byte  "INSX"
//	version  uint32   1
//	mlen     uint32   length of the manifest
//	manifest [mlen]byte JSON-encoded domain.IndexManifest
//	vectors  [count*dims]float32, row-major, in chunk order
//
// The metadata file is JSON, {"docs": [...]}, in the same order.
//
// Writes are atomic as a pair: both files are staged next to their targets,
// the index is renamed into place first and then the metadata. If the second
// rename fails the new index is removed again, so a reader never sees a new
// index with old metadata. Concurrent builds against the same paths are not
// coordinated.
package file
