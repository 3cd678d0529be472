// Package domain defines the core business entities for docctx.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: The metadata record of an ingested file
//   - Chunk: A retrievable, offset-tagged span of extracted text
//   - RelevanceResult: A ranked query hit
//   - AppSettings: Chunking, ingestion and retrieval parameters
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
