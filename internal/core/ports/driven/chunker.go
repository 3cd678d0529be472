package driven

import "github.com/custodia-labs/docctx/internal/core/domain"

// Chunker splits extracted text into an ordered chunk sequence.
// Implementations must be deterministic and free of side effects.
type Chunker interface {
	// Chunk splits text belonging to docID. Empty or whitespace-only
	// text yields no chunks.
	Chunk(docID, text string) []domain.Chunk
}
