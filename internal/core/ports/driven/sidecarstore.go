package driven

import (
	"context"

	"github.com/custodia-labs/docctx/internal/core/domain"
)

// SidecarStore persists one chunk sequence per document, separately
// from the metadata index.
type SidecarStore interface {
	// Write replaces the sidecar for id. The write is durable on return.
	Write(ctx context.Context, id string, chunks []domain.Chunk) error

	// Read loads the sidecar for id. An empty sidecar yields no chunks.
	// Returns domain.ErrNotFound if no sidecar exists.
	Read(ctx context.Context, id string) ([]domain.Chunk, error)

	// Delete removes the sidecar for id. Deleting a missing sidecar is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of all sidecars present in storage.
	List(ctx context.Context) ([]string, error)

	// Size returns the on-disk size of the sidecar for id.
	Size(ctx context.Context, id string) (int64, error)
}
