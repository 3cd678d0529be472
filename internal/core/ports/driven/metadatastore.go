package driven

import (
	"context"

	"github.com/custodia-labs/docctx/internal/core/domain"
)

// MetadataStore is the durable mapping of document ID to document record.
// It is the single source of truth for whether a document exists.
// Every mutating call is persisted before it returns.
type MetadataStore interface {
	// Put stores or replaces a document record. Replacing keeps the
	// record's original insertion sequence.
	Put(ctx context.Context, doc domain.Document) error

	// Get retrieves a record. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// Has reports whether a record exists for id.
	Has(ctx context.Context, id string) bool

	// Remove deletes a record. Returns false, nil for an unknown id.
	Remove(ctx context.Context, id string) (bool, error)

	// List returns all records in insertion order.
	List(ctx context.Context) ([]domain.Document, error)

	// Clear removes all records.
	Clear(ctx context.Context) error

	// StorageBytes returns the on-disk size of the index.
	StorageBytes() (int64, error)
}
