package driving

import (
	"context"

	"github.com/custodia-labs/docctx/internal/core/domain"
)

// DocumentService manages the document corpus.
type DocumentService interface {
	// Ingest extracts, chunks and stores the file at path.
	// Returns the content-derived document ID.
	Ingest(ctx context.Context, path string) (string, error)

	// IngestMany ingests paths concurrently. Outcomes are returned in input order.
	IngestMany(ctx context.Context, paths []string) []domain.IngestOutcome

	// Remove deletes a document and its chunks.
	// Returns false, nil if the ID is unknown.
	Remove(ctx context.Context, id string) (bool, error)

	// RemoveMany removes each ID independently.
	RemoveMany(ctx context.Context, ids []string) map[string]domain.RemoveOutcome

	// ClearAll removes every document and sidecar. Returns the number of
	// documents that were known before clearing.
	ClearAll(ctx context.Context) (int, error)

	// CleanupOrphans deletes sidecars with no metadata entry and returns their IDs.
	CleanupOrphans(ctx context.Context) ([]string, error)

	// Stats reports document, chunk and storage totals.
	Stats(ctx context.Context) (*domain.StorageStats, error)

	// List returns all documents in insertion order.
	List(ctx context.Context) ([]domain.Document, error)

	// Info returns a document with its storage footprint.
	Info(ctx context.Context, id string) (*domain.DocumentInfo, error)

	// SupportedFormats returns the file extensions that can be ingested.
	SupportedFormats() []string
}
