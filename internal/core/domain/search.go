package domain

import (
	"fmt"
	"time"
)

// RelevanceResult is one ranked hit from a keyword query.
// It is built per query and never persisted.
type RelevanceResult struct {
	// Document is the document the chunk belongs to.
	Document Document

	// Chunk is the matching chunk.
	Chunk Chunk

	// Score is the number of distinct query tokens found in the chunk.
	Score int
}

// StorageStats summarises the document store.
type StorageStats struct {
	DocumentCount     int
	ChunkCount        int
	TotalStorageBytes int64
}

// TotalSizeMB returns the storage footprint in megabytes, rounded to two places.
func (s StorageStats) TotalSizeMB() float64 {
	mb := float64(s.TotalStorageBytes) / (1024 * 1024)
	return float64(int64(mb*100+0.5)) / 100
}

// String returns a one-line summary.
func (s StorageStats) String() string {
	return fmt.Sprintf("%d docs, %d chunks, %.2f MB", s.DocumentCount, s.ChunkCount, s.TotalSizeMB())
}

// IngestOutcome reports the result of ingesting one path in a batch.
type IngestOutcome struct {
	// JobID identifies this ingestion in logs.
	JobID string

	// Path is the file that was ingested.
	Path string

	// DocumentID is set when ingestion succeeded.
	DocumentID string

	// Err is set when ingestion failed.
	Err error

	// Duration is how long the ingestion took.
	Duration time.Duration
}

// OK reports whether the ingestion succeeded.
func (o IngestOutcome) OK() bool {
	return o.Err == nil
}

// RemoveOutcome reports the result of removing one document in a batch.
type RemoveOutcome struct {
	// Removed is true if the document existed and was removed.
	Removed bool

	// Err is set when removal failed part way.
	Err error
}
