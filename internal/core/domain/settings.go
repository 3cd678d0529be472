package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// MetadataBackend selects the persistence used for the metadata index.
type MetadataBackend string

// Available metadata backends.
const (
	// MetadataBackendFile stores the index as a JSON file.
	MetadataBackendFile MetadataBackend = "file"

	// MetadataBackendSQLite stores the index in a SQLite database.
	MetadataBackendSQLite MetadataBackend = "sqlite"
)

// IsValid returns true if the backend is recognised.
func (b MetadataBackend) IsValid() bool {
	switch b {
	case MetadataBackendFile, MetadataBackendSQLite:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b MetadataBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b MetadataBackend) Description() string {
	switch b {
	case MetadataBackendFile:
		return "JSON index file (metadata.json)"
	case MetadataBackendSQLite:
		return "SQLite database (metadata.db)"
	default:
		return unknownDescription
	}
}

// StorageSettings holds where and how documents are persisted.
type StorageSettings struct {
	// Dir is the storage directory holding the index and sidecars.
	Dir string

	// MetadataBackend selects the metadata index persistence.
	MetadataBackend MetadataBackend
}

// ChunkingSettings parameterises the chunker.
type ChunkingSettings struct {
	// Window is the target chunk size in characters.
	Window int

	// Overlap is the number of characters shared by consecutive chunks.
	Overlap int

	// MaxChunks caps the number of chunks per document.
	MaxChunks int

	// Lookback is how far back from the window end to search for a sentence end.
	Lookback int
}

// IngestSettings bounds the cost of a single ingestion.
type IngestSettings struct {
	// MaxFileBytes is the largest source file accepted.
	MaxFileBytes int64

	// MaxTextChars is the largest extracted text kept; longer text is truncated.
	MaxTextChars int

	// ExtractTimeout bounds a single extraction.
	ExtractTimeout time.Duration

	// Concurrency is the number of files ingested in parallel by batch operations.
	Concurrency int
}

// RetrievalSettings holds query defaults.
type RetrievalSettings struct {
	// MaxResults is the default number of chunks in a context string.
	MaxResults int
}

// WatchSettings configures the watch-folder connector.
type WatchSettings struct {
	// RatePerSecond throttles ingestion triggered by filesystem events.
	RatePerSecond float64
}

// AppSettings holds all application settings.
type AppSettings struct {
	Storage   StorageSettings
	Chunking  ChunkingSettings
	Ingest    IngestSettings
	Retrieval RetrievalSettings
	Watch     WatchSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// Storage.Dir is left empty; the caller derives it from the home directory.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Storage: StorageSettings{
			MetadataBackend: MetadataBackendFile,
		},
		Chunking: ChunkingSettings{
			Window:    1000,
			Overlap:   200,
			MaxChunks: 1000,
			Lookback:  100,
		},
		Ingest: IngestSettings{
			MaxFileBytes:   50 * 1024 * 1024,
			MaxTextChars:   2_000_000,
			ExtractTimeout: 30 * time.Second,
			Concurrency:    4,
		},
		Retrieval: RetrievalSettings{
			MaxResults: 3,
		},
		Watch: WatchSettings{
			RatePerSecond: 2,
		},
	}
}

// Validate checks that the settings are internally consistent.
func (s *AppSettings) Validate() error {
	if !s.Storage.MetadataBackend.IsValid() {
		return fmt.Errorf("%w: unknown metadata backend %q", ErrInvalidInput, s.Storage.MetadataBackend)
	}
	if s.Chunking.Window <= 0 {
		return fmt.Errorf("%w: chunking window must be positive", ErrInvalidInput)
	}
	if s.Chunking.Overlap < 0 || s.Chunking.Overlap >= s.Chunking.Window {
		return fmt.Errorf("%w: chunking overlap must be in [0, window)", ErrInvalidInput)
	}
	if s.Chunking.MaxChunks <= 0 {
		return fmt.Errorf("%w: max chunks must be positive", ErrInvalidInput)
	}
	if s.Ingest.MaxFileBytes <= 0 {
		return fmt.Errorf("%w: max file bytes must be positive", ErrInvalidInput)
	}
	if s.Ingest.ExtractTimeout <= 0 {
		return fmt.Errorf("%w: extract timeout must be positive", ErrInvalidInput)
	}
	if s.Retrieval.MaxResults <= 0 {
		return fmt.Errorf("%w: max results must be positive", ErrInvalidInput)
	}
	return nil
}
