package domain

import "errors"

// Domain errors represent business logic failures.
// Callers branch on them with errors.Is; adapters wrap them with context.
var (
	// ErrNotFound indicates a file path or document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupported indicates no extractor is registered for a file extension.
	ErrUnsupported = errors.New("unsupported format")

	// ErrTooLarge indicates a file exceeds the configured size ceiling.
	ErrTooLarge = errors.New("file too large")

	// ErrEmptyContent indicates extraction yielded no usable text.
	ErrEmptyContent = errors.New("no usable content")

	// ErrExtractionFailed indicates an extractor could not convert a file.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrExtractionTimeout indicates an extractor exceeded its time bound.
	// The extraction is abandoned, not awaited.
	ErrExtractionTimeout = errors.New("extraction timed out")

	// ErrStorageIO indicates a read, write or serialisation failure in storage.
	ErrStorageIO = errors.New("storage I/O error")
)
