package driven

import "context"

// Extractor converts one family of file formats into plain text.
// Implementations must honour context cancellation where the underlying
// library allows it; the registry abandons extractions that overrun.
type Extractor interface {
	// Name returns the extractor name for logging.
	Name() string

	// Extensions returns the lower-case file extensions handled, including the dot.
	Extensions() []string

	// Extract reads the file at path and returns its text content.
	Extract(ctx context.Context, path string) (string, error)
}

// ExtractorRegistry selects the extractor for a file extension.
// It is built explicitly at startup from the extractors known to be available.
type ExtractorRegistry interface {
	// Register adds an extractor for all of its extensions.
	// A later registration for the same extension replaces the earlier one.
	Register(extractor Extractor)

	// Supports reports whether an extractor is registered for ext.
	Supports(ext string) bool

	// Extensions returns all supported extensions, sorted.
	Extensions() []string

	// Extract converts the file using the extractor registered for ext.
	// Fails with domain.ErrUnsupported, domain.ErrExtractionFailed or
	// domain.ErrExtractionTimeout.
	Extract(ctx context.Context, path, ext string) (string, error)
}
