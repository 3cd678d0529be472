package extractors

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/docctx/internal/core/domain"
	"github.com/custodia-labs/docctx/internal/core/ports/driven"
	"github.com/custodia-labs/docctx/internal/extractors/csv"
	"github.com/custodia-labs/docctx/internal/extractors/docx"
	"github.com/custodia-labs/docctx/internal/extractors/html"
	"github.com/custodia-labs/docctx/internal/extractors/markdown"
	"github.com/custodia-labs/docctx/internal/extractors/pdf"
	"github.com/custodia-labs/docctx/internal/extractors/plaintext"
	"github.com/custodia-labs/docctx/internal/logger"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// DefaultTimeout bounds a single extraction.
const DefaultTimeout = 30 * time.Second

// DefaultMaxChars is the largest extracted text kept before truncation.
const DefaultMaxChars = 2_000_000

// Registry dispatches extraction by file extension and bounds each
// extraction in time and output size.
type Registry struct {
	mu       sync.RWMutex
	byExt    map[string]driven.Extractor
	timeout  time.Duration
	maxChars int
}

// Option configures the registry.
type Option func(*Registry)

// WithTimeout sets the wall-clock bound for a single extraction.
func WithTimeout(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithMaxChars sets the maximum number of characters kept from an extraction.
// Zero or negative disables truncation.
func WithMaxChars(n int) Option {
	return func(r *Registry) {
		r.maxChars = n
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		byExt:    make(map[string]driven.Extractor),
		timeout:  DefaultTimeout,
		maxChars: DefaultMaxChars,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewDefaultRegistry creates a registry with every built-in extractor.
func NewDefaultRegistry(opts ...Option) *Registry {
	r := NewRegistry(opts...)
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(html.New())
	r.Register(csv.New())
	r.Register(docx.New())
	r.Register(pdf.New())
	return r
}

// FromSettings creates the default registry bounded by ingestion settings.
func FromSettings(s domain.IngestSettings) *Registry {
	return NewDefaultRegistry(WithTimeout(s.ExtractTimeout), WithMaxChars(s.MaxTextChars))
}

// Register adds an extractor for all of its extensions.
func (r *Registry) Register(extractor driven.Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range extractor.Extensions() {
		r.byExt[normaliseExt(ext)] = extractor
	}
}

// Supports reports whether an extractor is registered for ext.
func (r *Registry) Supports(ext string) bool {
	_, ok := r.lookup(ext)
	return ok
}

// Extensions returns all supported extensions, sorted.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Extract converts the file at path with the extractor registered for ext.
// An extraction that overruns the timeout is abandoned and reported as
// domain.ErrExtractionTimeout; its goroutine finishes in the background.
func (r *Registry) Extract(ctx context.Context, path, ext string) (string, error) {
	extractor, ok := r.lookup(ext)
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupported, ext)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)

	start := time.Now()
	go func() {
		text, err := extractor.Extract(ctx, path)
		done <- result{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			logger.Warn("extractor %s abandoned %s after %s", extractor.Name(), path, r.timeout)
			return "", fmt.Errorf("%w: %s after %s", domain.ErrExtractionTimeout, path, r.timeout)
		}
		return "", ctx.Err()
	case res := <-done:
		if res.err != nil {
			if errors.Is(res.err, context.DeadlineExceeded) {
				return "", fmt.Errorf("%w: %s after %s", domain.ErrExtractionTimeout, path, r.timeout)
			}
			if errors.Is(res.err, domain.ErrExtractionFailed) {
				return "", res.err
			}
			return "", fmt.Errorf("%w: %s: %v", domain.ErrExtractionFailed, extractor.Name(), res.err)
		}
		logger.Debug("extractor %s read %s in %s", extractor.Name(), path, time.Since(start))
		return truncate(res.text, r.maxChars), nil
	}
}

func (r *Registry) lookup(ext string) (driven.Extractor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byExt[normaliseExt(ext)]
	return e, ok
}

// normaliseExt lower-cases ext and ensures a leading dot.
func normaliseExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// truncate keeps at most maxChars characters of text.
func truncate(text string, maxChars int) string {
	if maxChars <= 0 || len(text) <= maxChars {
		return text
	}
	if utf8.RuneCountInString(text) <= maxChars {
		return text
	}
	count := 0
	for i := range text {
		if count == maxChars {
			logger.Debug("extracted text truncated to %d characters", maxChars)
			return text[:i]
		}
		count++
	}
	return text
}
