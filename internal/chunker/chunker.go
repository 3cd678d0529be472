// Package chunker splits extracted text into overlapping, sentence-aligned
// chunks for keyword retrieval.
package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/docctx/internal/core/domain"
	"github.com/custodia-labs/docctx/internal/core/ports/driven"
)

// Ensure Chunker implements the interface.
var _ driven.Chunker = (*Chunker)(nil)

// DefaultWindow is the default number of characters per chunk.
const DefaultWindow = 1000

// DefaultOverlap is the default number of overlapping characters.
const DefaultOverlap = 200

// DefaultMaxChunks is the default cap on chunks per document.
const DefaultMaxChunks = 1000

// DefaultLookback is how far back from the window end a sentence end is searched for.
const DefaultLookback = 100

// Chunker splits text into fixed-size windows, preferring to cut just after
// a sentence terminator near the end of each window.
// Offsets are measured in characters (runes), not bytes.
type Chunker struct {
	window    int
	overlap   int
	maxChunks int
	lookback  int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithWindow sets the chunk size in characters.
func WithWindow(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.window = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// WithMaxChunks caps the number of chunks produced per text.
func WithMaxChunks(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.maxChunks = n
		}
	}
}

// WithLookback sets the sentence boundary search distance in characters.
func WithLookback(n int) Option {
	return func(c *Chunker) {
		if n >= 0 {
			c.lookback = n
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		window:    DefaultWindow,
		overlap:   DefaultOverlap,
		maxChunks: DefaultMaxChunks,
		lookback:  DefaultLookback,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Ensure overlap doesn't reach the window size
	if c.overlap >= c.window {
		c.overlap = c.window / 4
	}

	return c
}

// FromSettings creates a chunker from application settings.
func FromSettings(s domain.ChunkingSettings) *Chunker {
	return New(
		WithWindow(s.Window),
		WithOverlap(s.Overlap),
		WithMaxChunks(s.MaxChunks),
		WithLookback(s.Lookback),
	)
}

// Chunk splits text into chunks belonging to docID.
// Whitespace-only spans are skipped; output stops at the chunk cap.
func (c *Chunker) Chunk(docID, text string) []domain.Chunk {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil
	}

	estimated := n/(c.window-c.overlap) + 1
	if estimated > c.maxChunks {
		estimated = c.maxChunks
	}
	chunks := make([]domain.Chunk, 0, estimated)

	start := 0
	for start < n && len(chunks) < c.maxChunks {
		end := start + c.window
		if end >= n {
			end = n
		} else {
			end = c.sentenceEnd(runes, start, end)
		}

		span := strings.TrimSpace(string(runes[start:end]))
		if span != "" {
			chunks = append(chunks, domain.Chunk{
				DocumentID: docID,
				Position:   len(chunks),
				Text:       span,
				Start:      start,
				End:        end,
				Length:     utf8.RuneCountInString(span),
			})
		}

		if end == n {
			break
		}
		start = end - c.overlap
	}

	return chunks
}

// sentenceEnd returns the position just after the last sentence terminator
// in the lookback range before end, or end if there is none.
// The search floor keeps end-overlap strictly after start.
func (c *Chunker) sentenceEnd(runes []rune, start, end int) int {
	floor := end - c.lookback
	if lowest := start + c.overlap; floor < lowest {
		floor = lowest
	}
	for i := end - 1; i > floor; i-- {
		if isSentenceTerminal(runes[i]) {
			return i + 1
		}
	}
	return end
}

func isSentenceTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
