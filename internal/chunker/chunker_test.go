package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/custodia-labs/docctx/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := New()
		if c.window != DefaultWindow {
			t.Errorf("expected window %d, got %d", DefaultWindow, c.window)
		}
		if c.overlap != DefaultOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultOverlap, c.overlap)
		}
		if c.maxChunks != DefaultMaxChunks {
			t.Errorf("expected maxChunks %d, got %d", DefaultMaxChunks, c.maxChunks)
		}
		if c.lookback != DefaultLookback {
			t.Errorf("expected lookback %d, got %d", DefaultLookback, c.lookback)
		}
	})

	t.Run("overlap exceeds window", func(t *testing.T) {
		c := New(WithWindow(100), WithOverlap(150))
		if c.overlap != 25 {
			t.Errorf("expected overlap clamped to 25, got %d", c.overlap)
		}
	})

	t.Run("invalid values ignored", func(t *testing.T) {
		c := New(WithWindow(0), WithOverlap(-1), WithMaxChunks(0), WithLookback(-5))
		if c.window != DefaultWindow || c.overlap != DefaultOverlap {
			t.Errorf("expected defaults, got window %d overlap %d", c.window, c.overlap)
		}
		if c.maxChunks != DefaultMaxChunks || c.lookback != DefaultLookback {
			t.Errorf("expected defaults, got maxChunks %d lookback %d", c.maxChunks, c.lookback)
		}
	})
}

func TestFromSettings(t *testing.T) {
	c := FromSettings(domain.ChunkingSettings{Window: 500, Overlap: 50, MaxChunks: 7, Lookback: 30})
	if c.window != 500 || c.overlap != 50 || c.maxChunks != 7 || c.lookback != 30 {
		t.Errorf("settings not applied: %+v", c)
	}
}

func TestChunk_EmptyContent(t *testing.T) {
	c := New()
	if chunks := c.Chunk("doc", ""); len(chunks) != 0 {
		t.Errorf("expected 0 chunks for empty content, got %d", len(chunks))
	}
	if chunks := c.Chunk("doc", "  \n\t  "); len(chunks) != 0 {
		t.Errorf("expected 0 chunks for whitespace content, got %d", len(chunks))
	}
}

func TestChunk_ShortContent(t *testing.T) {
	c := New(WithWindow(100), WithOverlap(20))
	text := "  Hello world.  "

	chunks := c.Chunk("doc-1", text)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}

	got := chunks[0]
	if got.Text != "Hello world." {
		t.Errorf("expected trimmed text, got %q", got.Text)
	}
	if got.Start != 0 || got.End != len(text) {
		t.Errorf("expected offsets [0,%d), got [%d,%d)", len(text), got.Start, got.End)
	}
	if got.Length != len("Hello world.") {
		t.Errorf("expected length %d, got %d", len("Hello world."), got.Length)
	}
	if got.DocumentID != "doc-1" || got.Position != 0 {
		t.Errorf("unexpected identity: %s/%d", got.DocumentID, got.Position)
	}
}

func TestChunk_OffsetsAreCharacters(t *testing.T) {
	c := New(WithWindow(100))
	text := "héllo wörld"

	chunks := c.Chunk("doc", text)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].End != 11 {
		t.Errorf("expected end 11 characters, got %d", chunks[0].End)
	}
	if chunks[0].Length != 11 {
		t.Errorf("expected length 11 characters, got %d", chunks[0].Length)
	}
}

func TestChunk_HardBoundaries(t *testing.T) {
	c := New(WithWindow(100), WithOverlap(20), WithLookback(10))

	chunks := c.Chunk("doc", strings.Repeat("x", 250))

	want := [][2]int{{0, 100}, {80, 180}, {160, 250}}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d", len(want), len(chunks))
	}
	for i, w := range want {
		if chunks[i].Start != w[0] || chunks[i].End != w[1] {
			t.Errorf("chunk %d: expected [%d,%d), got [%d,%d)", i, w[0], w[1], chunks[i].Start, chunks[i].End)
		}
		if chunks[i].Position != i {
			t.Errorf("expected position %d, got %d", i, chunks[i].Position)
		}
	}
}

func TestChunk_SentenceBoundary(t *testing.T) {
	c := New(WithWindow(20), WithOverlap(5), WithLookback(10))
	text := "Hello there. General Kenobi is here now"

	chunks := c.Chunk("doc", text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	if chunks[0].Text != "Hello there." {
		t.Errorf("expected cut after sentence end, got %q", chunks[0].Text)
	}
	if chunks[0].End != 12 {
		t.Errorf("expected end 12, got %d", chunks[0].End)
	}
	if chunks[1].Start != 7 {
		t.Errorf("expected second chunk to start at 7, got %d", chunks[1].Start)
	}
}

func TestChunk_MaxChunks(t *testing.T) {
	c := New(WithWindow(10), WithOverlap(0), WithMaxChunks(5))

	chunks := c.Chunk("doc", strings.Repeat("a", 1000))
	if len(chunks) != 5 {
		t.Errorf("expected chunk cap of 5, got %d", len(chunks))
	}
}

func TestChunk_ForwardProgress(t *testing.T) {
	c := New(WithWindow(10), WithOverlap(8), WithLookback(10))
	text := strings.Repeat("a.b.c.d.e.", 30)

	chunks := c.Chunk("doc", text)
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	for i := 1; i < len(chunks); i++ {
		if chunks[i].Start <= chunks[i-1].Start {
			t.Fatalf("chunk %d does not advance: %d <= %d", i, chunks[i].Start, chunks[i-1].Start)
		}
	}
	if last := chunks[len(chunks)-1]; last.End != len(text) {
		t.Errorf("expected last chunk to reach end %d, got %d", len(text), last.End)
	}
}

func TestChunk_CoverageAndOverlap(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 200; i++ {
		fmt.Fprintf(&sb, "Sentence number %d is here! Does it end? Yes.", i)
	}
	text := sb.String()
	n := len([]rune(text))

	configs := []struct{ window, overlap, lookback int }{
		{1000, 200, 100},
		{300, 50, 40},
		{64, 0, 16},
		{50, 10, 100},
	}

	for _, cfg := range configs {
		t.Run(fmt.Sprintf("w%d_o%d", cfg.window, cfg.overlap), func(t *testing.T) {
			c := New(WithWindow(cfg.window), WithOverlap(cfg.overlap), WithLookback(cfg.lookback))
			chunks := c.Chunk("doc", text)

			if len(chunks) == 0 || len(chunks) > DefaultMaxChunks {
				t.Fatalf("unexpected chunk count %d", len(chunks))
			}
			if chunks[0].Start != 0 {
				t.Errorf("expected first chunk at 0, got %d", chunks[0].Start)
			}
			if chunks[len(chunks)-1].End != n {
				t.Errorf("expected coverage to %d, got %d", n, chunks[len(chunks)-1].End)
			}
			for i, ch := range chunks {
				if ch.Start >= ch.End || ch.End > n {
					t.Fatalf("chunk %d has invalid offsets [%d,%d)", i, ch.Start, ch.End)
				}
				if ch.End-ch.Start > cfg.window {
					t.Errorf("chunk %d exceeds window: %d", i, ch.End-ch.Start)
				}
				if strings.TrimSpace(ch.Text) == "" {
					t.Errorf("chunk %d is empty", i)
				}
				if i == 0 {
					continue
				}
				prev := chunks[i-1]
				if ch.Start < prev.Start {
					t.Errorf("chunk %d offsets decrease", i)
				}
				if ch.Start > prev.End {
					t.Errorf("gap between chunk %d and %d", i-1, i)
				}
				if prev.End-ch.Start > cfg.overlap {
					t.Errorf("chunk %d overlaps by %d, more than %d", i, prev.End-ch.Start, cfg.overlap)
				}
			}
		})
	}
}

func TestChunk_Deterministic(t *testing.T) {
	c := New(WithWindow(40), WithOverlap(10))
	text := strings.Repeat("The Engineering department ships on Fridays. ", 20)

	first := c.Chunk("doc", text)
	second := c.Chunk("doc", text)

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}
