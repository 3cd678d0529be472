package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/docctx/internal/core/domain"
	"github.com/custodia-labs/docctx/internal/core/ports/driven"
	"github.com/custodia-labs/docctx/internal/core/ports/driving"
	"github.com/custodia-labs/docctx/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// RetrievalService ranks chunks by keyword overlap with a query.
type RetrievalService struct {
	meta       driven.MetadataStore
	cache      *ChunkCache
	maxResults int
}

// NewRetrievalService creates a retrieval service. maxResults is the
// default used when a query does not ask for a specific number.
func NewRetrievalService(meta driven.MetadataStore, cache *ChunkCache, maxResults int) *RetrievalService {
	if maxResults <= 0 {
		maxResults = domain.DefaultAppSettings().Retrieval.MaxResults
	}
	return &RetrievalService{
		meta:       meta,
		cache:      cache,
		maxResults: maxResults,
	}
}

// Query renders the best matching chunks as a prompt-ready context string.
func (s *RetrievalService) Query(ctx context.Context, text string, maxResults int) (string, error) {
	results, err := s.Search(ctx, text, maxResults)
	if err != nil {
		return "", err
	}
	return RenderContext(results), nil
}

// Search scores every chunk of every document and returns the top results.
// Ties keep document insertion order, then chunk order.
func (s *RetrievalService) Search(ctx context.Context, text string, maxResults int) ([]domain.RelevanceResult, error) {
	if maxResults <= 0 {
		maxResults = s.maxResults
	}
	tokens := queryTokens(text)
	if len(tokens) == 0 {
		return nil, nil
	}

	docs, err := s.meta.List(ctx)
	if err != nil {
		return nil, err
	}

	var results []domain.RelevanceResult
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		chunks, err := s.cache.Get(ctx, doc.ID)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				logger.Warn("skipping document %s (%s): %v", doc.ID, doc.Filename, err)
			}
			continue
		}
		for _, chunk := range chunks {
			if score := scoreChunk(chunk.Text, tokens); score > 0 {
				results = append(results, domain.RelevanceResult{Document: doc, Chunk: chunk, Score: score})
			}
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	logger.Debug("query %q matched %d chunks", text, len(results))
	return results, nil
}

// RenderContext formats results as the context string returned by Query.
func RenderContext(results []domain.RelevanceResult) string {
	blocks := make([]string, 0, len(results))
	for _, r := range results {
		blocks = append(blocks, fmt.Sprintf("From document '%s':\n%s\n", r.Document.Filename, r.Chunk.Text))
	}
	return strings.Join(blocks, "\n")
}

// queryTokens returns the distinct lower-cased whitespace-separated words of text.
func queryTokens(text string) []string {
	seen := make(map[string]struct{})
	var tokens []string
	for _, field := range strings.Fields(strings.ToLower(text)) {
		if _, ok := seen[field]; ok {
			continue
		}
		seen[field] = struct{}{}
		tokens = append(tokens, field)
	}
	return tokens
}

// scoreChunk counts the tokens that occur in text, case-insensitively.
func scoreChunk(text string, tokens []string) int {
	lower := strings.ToLower(text)
	score := 0
	for _, token := range tokens {
		if strings.Contains(lower, token) {
			score++
		}
	}
	return score
}
