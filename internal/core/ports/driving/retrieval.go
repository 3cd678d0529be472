package driving

import (
	"context"

	"github.com/custodia-labs/docctx/internal/core/domain"
)

// RetrievalService answers keyword queries over the corpus.
type RetrievalService interface {
	// Query returns a context string of the best matching chunks, ready
	// to be placed in a prompt. An empty string means no relevant context.
	// maxResults <= 0 uses the configured default.
	Query(ctx context.Context, text string, maxResults int) (string, error)

	// Search returns the ranked results that Query would render.
	Search(ctx context.Context, text string, maxResults int) ([]domain.RelevanceResult, error)
}
