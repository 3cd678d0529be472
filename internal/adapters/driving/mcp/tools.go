package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docctx/internal/core/domain"
	"github.com/custodia-labs/docctx/internal/core/services"
)

// QueryInput is the input schema for the query_documents tool.
type QueryInput struct {
	Query      string `json:"query" jsonschema:"keywords to look for in the stored documents"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"maximum number of chunks to return (default from configuration)"`
}

// QueryOutput is the output schema for the query_documents tool.
type QueryOutput struct {
	Context string        `json:"context"`
	Results []QueryResult `json:"results"`
	Count   int           `json:"count"`
}

// QueryResult is one matching chunk.
type QueryResult struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	Position   int    `json:"position"`
	Score      int    `json:"score"`
	Text       string `json:"text"`
}

// ListInput is the (empty) input schema for the list_documents tool.
type ListInput struct{}

// ListOutput is the output schema for the list_documents tool.
type ListOutput struct {
	Documents []DocumentSummary `json:"documents"`
	Count     int               `json:"count"`
}

// DocumentSummary describes one stored document.
type DocumentSummary struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	Format     string `json:"format"`
	SizeBytes  int64  `json:"size"`
	Chunks     int    `json:"chunks"`
	IngestedAt string `json:"uploaded_at"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query_documents",
		Description: "Find the document passages that best match the given keywords and return them as prompt context",
	}, s.handleQuery)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List all documents available as context",
	}, s.handleList)
}

// handleQuery handles the query_documents tool invocation.
func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	results, err := s.ports.Retrieval.Search(ctx, input.Query, input.MaxResults)
	if err != nil {
		return nil, QueryOutput{}, err
	}

	output := QueryOutput{
		Context: services.RenderContext(results),
		Results: make([]QueryResult, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = QueryResult{
			DocumentID: results[i].Document.ID,
			Filename:   results[i].Document.Filename,
			Position:   results[i].Chunk.Position,
			Score:      results[i].Score,
			Text:       results[i].Chunk.Text,
		}
	}

	return nil, output, nil
}

// handleList handles the list_documents tool invocation.
func (s *Server) handleList(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListInput,
) (*mcp.CallToolResult, ListOutput, error) {
	if s.ports.Document == nil {
		return nil, ListOutput{Documents: []DocumentSummary{}}, nil
	}

	docs, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, ListOutput{}, fmt.Errorf("listing documents: %w", err)
	}

	output := ListOutput{
		Documents: summarise(docs),
		Count:     len(docs),
	}
	return nil, output, nil
}

func summarise(docs []domain.Document) []DocumentSummary {
	out := make([]DocumentSummary, len(docs))
	for i := range docs {
		out[i] = DocumentSummary{
			ID:         docs[i].ID,
			Filename:   docs[i].Filename,
			Format:     docs[i].Format,
			SizeBytes:  docs[i].SizeBytes,
			Chunks:     docs[i].ChunkCount,
			IngestedAt: docs[i].IngestedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}
	return out
}
