package mcp

import (
	"context"

	"github.com/custodia-labs/docctx/internal/core/domain"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results   []domain.RelevanceResult
	err       error
	lastQuery string
	lastMax   int
}

func (m *mockRetrievalService) Query(ctx context.Context, text string, maxResults int) (string, error) {
	_, err := m.Search(ctx, text, maxResults)
	return "", err
}

func (m *mockRetrievalService) Search(_ context.Context, text string, maxResults int) ([]domain.RelevanceResult, error) {
	m.lastQuery = text
	m.lastMax = maxResults
	return m.results, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	info      *domain.DocumentInfo
	err       error
}

func (m *mockDocumentService) Ingest(_ context.Context, _ string) (string, error) {
	return "", m.err
}

func (m *mockDocumentService) IngestMany(_ context.Context, _ []string) []domain.IngestOutcome {
	return nil
}

func (m *mockDocumentService) Remove(_ context.Context, _ string) (bool, error) {
	return false, m.err
}

func (m *mockDocumentService) RemoveMany(_ context.Context, _ []string) map[string]domain.RemoveOutcome {
	return nil
}

func (m *mockDocumentService) ClearAll(_ context.Context) (int, error) {
	return 0, m.err
}

func (m *mockDocumentService) CleanupOrphans(_ context.Context) ([]string, error) {
	return nil, m.err
}

func (m *mockDocumentService) Stats(_ context.Context) (*domain.StorageStats, error) {
	return &domain.StorageStats{}, m.err
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Info(_ context.Context, _ string) (*domain.DocumentInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.info == nil {
		return nil, domain.ErrNotFound
	}
	return m.info, nil
}

func (m *mockDocumentService) SupportedFormats() []string {
	return []string{".txt"}
}
