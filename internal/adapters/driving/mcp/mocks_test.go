package mcp

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	result *domain.QueryResult
	query  domain.Query
	err    error
}

func (m *mockRetrievalService) Retrieve(_ context.Context, _ string, _ int) (*domain.Retrieval, error) {
	return nil, domain.ErrNotImplemented
}

func (m *mockRetrievalService) Ask(_ context.Context, q domain.Query) (*domain.QueryResult, error) {
	m.query = q
	return m.result, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	err       error
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}
