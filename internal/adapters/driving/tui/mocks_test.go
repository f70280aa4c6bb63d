package tui

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// MockRetrievalService implements driving.RetrievalService for testing.
type MockRetrievalService struct {
	AskFunc func(ctx context.Context, q domain.Query) (*domain.QueryResult, error)
}

func (m *MockRetrievalService) Retrieve(_ context.Context, _ string, _ int) (*domain.Retrieval, error) {
	return &domain.Retrieval{NotFound: domain.NewNotFound(domain.NotFoundNoRelevantDocuments)}, nil
}

func (m *MockRetrievalService) Ask(ctx context.Context, q domain.Query) (*domain.QueryResult, error) {
	if m.AskFunc != nil {
		return m.AskFunc(ctx, q)
	}
	return &domain.QueryResult{NotFound: domain.NewNotFound(domain.NotFoundLowConfidence)}, nil
}

// MockDocumentService implements driving.DocumentService for testing.
type MockDocumentService struct {
	Docs []domain.Document
}

func (m *MockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.Docs, nil
}

func (m *MockDocumentService) Get(_ context.Context, filename string) (*domain.Document, error) {
	for i := range m.Docs {
		if m.Docs[i].Filename == filename {
			return &m.Docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

// MockIngestService implements driving.IngestService for testing.
type MockIngestService struct {
	Requests []domain.IngestRequest
}

func (m *MockIngestService) Ingest(_ context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	m.Requests = append(m.Requests, req)
	return &domain.IngestResult{DocumentID: "id", Filename: req.Filename, Position: len(m.Requests) - 1}, nil
}
