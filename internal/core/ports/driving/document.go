package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// DocumentService exposes the ingested corpus.
type DocumentService interface {
	// List returns all documents, newest first.
	List(ctx context.Context) ([]domain.Document, error)

	// Get retrieves a document by filename.
	Get(ctx context.Context, filename string) (*domain.Document, error)
}

// ConsistencyService audits agreement between the vector index and the document store.
type ConsistencyService interface {
	// Check compares index positions with stored documents.
	Check(ctx context.Context) (*domain.ConsistencyReport, error)
}
