package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// DocumentStore persists document metadata and the vector position of each
// document. Documents are insert-only.
// Backed by SQLite for metadata storage.
type DocumentStore interface {
	// FindByFilename returns the document with the given filename.
	// Returns domain.ErrNotFound when absent.
	FindByFilename(ctx context.Context, filename string) (*domain.Document, error)

	// Insert stores a new document and returns it with its ID assigned.
	// Fails with domain.ErrDuplicateFilename when the filename exists.
	Insert(ctx context.Context, doc *domain.Document) (*domain.Document, error)

	// FindByPositions returns the documents holding any of the given positions.
	// The result is in no particular order; missing positions are skipped.
	FindByPositions(ctx context.Context, positions []int) ([]domain.Document, error)

	// List returns all documents, newest first. Content is omitted.
	List(ctx context.Context) ([]domain.Document, error)

	// Positions returns every assigned vector position, ascending.
	Positions(ctx context.Context) ([]int, error)
}
