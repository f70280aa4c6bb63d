package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// It enforces the same uniqueness rules as the SQLite store.
type DocumentStore struct {
	mu         sync.RWMutex
	documents  []domain.Document // insertion order
	byFilename map[string]int
	byPosition map[int]int

	// FailInsert, when set, is returned by Insert before any state changes.
	FailInsert error
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		byFilename: make(map[string]int),
		byPosition: make(map[int]int),
	}
}

// FindByFilename retrieves a document by filename.
func (s *DocumentStore) FindByFilename(_ context.Context, filename string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byFilename[filename]
	if !ok {
		return nil, domain.ErrNotFound
	}
	doc := s.documents[i]
	return &doc, nil
}

// Insert stores a new document.
func (s *DocumentStore) Insert(_ context.Context, doc *domain.Document) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailInsert != nil {
		return nil, s.FailInsert
	}
	if _, ok := s.byFilename[doc.Filename]; ok {
		return nil, fmt.Errorf("inserting document: %w", domain.ErrDuplicateFilename)
	}
	if doc.VectorPosition != nil {
		if _, ok := s.byPosition[*doc.VectorPosition]; ok {
			return nil, fmt.Errorf("inserting document: position %d taken: %w",
				*doc.VectorPosition, domain.ErrInconsistent)
		}
	}

	stored := *doc
	if stored.ID == "" {
		stored.ID = domain.NewDocumentID()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	if doc.VectorPosition != nil {
		p := *doc.VectorPosition
		stored.VectorPosition = &p
		s.byPosition[p] = len(s.documents)
	}
	s.byFilename[stored.Filename] = len(s.documents)
	s.documents = append(s.documents, stored)

	out := stored
	return &out, nil
}

// FindByPositions retrieves the documents holding any of the given positions.
func (s *DocumentStore) FindByPositions(_ context.Context, positions []int) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Document, 0, len(positions))
	seen := make(map[int]bool, len(positions))
	for _, p := range positions {
		if seen[p] {
			continue
		}
		seen[p] = true
		if i, ok := s.byPosition[p]; ok {
			result = append(result, s.documents[i])
		}
	}
	return result, nil
}

// List returns all documents, newest first, without their content.
func (s *DocumentStore) List(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Document, 0, len(s.documents))
	for i := len(s.documents) - 1; i >= 0; i-- {
		doc := s.documents[i]
		doc.Content = ""
		result = append(result, doc)
	}
	return result, nil
}

// Positions returns every assigned vector position, ascending.
func (s *DocumentStore) Positions(_ context.Context) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]int, 0, len(s.byPosition))
	for p := range s.byPosition {
		result = append(result, p)
	}
	slices.Sort(result)
	return result, nil
}

// Len returns the number of stored documents.
func (s *DocumentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}
