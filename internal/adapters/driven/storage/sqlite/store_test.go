package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "docqa-test-*")
	require.NoError(t, err)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}

	return store, cleanup
}

func intPtr(i int) *int { return &i }

func insertDoc(t *testing.T, store *Store, filename string, pos *int) *domain.Document {
	t.Helper()
	doc, err := store.DocumentStore().Insert(context.Background(), &domain.Document{
		Filename:       filename,
		Content:        "content of " + filename,
		VectorPosition: pos,
	})
	require.NoError(t, err)
	return doc
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := os.Stat(store.Path())
	assert.NoError(t, err)
	assert.Equal(t, "metadata.db", filepath.Base(store.Path()))
	assert.NoError(t, store.Ping(context.Background()))
}

func TestNewStore_MigrationsIdempotent(t *testing.T) {
	tempDir := t.TempDir()

	first, err := NewStore(tempDir)
	require.NoError(t, err)
	insertDoc(t, first, "a.pdf", intPtr(0))
	require.NoError(t, first.Close())

	second, err := NewStore(tempDir)
	require.NoError(t, err)
	defer second.Close()

	v, err := second.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	doc, err := second.DocumentStore().FindByFilename(context.Background(), "a.pdf")
	require.NoError(t, err)
	assert.Equal(t, 0, doc.Position())
}

func TestDocumentStore_InsertAndFind(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	ds := store.DocumentStore()

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	doc, err := ds.Insert(ctx, &domain.Document{
		Filename:       "policy.pdf",
		Content:        "Refunds are processed within 30 days.",
		VectorPosition: intPtr(0),
		CreatedAt:      created,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, doc.ID)

	got, err := ds.FindByFilename(ctx, "policy.pdf")
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)
	assert.Equal(t, "Refunds are processed within 30 days.", got.Content)
	require.NotNil(t, got.VectorPosition)
	assert.Equal(t, 0, *got.VectorPosition)
	assert.WithinDuration(t, created, got.CreatedAt, time.Second)
}

func TestDocumentStore_InsertKeepsProvidedID(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	doc, err := store.DocumentStore().Insert(context.Background(), &domain.Document{
		ID: "fixed-id", Filename: "a.docx", Content: "x",
	})
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", doc.ID)
	assert.False(t, doc.HasPosition())
}

func TestDocumentStore_FindByFilename_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.DocumentStore().FindByFilename(context.Background(), "missing.pdf")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_DuplicateFilename(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	insertDoc(t, store, "policy.pdf", intPtr(0))

	_, err := store.DocumentStore().Insert(context.Background(), &domain.Document{
		Filename: "policy.pdf", Content: "again", VectorPosition: intPtr(1),
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateFilename)

	positions, err := store.DocumentStore().Positions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{0}, positions)
}

func TestDocumentStore_DuplicatePosition(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	insertDoc(t, store, "a.pdf", intPtr(3))

	_, err := store.DocumentStore().Insert(context.Background(), &domain.Document{
		Filename: "b.pdf", Content: "b", VectorPosition: intPtr(3),
	})
	assert.ErrorIs(t, err, domain.ErrInconsistent)
	assert.NotErrorIs(t, err, domain.ErrDuplicateFilename)
}

func TestTranslateError_RequiresDriverConstraintCode(t *testing.T) {
	err := translateError("inserting document", errors.New("UNIQUE constraint failed: documents.filename"))

	assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
	assert.NotErrorIs(t, err, domain.ErrDuplicateFilename)
}

func TestDocumentStore_NullPositionsAreNotUnique(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	insertDoc(t, store, "a.pdf", nil)
	insertDoc(t, store, "b.pdf", nil)

	positions, err := store.DocumentStore().Positions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, positions)
}

func TestDocumentStore_FindByPositions(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	insertDoc(t, store, "a.pdf", intPtr(0))
	insertDoc(t, store, "b.docx", intPtr(1))
	insertDoc(t, store, "c.pdf", intPtr(2))

	docs, err := store.DocumentStore().FindByPositions(ctx, []int{2, 0, 9})
	require.NoError(t, err)
	require.Len(t, docs, 2)

	names := []string{docs[0].Filename, docs[1].Filename}
	assert.ElementsMatch(t, []string{"a.pdf", "c.pdf"}, names)
	for _, d := range docs {
		assert.NotEmpty(t, d.Content)
	}
}

func TestDocumentStore_FindByPositions_Empty(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	docs, err := store.DocumentStore().FindByPositions(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDocumentStore_ListNewestFirst(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	insertDoc(t, store, "first.pdf", intPtr(0))
	insertDoc(t, store, "second.pdf", intPtr(1))
	insertDoc(t, store, "third.docx", intPtr(2))

	docs, err := store.DocumentStore().List(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "third.docx", docs[0].Filename)
	assert.Equal(t, "first.pdf", docs[2].Filename)
	assert.Empty(t, docs[0].Content)
}

func TestDocumentStore_Positions(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	insertDoc(t, store, "b.pdf", intPtr(4))
	insertDoc(t, store, "a.pdf", intPtr(1))
	insertDoc(t, store, "c.pdf", nil)

	positions, err := store.DocumentStore().Positions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4}, positions)
}

func TestDocumentStore_ClosedIsUnavailable(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = store.DocumentStore().FindByFilename(context.Background(), "a.pdf")
	assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
	assert.NotErrorIs(t, err, domain.ErrNotFound)

	_, err = store.DocumentStore().List(context.Background())
	assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
}
