package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	sqlitedriver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Store is a SQLite-based metadata store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.docqa/data/metadata.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docqa", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "metadata.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: opening database: %w", domain.ErrServiceUnavailable, err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrServiceUnavailable, err)
	}
	return nil
}

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_documents.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if err := s.applyMigration(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// applyMigration runs one migration and records its version atomically.
func (s *Store) applyMigration(version int, content string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(content); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// SchemaVersion returns the highest applied migration version.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&v)
	return v, err
}

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// FindByFilename retrieves a document by filename.
func (s *documentStore) FindByFilename(ctx context.Context, filename string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, filename, content, vector_position, created_at
		FROM documents WHERE filename = ?
	`, filename)

	return scanDocument(row)
}

// Insert stores a new document. An empty ID is assigned a UUID and a zero
// CreatedAt is set to now.
func (s *documentStore) Insert(ctx context.Context, doc *domain.Document) (*domain.Document, error) {
	stored := *doc
	if stored.ID == "" {
		stored.ID = domain.NewDocumentID()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	stored.CreatedAt = stored.CreatedAt.UTC()

	var position sql.NullInt64
	if stored.VectorPosition != nil {
		position = sql.NullInt64{Int64: int64(*stored.VectorPosition), Valid: true}
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, filename, content, vector_position, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, stored.ID, stored.Filename, stored.Content, position, stored.CreatedAt)
	if err != nil {
		return nil, translateError("inserting document", err)
	}
	return &stored, nil
}

// FindByPositions retrieves the documents holding any of the given positions.
func (s *documentStore) FindByPositions(ctx context.Context, positions []int) ([]domain.Document, error) {
	if len(positions) == 0 {
		return []domain.Document{}, nil
	}

	placeholders := make([]string, len(positions))
	args := make([]any, len(positions))
	for i, p := range positions {
		placeholders[i] = "?"
		args[i] = p
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, filename, content, vector_position, created_at
		FROM documents WHERE vector_position IN (`+strings.Join(placeholders, ", ")+`)
	`, args...)
	if err != nil {
		return nil, translateError("querying documents by position", err)
	}
	defer rows.Close()

	return collectDocuments(rows)
}

// List returns all documents, newest first, without their content.
func (s *documentStore) List(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, filename, '', vector_position, created_at
		FROM documents ORDER BY rowid DESC
	`)
	if err != nil {
		return nil, translateError("listing documents", err)
	}
	defer rows.Close()

	return collectDocuments(rows)
}

// Positions returns every assigned vector position in ascending order.
func (s *documentStore) Positions(ctx context.Context) ([]int, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT vector_position FROM documents
		WHERE vector_position IS NOT NULL ORDER BY vector_position
	`)
	if err != nil {
		return nil, translateError("listing positions", err)
	}
	defer rows.Close()

	positions := []int{}
	for rows.Next() {
		var p int
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scanning position: %w", err)
		}
		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("listing positions", err)
	}
	return positions, nil
}

// ==================== Helper Functions ====================

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanDocument scans a document from a single row.
func scanDocument(row *sql.Row) (*domain.Document, error) {
	doc, err := scanInto(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, translateError("scanning document", err)
	}
	return doc, nil
}

func scanInto(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var position sql.NullInt64

	if err := row.Scan(&doc.ID, &doc.Filename, &doc.Content, &position, &doc.CreatedAt); err != nil {
		return nil, err
	}
	if position.Valid {
		p := int(position.Int64)
		doc.VectorPosition = &p
	}
	return &doc, nil
}

func collectDocuments(rows *sql.Rows) ([]domain.Document, error) {
	docs := []domain.Document{}
	for rows.Next() {
		doc, err := scanInto(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("iterating documents", err)
	}
	return docs, nil
}

// translateError maps driver errors onto domain errors.
// A duplicate filename becomes domain.ErrDuplicateFilename and a duplicate
// vector position domain.ErrInconsistent. Context errors pass through, and
// anything else means the store could not serve the request.
func translateError(op string, err error) error {
	switch {
	case isUniqueViolation(err, "vector_position"):
		return fmt.Errorf("%s: %w: %v", op, domain.ErrInconsistent, err)
	case isUniqueViolation(err, "filename"):
		return fmt.Errorf("%s: %w: %v", op, domain.ErrDuplicateFilename, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, domain.ErrServiceUnavailable, err)
	}
}

// isUniqueViolation reports whether err is a UNIQUE failure on documents.column.
func isUniqueViolation(err error, column string) bool {
	var sqlErr *sqlitedriver.Error
	if !errors.As(err, &sqlErr) {
		return false
	}
	if code := sqlErr.Code(); code != sqlite3.SQLITE_CONSTRAINT_UNIQUE && code != sqlite3.SQLITE_CONSTRAINT {
		return false
	}
	return strings.Contains(sqlErr.Error(), "documents."+column)
}
