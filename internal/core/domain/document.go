package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxPayloadBytes is the largest upload accepted for ingestion (5 MiB).
const MaxPayloadBytes = 5 << 20

// NewDocumentID returns a fresh random document identifier.
func NewDocumentID() string {
	return uuid.New().String()
}

// Document is one ingested file: its extracted text and the position of its
// embedding in the vector index. Documents are created once and never mutated.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Filename is the logical unique key within the corpus.
	Filename string

	// Content is the extracted plain text.
	Content string

	// VectorPosition is the index position of the document's embedding.
	// Nil until a position has been assigned.
	VectorPosition *int

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time
}

// HasPosition reports whether the document has been assigned a vector position.
func (d *Document) HasPosition() bool {
	return d.VectorPosition != nil
}

// Position returns the vector position, or -1 when unassigned.
func (d *Document) Position() int {
	if d.VectorPosition == nil {
		return -1
	}
	return *d.VectorPosition
}

// IngestRequest is an upload to be ingested.
type IngestRequest struct {
	// Filename is the uploaded file name. It must be unique in the corpus.
	Filename string

	// Content is the raw file payload.
	Content []byte

	// Format is the declared format. When empty it is inferred from Filename.
	Format Format
}

// IngestResult reports a successful ingestion.
type IngestResult struct {
	DocumentID string
	Filename   string
	Position   int
}
