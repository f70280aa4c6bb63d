package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Extractor turns a document payload into plain text.
// Each extractor handles specific formats (e.g., PDF, DOCX).
type Extractor interface {
	// Formats returns the formats this extractor handles.
	Formats() []domain.Format

	// Extract returns the plain text of the payload.
	// An empty string is a valid result; callers decide whether to reject it.
	Extract(ctx context.Context, content []byte) (string, error)
}

// ExtractorRegistry selects the extractor for a format.
type ExtractorRegistry interface {
	// Register adds an extractor for each of its formats.
	Register(e Extractor)

	// Get returns the extractor for a format.
	// Returns domain.ErrUnsupportedFormat when none is registered.
	Get(format domain.Format) (Extractor, error)

	// Formats returns all formats with a registered extractor.
	Formats() []domain.Format
}
