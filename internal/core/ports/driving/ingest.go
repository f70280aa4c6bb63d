package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// IngestService turns uploaded documents into searchable vectors and metadata.
type IngestService interface {
	// Ingest extracts, embeds and stores a document.
	// Fails with domain.ErrPayloadTooLarge, domain.ErrDuplicateDocument,
	// domain.ErrUnsupportedFormat or domain.ErrExtractionEmpty for bad input.
	Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestResult, error)
}
