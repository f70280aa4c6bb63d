package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// RetrievalService answers questions from the ingested documents.
type RetrievalService interface {
	// Retrieve finds the k nearest documents and assembles their context.
	// An empty corpus, k == 0 or unmatched positions yield a Retrieval with NotFound set.
	Retrieve(ctx context.Context, question string, k int) (*domain.Retrieval, error)

	// Ask retrieves context and generates an answer. A zero Query.K uses the
	// configured retrieval depth.
	// Absence of a confident answer is reported through QueryResult.NotFound,
	// never as an error.
	Ask(ctx context.Context, q domain.Query) (*domain.QueryResult, error)
}
