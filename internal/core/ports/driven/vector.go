package driven

import "context"

// VectorIndex is an append-only collection of fixed-dimension vectors with
// exact nearest-neighbour search by Euclidean distance.
//
// The persisted file is the source of truth. Implementations reload it before
// every read or mutation, and Append runs reload, append and save as a single
// critical section, so a returned position is durable and unique.
type VectorIndex interface {
	// Append adds a vector and returns its position, equal to the index size
	// immediately before the append. Fails with domain.ErrDimensionMismatch
	// when the vector has the wrong length.
	Append(ctx context.Context, vector []float32) (int, error)

	// Search returns up to k hits ordered by ascending distance.
	// Ties are broken by lower position. An empty index or k <= 0 yields no hits.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Size returns the number of vectors in the index.
	Size(ctx context.Context) (int, error)

	// Dimensions returns the fixed vector length.
	Dimensions() int

	// Close releases resources.
	Close() error
}

// VectorHit represents a nearest-neighbour search result.
type VectorHit struct {
	// Position is the matched vector's index position.
	Position int

	// Distance is the Euclidean distance to the query.
	Distance float32
}
