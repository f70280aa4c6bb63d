package flat

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Index is an in-memory append-only vector collection.
// It is not safe for concurrent mutation; Durable provides locking.
type Index struct {
	dim  int
	data []float32
}

// New creates an empty index for vectors of the given dimension.
func New(dim int) *Index {
	return &Index{dim: dim}
}

// Dimensions returns the vector length.
func (x *Index) Dimensions() int {
	return x.dim
}

// Size returns the number of vectors.
func (x *Index) Size() int {
	if x.dim == 0 {
		return 0
	}
	return len(x.data) / x.dim
}

// Append adds a vector and returns its position.
func (x *Index) Append(vec []float32) (int, error) {
	if len(vec) != x.dim {
		return -1, fmt.Errorf("%w: got %d, index has %d", domain.ErrDimensionMismatch, len(vec), x.dim)
	}
	pos := x.Size()
	x.data = append(x.data, vec...)
	return pos, nil
}

// snapshot returns a view of the current contents. Later appends to x never
// change what the view observes, since they only write past its length.
func (x *Index) snapshot() *Index {
	return &Index{dim: x.dim, data: x.data[:len(x.data):len(x.data)]}
}

// Search returns up to k nearest vectors by Euclidean distance.
// Results are ordered by distance, then by position.
func (x *Index) Search(query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) != x.dim {
		return nil, fmt.Errorf("%w: query has %d, index has %d", domain.ErrDimensionMismatch, len(query), x.dim)
	}
	n := x.Size()
	if n == 0 || k <= 0 {
		return []driven.VectorHit{}, nil
	}

	hits := make([]driven.VectorHit, n)
	for pos := 0; pos < n; pos++ {
		hits[pos] = driven.VectorHit{
			Position: pos,
			Distance: squaredL2(query, x.data[pos*x.dim:(pos+1)*x.dim]),
		}
	}

	slices.SortFunc(hits, func(a, b driven.VectorHit) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return cmp.Compare(a.Position, b.Position)
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	for i := range hits {
		hits[i].Distance = float32(math.Sqrt(float64(hits[i].Distance)))
	}
	return hits, nil
}

func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
