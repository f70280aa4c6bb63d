package embedding

import (
	"fmt"
	"math"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Normalize scales v to unit L2 length in place and returns it.
// A zero vector cannot be normalised and fails with domain.ErrEmbedding.
func Normalize(v []float32) ([]float32, error) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return nil, fmt.Errorf("%w: vector has no usable magnitude", domain.ErrEmbedding)
	}
	inv := 1 / math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
	return v, nil
}

// Float64s converts a provider response to float32.
func Float64s(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, x := range in {
		out[i] = float32(x)
	}
	return out
}
