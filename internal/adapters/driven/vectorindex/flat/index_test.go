package flat

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func unit(vals ...float32) []float32 {
	var sum float64
	for _, v := range vals {
		sum += float64(v) * float64(v)
	}
	n := float32(math.Sqrt(sum))
	out := make([]float32, len(vals))
	for i, v := range vals {
		out[i] = v / n
	}
	return out
}

func TestIndex_AppendAssignsPriorSize(t *testing.T) {
	x := New(3)

	for want := 0; want < 5; want++ {
		pos, err := x.Append(unit(1, float32(want), 0))
		require.NoError(t, err)
		assert.Equal(t, want, pos)
		assert.Equal(t, want+1, x.Size())
	}
}

func TestIndex_AppendDimensionMismatch(t *testing.T) {
	x := New(3)

	pos, err := x.Append([]float32{1, 0})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	assert.Equal(t, -1, pos)
	assert.Equal(t, 0, x.Size())
}

func TestIndex_SearchEmpty(t *testing.T) {
	x := New(2)

	hits, err := x.Search(unit(1, 0), 3)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIndex_SearchZeroK(t *testing.T) {
	x := New(2)
	_, _ = x.Append(unit(1, 0))

	hits, err := x.Search(unit(1, 0), 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIndex_SearchOrdersByDistance(t *testing.T) {
	x := New(2)
	_, _ = x.Append(unit(0, 1))  // 0: orthogonal
	_, _ = x.Append(unit(1, 0))  // 1: identical
	_, _ = x.Append(unit(1, 1))  // 2: 45 degrees
	_, _ = x.Append(unit(-1, 0)) // 3: opposite

	hits, err := x.Search(unit(1, 0), 4)
	require.NoError(t, err)
	require.Len(t, hits, 4)

	assert.Equal(t, []int{1, 2, 0, 3}, positions(hits))
	assert.InDelta(t, 0.0, hits[0].Distance, 1e-6)
	assert.InDelta(t, 2.0, hits[3].Distance, 1e-6)
	for i := 1; i < len(hits); i++ {
		assert.LessOrEqual(t, hits[i-1].Distance, hits[i].Distance)
	}
}

func TestIndex_SearchTieBreaksByPosition(t *testing.T) {
	x := New(2)
	for i := 0; i < 4; i++ {
		_, _ = x.Append(unit(0, 1))
	}

	hits, err := x.Search(unit(1, 0), 3)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, positions(hits))
}

func TestIndex_SearchTopKBound(t *testing.T) {
	x := New(2)
	for i := 0; i < 5; i++ {
		_, _ = x.Append(unit(float32(i+1), 1))
	}

	for _, k := range []int{1, 3, 5, 10} {
		hits, err := x.Search(unit(1, 0), k)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(hits), k)
		assert.LessOrEqual(t, len(hits), x.Size())
	}
}

func TestIndex_SearchDeterministic(t *testing.T) {
	x := New(3)
	_, _ = x.Append(unit(1, 2, 3))
	_, _ = x.Append(unit(3, 2, 1))
	_, _ = x.Append(unit(1, 1, 1))
	q := unit(2, 2, 1)

	first, err := x.Search(q, 3)
	require.NoError(t, err)
	second, err := x.Search(q, 3)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestIndex_SearchDimensionMismatch(t *testing.T) {
	x := New(3)
	_, err := x.Search([]float32{1}, 1)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestIndex_SnapshotIsolatedFromAppends(t *testing.T) {
	x := New(2)
	_, _ = x.Append(unit(1, 0))
	snap := x.snapshot()

	_, _ = x.Append(unit(0, 1))

	assert.Equal(t, 1, snap.Size())
	assert.Equal(t, 2, x.Size())
}
