package embedding

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

type countingEmbedder struct {
	calls  int
	err    error
	closed bool
}

func (c *countingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return []float32{float32(len(text)), 1}, nil
}

func (c *countingEmbedder) Dimensions() int {
	return 2
}

func (c *countingEmbedder) ModelName() string {
	return "counting"
}

func (c *countingEmbedder) Ping(context.Context) error {
	return nil
}

func (c *countingEmbedder) Close() error {
	c.closed = true
	return nil
}

func TestWithCache_Disabled(t *testing.T) {
	inner := &countingEmbedder{}
	assert.Same(t, inner, WithCache(inner, 0, time.Minute))
	assert.Same(t, inner, WithCache(inner, 10, 0))
}

func TestCachedEmbedder_HitsCache(t *testing.T) {
	inner := &countingEmbedder{}
	e := WithCache(inner, 10, time.Minute)
	ctx := context.Background()

	a, err := e.Embed(ctx, "hello")
	require.NoError(t, err)
	b, err := e.Embed(ctx, "hello")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, 1, e.(*CachedEmbedder).Len())
}

func TestCachedEmbedder_ReturnsCopies(t *testing.T) {
	inner := &countingEmbedder{}
	e := WithCache(inner, 10, time.Minute)
	ctx := context.Background()

	a, _ := e.Embed(ctx, "hello")
	a[0] = 99

	b, _ := e.Embed(ctx, "hello")
	assert.Equal(t, float32(5), b[0])
}

func TestCachedEmbedder_ErrorsNotCached(t *testing.T) {
	inner := &countingEmbedder{err: errors.New("down")}
	e := WithCache(inner, 10, time.Minute)

	_, err := e.Embed(context.Background(), "hello")
	assert.Error(t, err)
	_, err = e.Embed(context.Background(), "hello")
	assert.Error(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedEmbedder_Delegates(t *testing.T) {
	inner := &countingEmbedder{}
	e := WithCache(inner, 10, time.Minute)

	assert.Equal(t, 2, e.Dimensions())
	assert.Equal(t, "counting", e.ModelName())
	assert.NoError(t, e.Ping(context.Background()))
	assert.NoError(t, e.Close())
	assert.True(t, inner.closed)
}

func TestCacheKey_DependsOnModel(t *testing.T) {
	assert.NotEqual(t, cacheKey("a", "text"), cacheKey("b", "text"))
	assert.Equal(t, cacheKey("a", "text"), cacheKey("a", "text"))
}

func TestNormalize(t *testing.T) {
	v, err := Normalize([]float32{3, 4})
	require.NoError(t, err)
	assert.InDelta(t, 0.6, v[0], 1e-6)
	assert.InDelta(t, 0.8, v[1], 1e-6)

	_, err = Normalize([]float32{0, 0})
	assert.ErrorIs(t, err, domain.ErrEmbedding)
}

func TestFloat64s(t *testing.T) {
	assert.Equal(t, []float32{1, 0.5}, Float64s([]float64{1, 0.5}))
}
