package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure CachedEmbedder implements the interface.
var _ driven.Embedder = (*CachedEmbedder)(nil)

// CachedEmbedder memoises Embed results keyed by model and text hash.
// Repeated questions skip the provider round trip.
type CachedEmbedder struct {
	next  driven.Embedder
	cache *expirable.LRU[string, []float32]
}

// WithCache wraps e in an expiring LRU cache. A non-positive size or ttl
// returns e unchanged.
func WithCache(e driven.Embedder, size int, ttl time.Duration) driven.Embedder {
	if e == nil || size <= 0 || ttl <= 0 {
		return e
	}
	return &CachedEmbedder{
		next:  e,
		cache: expirable.NewLRU[string, []float32](size, nil, ttl),
	}
}

// Embed returns a cached vector when present, otherwise delegates.
// Callers always receive their own copy.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(c.next.ModelName(), text)
	if cached, ok := c.cache.Get(key); ok {
		logger.Debug("embedding cache hit for model %s", c.next.ModelName())
		return clone(cached), nil
	}
	vec, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, clone(vec))
	return vec, nil
}

// Dimensions returns the wrapped embedder's vector size.
func (c *CachedEmbedder) Dimensions() int { return c.next.Dimensions() }

// ModelName returns the wrapped embedder's model.
func (c *CachedEmbedder) ModelName() string { return c.next.ModelName() }

// Ping delegates to the wrapped embedder.
func (c *CachedEmbedder) Ping(ctx context.Context) error { return c.next.Ping(ctx) }

// Close purges the cache and closes the wrapped embedder.
func (c *CachedEmbedder) Close() error {
	c.cache.Purge()
	return c.next.Close()
}

// Len returns the number of cached vectors.
func (c *CachedEmbedder) Len() int { return c.cache.Len() }

func cacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(text))
	return "embed:" + model + ":" + hex.EncodeToString(sum[:])
}

func clone(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
