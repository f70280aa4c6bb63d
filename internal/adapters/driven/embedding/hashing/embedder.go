// Package hashing provides a deterministic Embedder built on feature hashing.
//
// Words and character trigrams are hashed with xxhash into a fixed number of
// signed buckets and the result is L2-normalised. It needs no model download
// and no network, so it is the default provider and the one tests use.
package hashing

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/custodia-labs/docqa/internal/adapters/driven/embedding"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Embedder implements the interface.
var _ driven.Embedder = (*Embedder)(nil)

// ModelName is reported for every hashing embedder.
const ModelName = "hashing-v1"

const (
	wordWeight    = 1.0
	trigramWeight = 0.5
)

var tokenPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true, "in": true,
	"is": true, "it": true, "of": true, "on": true, "or": true, "that": true,
	"the": true, "this": true, "to": true, "was": true, "were": true,
	"what": true, "which": true, "with": true,
}

// Embedder hashes text into a fixed-size vector.
type Embedder struct {
	dim int
}

// New creates a hashing embedder producing vectors of dim components.
func New(dim int) (*Embedder, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: dimensions must be positive, got %d", domain.ErrInvalidInput, dim)
	}
	return &Embedder{dim: dim}, nil
}

// Embed returns the unit-length hashed vector for text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty text", domain.ErrEmbedding)
	}

	vec := make([]float32, e.dim)
	tokens := tokenPattern.FindAllString(strings.ToLower(trimmed), -1)
	added := false
	for _, tok := range tokens {
		if stopwords[tok] {
			continue
		}
		e.add(vec, "w:"+tok, wordWeight)
		for _, tri := range trigrams(tok) {
			e.add(vec, "c:"+tri, trigramWeight)
		}
		added = true
	}
	if !added {
		// Only stopwords or punctuation: hash the raw text so the vector is non-zero.
		e.add(vec, "r:"+trimmed, wordWeight)
	}
	return embedding.Normalize(vec)
}

func (e *Embedder) add(vec []float32, feature string, weight float32) {
	h := xxhash.Sum64String(feature)
	i := int(h % uint64(e.dim))
	if h>>63 == 1 {
		vec[i] -= weight
	} else {
		vec[i] += weight
	}
}

// trigrams returns the padded character trigrams of a token.
func trigrams(tok string) []string {
	runes := []rune("^" + tok + "$")
	if len(runes) < 3 {
		return nil
	}
	out := make([]string, 0, len(runes)-2)
	for i := 0; i+3 <= len(runes); i++ {
		out = append(out, string(runes[i:i+3]))
	}
	return out
}

// Dimensions returns the vector size.
func (e *Embedder) Dimensions() int { return e.dim }

// ModelName returns the model identifier.
func (e *Embedder) ModelName() string { return ModelName }

// Ping always succeeds.
func (e *Embedder) Ping(context.Context) error { return nil }

// Close is a no-op.
func (e *Embedder) Close() error { return nil }
