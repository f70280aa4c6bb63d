//go:build !cgo

// Package fastembed provides a local ONNX Embedder via fastembed-go.
// This build has no cgo, so the provider is unavailable.
package fastembed

import (
	"fmt"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// New reports that fastembed needs a cgo build.
func New(_, _ string) (driven.Embedder, error) {
	return nil, fmt.Errorf("%w: fastembed requires a cgo build", domain.ErrEmbeddingUnavailable)
}
