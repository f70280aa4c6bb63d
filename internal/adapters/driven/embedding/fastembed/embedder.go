//go:build cgo

// Package fastembed provides a local ONNX Embedder via fastembed-go.
package fastembed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	fastembed "github.com/anush008/fastembed-go"

	"github.com/custodia-labs/docqa/internal/adapters/driven/embedding"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Embedder implements the interface.
var _ driven.Embedder = (*Embedder)(nil)

var models = map[string]fastembed.EmbeddingModel{
	"fast-all-MiniLM-L6-v2":                  fastembed.AllMiniLML6V2,
	"sentence-transformers/all-MiniLM-L6-v2": fastembed.AllMiniLML6V2,
	"fast-bge-small-en-v1.5":                 fastembed.BGESmallENV15,
	"BAAI/bge-small-en-v1.5":                 fastembed.BGESmallENV15,
}

// Embedder runs a sentence-transformer model in-process.
type Embedder struct {
	mu    sync.Mutex
	model *fastembed.FlagEmbedding
	name  string
}

// New loads model, downloading it into cacheDir on first use.
// An empty cacheDir defaults to ~/.docqa/models.
func New(model, cacheDir string) (*Embedder, error) {
	if model == "" {
		model = DefaultModel
	}
	m, ok := models[model]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported fastembed model %q", domain.ErrInvalidInput, model)
	}
	if cacheDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		cacheDir = filepath.Join(home, ".docqa", "models")
	}

	showProgress := false
	flag, err := fastembed.NewFlagEmbedding(&fastembed.InitOptions{
		Model:                m,
		CacheDir:             cacheDir,
		MaxLength:            512,
		ShowDownloadProgress: &showProgress,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: initialising fastembed: %w", domain.ErrEmbeddingUnavailable, err)
	}
	return &Embedder{model: flag, name: model}, nil
}

// Embed returns the normalised sentence embedding for text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty text", domain.ErrEmbedding)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.model == nil {
		return nil, fmt.Errorf("%w: embedder closed", domain.ErrEmbeddingUnavailable)
	}
	out, err := e.model.Embed([]string{text}, 1)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("%w: expected 1 embedding, got %d", domain.ErrEmbedding, len(out))
	}
	return embedding.Normalize(out[0])
}

// Dimensions returns the model's vector size.
func (e *Embedder) Dimensions() int { return Dimensions }

// ModelName returns the configured model name.
func (e *Embedder) ModelName() string { return e.name }

// Ping succeeds once the model is loaded.
func (e *Embedder) Ping(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.model == nil {
		return fmt.Errorf("%w: embedder closed", domain.ErrEmbeddingUnavailable)
	}
	return nil
}

// Close releases the ONNX session.
func (e *Embedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.model == nil {
		return nil
	}
	err := e.model.Destroy()
	e.model = nil
	return err
}
