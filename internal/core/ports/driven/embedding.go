// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// Embedder generates vector embeddings from text.
//
// Note: This is separate from VectorIndex which stores and searches vectors.
// Embedder generates vectors; VectorIndex stores them.
//
// Implementations may include:
//   - Feature hashing (built-in, deterministic)
//   - FastEmbed (all-MiniLM-L6-v2 via ONNX)
//   - OpenAI (text-embedding-3-small)
//   - Ollama (all-minilm, nomic-embed-text)
type Embedder interface {
	// Embed generates a unit-length vector embedding for the given text.
	// Identical input yields identical output. Empty or whitespace-only
	// text fails with domain.ErrEmbedding.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 1536).
	// This must match VectorIndex configuration.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	// This is used at startup to verify connectivity before accepting uploads.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
