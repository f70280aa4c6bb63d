package driven

import "github.com/custodia-labs/docqa/internal/core/domain"

// AIConfigValidator checks provider settings by connecting to the provider.
type AIConfigValidator interface {
	// ValidateEmbedding creates the embedder described by config and pings it.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM creates the LLM service described by config and pings it.
	ValidateLLM(config *domain.LLMSettings) error
}
