// Package ai provides factory functions for creating embedder and LLM adapters
// from settings.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/docqa/internal/adapters/driven/embedding"
	fastembedder "github.com/custodia-labs/docqa/internal/adapters/driven/embedding/fastembed"
	"github.com/custodia-labs/docqa/internal/adapters/driven/embedding/hashing"
	ollamaembed "github.com/custodia-labs/docqa/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/docqa/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/docqa/internal/adapters/driven/llm"
	geminillm "github.com/custodia-labs/docqa/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/custodia-labs/docqa/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/docqa/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// defaultCacheSize is used when caching is enabled by a TTL but no size is set.
const defaultCacheSize = 1024

// CreateAndValidateEmbedder creates an embedder and validates connectivity.
func CreateAndValidateEmbedder(ctx context.Context, settings *domain.EmbeddingSettings) (driven.Embedder, error) {
	e, err := CreateEmbedder(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'docqa settings' to check the configuration",
			domain.ErrEmbeddingUnavailable, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := e.Ping(pingCtx); err != nil {
		e.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
	}
	return e, nil
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
// Returns nil without error when no LLM is configured.
func CreateAndValidateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'docqa settings' to check the configuration",
			domain.ErrLLMUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(pingCtx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrLLMUnavailable, err)
	}
	return svc, nil
}

// ValidateEmbeddingConfig creates an embedder from settings and pings it.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}
	e, err := CreateEmbedder(settings)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return e.Ping(ctx)
}

// ValidateLLMConfig creates an LLM service from settings and pings it.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	svc, err := CreateLLMService(ctx, settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()
	return svc.Ping(ctx)
}

// CreateEmbedder builds the embedder described by settings, wrapped in the
// embedding cache when one is configured. The embedder is required, so an
// unconfigured provider is an error.
func CreateEmbedder(settings *domain.EmbeddingSettings) (driven.Embedder, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: embedding provider not configured", domain.ErrInvalidInput)
	}

	var (
		e   driven.Embedder
		err error
	)
	switch settings.Provider {
	case domain.AIProviderHashing:
		e, err = hashing.New(EmbeddingDimensions(settings))

	case domain.AIProviderFastEmbed:
		e, err = fastembedder.New(settings.Model, "")

	case domain.AIProviderOllama:
		e = ollamaembed.New(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: EmbeddingDimensions(settings),
		})

	case domain.AIProviderOpenAI:
		e, err = openaiembed.New(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
			MaxRetries: -1,
		})

	default:
		return nil, fmt.Errorf("%w: %s does not support embeddings", domain.ErrInvalidInput, settings.Provider)
	}
	if err != nil {
		return nil, err
	}

	size := settings.CacheSize
	if size == 0 && settings.CacheTTL > 0 {
		size = defaultCacheSize
	}
	return embedding.WithCache(e, size, settings.CacheTTL), nil
}

// EmbeddingDimensions resolves the vector size an embedder will produce.
// The vector index must be opened with the same value.
func EmbeddingDimensions(settings *domain.EmbeddingSettings) int {
	switch settings.Provider {
	case domain.AIProviderFastEmbed:
		return fastembedder.Dimensions
	case domain.AIProviderHashing:
		if settings.Dimensions > 0 {
			return settings.Dimensions
		}
		return domain.DefaultEmbeddingDimensions
	}
	if settings.Dimensions > 0 {
		return settings.Dimensions
	}
	if d := domain.EmbeddingDimensions()[settings.Model]; d > 0 {
		return d
	}
	return domain.DefaultEmbeddingDimensions
}

// CreateLLMService builds the LLM service described by settings, rate
// limited when configured. Returns nil if no LLM is configured.
func CreateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	var (
		svc driven.LLMService
		err error
	)
	switch settings.Provider {
	case domain.AIProviderOllama:
		svc = ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderOpenAI:
		svc, err = openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			MaxRetries: -1,
		})

	case domain.AIProviderGroq:
		cfg := openaillm.GroqConfig(settings.APIKey, settings.Model)
		if settings.BaseURL != "" {
			cfg.BaseURL = settings.BaseURL
		}
		svc, err = openaillm.NewLLMService(cfg)

	case domain.AIProviderGemini:
		svc, err = geminillm.NewLLMService(ctx, geminillm.Config{
			APIKey:  settings.APIKey,
			Model:   settings.Model,
			BaseURL: settings.BaseURL,
		})

	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider: %s", domain.ErrInvalidInput, settings.Provider)
	}
	if err != nil {
		return nil, err
	}
	return llm.WithRateLimit(svc, settings.RequestsPerSecond, 1), nil
}
