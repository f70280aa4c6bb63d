package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAIProvider_IsValid(t *testing.T) {
	for _, p := range append(AllEmbeddingProviders(), AllLLMProviders()...) {
		assert.True(t, p.IsValid(), p)
		assert.NotEqual(t, unknownDescription, p.Description())
	}
	assert.False(t, AIProvider("anthropic").IsValid())
	assert.Equal(t, unknownDescription, AIProvider("x").Description())
}

func TestAIProvider_RequiresAPIKey(t *testing.T) {
	assert.True(t, AIProviderGroq.RequiresAPIKey())
	assert.True(t, AIProviderOpenAI.RequiresAPIKey())
	assert.True(t, AIProviderGemini.RequiresAPIKey())
	assert.False(t, AIProviderOllama.RequiresAPIKey())
	assert.False(t, AIProviderHashing.RequiresAPIKey())

	assert.Equal(t, "GROQ_API_KEY", AIProviderGroq.APIKeyEnv())
	assert.Empty(t, AIProviderOllama.APIKeyEnv())
}

func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	assert.True(t, EmbeddingSettings{Provider: AIProviderHashing}.IsConfigured())
	assert.False(t, EmbeddingSettings{Provider: AIProviderOpenAI}.IsConfigured())
	assert.True(t, EmbeddingSettings{Provider: AIProviderOpenAI, APIKey: "k"}.IsConfigured())
	assert.False(t, EmbeddingSettings{}.IsConfigured())
}

func TestLLMSettings_IsConfigured(t *testing.T) {
	assert.False(t, LLMSettings{Provider: AIProviderGroq}.IsConfigured())
	assert.True(t, LLMSettings{Provider: AIProviderGroq, APIKey: "k"}.IsConfigured())
	assert.True(t, LLMSettings{Provider: AIProviderOllama}.IsConfigured())
	assert.False(t, LLMSettings{Provider: AIProviderHashing}.IsConfigured())
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, AIProviderHashing, s.Embedding.Provider)
	assert.Equal(t, 384, s.Embedding.Dimensions)
	assert.Equal(t, AIProviderGroq, s.LLM.Provider)
	assert.InDelta(t, 0.3, s.LLM.Temperature, 1e-9)
	assert.Equal(t, 1000, s.LLM.MaxTokens)
	assert.Equal(t, 60*time.Second, s.LLM.Timeout)
	assert.Equal(t, 3, s.Retrieval.TopK)
	assert.Equal(t, 2000, s.Retrieval.MaxDocumentChars)
	assert.Equal(t, DefaultIndexFile, s.Storage.IndexFile)
	assert.Equal(t, ":8000", s.Server.Addr)
}

func TestDefaultModels(t *testing.T) {
	embed := DefaultEmbeddingModels()
	for _, p := range AllEmbeddingProviders() {
		assert.NotEmpty(t, embed[p], p)
	}
	llm := DefaultLLMModels()
	for _, p := range AllLLMProviders() {
		assert.NotEmpty(t, llm[p], p)
	}
	assert.Equal(t, 384, EmbeddingDimensions()["hashing-v1"])
}
