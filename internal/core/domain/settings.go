package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderHashing is the built-in deterministic feature-hashing embedder.
	AIProviderHashing AIProvider = "hashing"

	// AIProviderFastEmbed is a local ONNX embedding model (requires cgo).
	AIProviderFastEmbed AIProvider = "fastembed"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderGroq is the Groq OpenAI-compatible API.
	AIProviderGroq AIProvider = "groq"

	// AIProviderGemini is the Google Gemini API.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderHashing, AIProviderFastEmbed, AIProviderOllama,
		AIProviderOpenAI, AIProviderGroq, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderGroq || p == AIProviderGemini
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderHashing || p == AIProviderFastEmbed
}

// APIKeyEnv returns the environment variable consulted for the provider's API key.
func (p AIProvider) APIKeyEnv() string {
	switch p {
	case AIProviderOpenAI:
		return "OPENAI_API_KEY"
	case AIProviderGroq:
		return "GROQ_API_KEY"
	case AIProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderHashing:
		return "Hashing (built-in, deterministic)"
	case AIProviderFastEmbed:
		return "FastEmbed (local ONNX)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderGroq:
		return "Groq (cloud)"
	case AIProviderGemini:
		return "Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama and OpenAI-compatible servers).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions is the embedding vector size.
	Dimensions int

	// CacheSize is the number of embeddings kept in the LRU cache. Zero disables it.
	CacheSize int

	// CacheTTL is how long cached embeddings live.
	CacheTTL time.Duration
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama and OpenAI-compatible servers).
	BaseURL string

	// APIKey is the API key.
	APIKey string

	// Temperature controls randomness of answers.
	Temperature float64

	// MaxTokens caps the answer length.
	MaxTokens int

	// Timeout bounds a single generation call.
	Timeout time.Duration

	// RequestsPerSecond rate-limits generation calls. Zero means unlimited.
	RequestsPerSecond float64
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() || l.Provider == AIProviderHashing || l.Provider == AIProviderFastEmbed {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// StorageSettings holds on-disk locations.
type StorageSettings struct {
	// DataDir holds the metadata database and the vector index.
	DataDir string

	// IndexFile is the vector index filename inside DataDir.
	IndexFile string
}

// RetrievalSettings bounds what retrieval hands to the generator.
type RetrievalSettings struct {
	// TopK is the default number of nearest documents.
	TopK int

	// MaxDocumentChars truncates each document's content.
	MaxDocumentChars int

	// MaxContextChars caps the assembled context.
	MaxContextChars int

	// MaxHistoryChars caps prior conversation passed to the generator.
	MaxHistoryChars int

	// FallbackPhrases mark a generated answer as low confidence.
	// Empty means the built-in list.
	FallbackPhrases []string
}

// IngestSettings configures how extracted text is prepared.
type IngestSettings struct {
	// TextProcessors names the stages run over extracted text, in order.
	// An empty list stores the extractor output unchanged.
	TextProcessors []string
}

// ServerSettings holds HTTP server configuration.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string
}

// LoggingSettings holds logger configuration.
type LoggingSettings struct {
	// Format is "console" or "json".
	Format string

	// Verbose enables debug output.
	Verbose bool
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Storage   StorageSettings
	Retrieval RetrievalSettings
	Ingest    IngestSettings
	Server    ServerSettings
	Logging   LoggingSettings
}

// Defaults for AppSettings.
const (
	DefaultEmbeddingDimensions = 384
	DefaultMaxDocumentChars    = 2000
	DefaultMaxContextChars     = 8000
	DefaultMaxHistoryChars     = 2000
	DefaultTemperature         = 0.3
	DefaultMaxTokens           = 1000
	DefaultGenerationTimeout   = 60 * time.Second
	DefaultIndexFile           = "vectors.idx"
	DefaultServerAddr          = ":8000"
)

// DefaultAppSettings returns settings with sensible defaults.
// Embeddings default to the built-in hashing provider so ingestion works offline.
// The LLM defaults to Groq and stays unconfigured until an API key is present.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider:   AIProviderHashing,
			Dimensions: DefaultEmbeddingDimensions,
			CacheTTL:   time.Hour,
		},
		LLM: LLMSettings{
			Provider:    AIProviderGroq,
			Temperature: DefaultTemperature,
			MaxTokens:   DefaultMaxTokens,
			Timeout:     DefaultGenerationTimeout,
		},
		Storage: StorageSettings{
			IndexFile: DefaultIndexFile,
		},
		Retrieval: RetrievalSettings{
			TopK:             DefaultTopK,
			MaxDocumentChars: DefaultMaxDocumentChars,
			MaxContextChars:  DefaultMaxContextChars,
			MaxHistoryChars:  DefaultMaxHistoryChars,
		},
		Ingest: IngestSettings{
			TextProcessors: []string{"normalise"},
		},
		Server: ServerSettings{
			Addr: DefaultServerAddr,
		},
		Logging: LoggingSettings{
			Format: "console",
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderHashing,
		AIProviderFastEmbed,
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support answer generation.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderGroq,
		AIProviderOpenAI,
		AIProviderOllama,
		AIProviderGemini,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderHashing:   "hashing-v1",
		AIProviderFastEmbed: "fast-all-MiniLM-L6-v2",
		AIProviderOllama:    "all-minilm",
		AIProviderOpenAI:    "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGroq:   "llama-3.3-70b-versatile",
		AIProviderOpenAI: "gpt-4o-mini",
		AIProviderOllama: "llama3.2",
		AIProviderGemini: "gemini-2.0-flash",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"hashing-v1":            384,
		"fast-all-MiniLM-L6-v2": 384,
		"all-minilm":            384,
		"nomic-embed-text":      768,
		"mxbai-embed-large":     1024,
		// text-embedding-3 models are shortened to EmbeddingSettings.Dimensions when set.
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
	}
}
