package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// EnvHome relocates the data directory when set.
const EnvHome = "DOCQA_HOME"

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyEmbedDims       = "embedding.dimensions"
	keyEmbedCacheSize  = "embedding.cache_size"
	keyEmbedCacheTTL   = "embedding.cache_ttl"
	keyLLMProvider     = "llm.provider"
	keyLLMModel        = "llm.model"
	keyLLMBaseURL      = "llm.base_url"
	keyLLMAPIKey       = "llm.api_key"
	keyLLMTemperature  = "llm.temperature"
	keyLLMMaxTokens    = "llm.max_tokens"
	keyLLMTimeout      = "llm.timeout"
	keyLLMRPS          = "llm.requests_per_second"
	keyIndexDataDir    = "index.data_dir"
	keyIndexFile       = "index.file"
	keyTopK            = "retrieval.top_k"
	keyMaxDocChars     = "retrieval.max_document_chars"
	keyMaxContextChars = "retrieval.max_context_chars"
	keyMaxHistoryChars = "retrieval.max_history_chars"
	keyFallback        = "retrieval.fallback_phrases"
	keyTextProcessors  = "ingest.text_processors"
	keyServerAddr      = "server.addr"
	keyLogFormat       = "logging.format"
	keyLogVerbose      = "logging.verbose"
)

// SettingsService manages application settings.
// Values come from the config store, then from the environment, so API keys
// exported in the shell or a .env file win over the file.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		lookupEnv:   os.LookupEnv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:   s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:      s.configStore.GetString(keyEmbedModel),
			BaseURL:    s.configStore.GetString(keyEmbedBaseURL),
			APIKey:     s.configStore.GetString(keyEmbedAPIKey),
			Dimensions: s.getInt(keyEmbedDims, defaults.Embedding.Dimensions),
			CacheSize:  s.getInt(keyEmbedCacheSize, defaults.Embedding.CacheSize),
			CacheTTL:   s.getDuration(keyEmbedCacheTTL, defaults.Embedding.CacheTTL),
		},
		LLM: domain.LLMSettings{
			Provider:          s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:             s.configStore.GetString(keyLLMModel),
			BaseURL:           s.configStore.GetString(keyLLMBaseURL),
			APIKey:            s.configStore.GetString(keyLLMAPIKey),
			Temperature:       s.getFloat(keyLLMTemperature, defaults.LLM.Temperature),
			MaxTokens:         s.getInt(keyLLMMaxTokens, defaults.LLM.MaxTokens),
			Timeout:           s.getDuration(keyLLMTimeout, defaults.LLM.Timeout),
			RequestsPerSecond: s.configStore.GetFloat(keyLLMRPS),
		},
		Storage: domain.StorageSettings{
			DataDir:   s.configStore.GetString(keyIndexDataDir),
			IndexFile: s.getString(keyIndexFile, defaults.Storage.IndexFile),
		},
		Retrieval: domain.RetrievalSettings{
			TopK:             s.getInt(keyTopK, defaults.Retrieval.TopK),
			MaxDocumentChars: s.getInt(keyMaxDocChars, defaults.Retrieval.MaxDocumentChars),
			MaxContextChars:  s.getInt(keyMaxContextChars, defaults.Retrieval.MaxContextChars),
			MaxHistoryChars:  s.getInt(keyMaxHistoryChars, defaults.Retrieval.MaxHistoryChars),
			FallbackPhrases:  s.configStore.GetStringSlice(keyFallback),
		},
		Ingest: domain.IngestSettings{
			TextProcessors: s.getStrings(keyTextProcessors, defaults.Ingest.TextProcessors),
		},
		Server: domain.ServerSettings{
			Addr: s.getString(keyServerAddr, defaults.Server.Addr),
		},
		Logging: domain.LoggingSettings{
			Format:  s.getString(keyLogFormat, defaults.Logging.Format),
			Verbose: s.configStore.GetBool(keyLogVerbose),
		},
	}

	if settings.Embedding.Model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[settings.Embedding.Provider]
	}
	if settings.LLM.Model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[settings.LLM.Provider]
	}

	s.applyEnv(settings)
	return settings, nil
}

// applyEnv overlays provider API keys and DOCQA_HOME from the environment.
func (s *SettingsService) applyEnv(settings *domain.AppSettings) {
	if env := settings.Embedding.Provider.APIKeyEnv(); env != "" {
		if v, ok := s.lookupEnv(env); ok && v != "" {
			settings.Embedding.APIKey = v
		}
	}
	if env := settings.LLM.Provider.APIKeyEnv(); env != "" {
		if v, ok := s.lookupEnv(env); ok && v != "" {
			settings.LLM.APIKey = v
		}
	}

	if home, _ := s.lookupEnv(EnvHome); home != "" || settings.Storage.DataDir == "" {
		settings.Storage.DataDir = s.defaultDataDir()
	}
}

// defaultDataDir is $DOCQA_HOME/data, or data/ beside the config file.
func (s *SettingsService) defaultDataDir() string {
	if home, ok := s.lookupEnv(EnvHome); ok && home != "" {
		return filepath.Join(home, "data")
	}
	return filepath.Join(filepath.Dir(s.configStore.Path()), "data")
}

func (s *SettingsService) keyFromEnv(provider domain.AIProvider, key string) bool {
	env := provider.APIKeyEnv()
	if env == "" {
		return false
	}
	v, _ := s.lookupEnv(env)
	return v == key
}

type configValue struct {
	key   string
	value any
}

// Save persists application settings.
// API keys supplied by the environment are not written to the config file.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []configValue{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedDims, settings.Embedding.Dimensions},
		{keyEmbedCacheSize, settings.Embedding.CacheSize},
		{keyEmbedCacheTTL, settings.Embedding.CacheTTL.String()},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMTemperature, settings.LLM.Temperature},
		{keyLLMMaxTokens, settings.LLM.MaxTokens},
		{keyLLMTimeout, settings.LLM.Timeout.String()},
		{keyLLMRPS, settings.LLM.RequestsPerSecond},
		{keyIndexFile, settings.Storage.IndexFile},
		{keyTopK, settings.Retrieval.TopK},
		{keyMaxDocChars, settings.Retrieval.MaxDocumentChars},
		{keyMaxContextChars, settings.Retrieval.MaxContextChars},
		{keyMaxHistoryChars, settings.Retrieval.MaxHistoryChars},
		{keyTextProcessors, settings.Ingest.TextProcessors},
		{keyServerAddr, settings.Server.Addr},
		{keyLogFormat, settings.Logging.Format},
		{keyLogVerbose, settings.Logging.Verbose},
	}
	if settings.Storage.DataDir != "" && settings.Storage.DataDir != s.defaultDataDir() {
		values = append(values, configValue{keyIndexDataDir, settings.Storage.DataDir})
	}
	if len(settings.Retrieval.FallbackPhrases) > 0 {
		values = append(values, configValue{keyFallback, settings.Retrieval.FallbackPhrases})
	}
	if settings.Embedding.APIKey != "" && !s.keyFromEnv(settings.Embedding.Provider, settings.Embedding.APIKey) {
		values = append(values, configValue{keyEmbedAPIKey, settings.Embedding.APIKey})
	}
	if settings.LLM.APIKey != "" && !s.keyFromEnv(settings.LLM.Provider, settings.LLM.APIKey) {
		values = append(values, configValue{keyLLMAPIKey, settings.LLM.APIKey})
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
// Changing provider or model changes vector dimensions, so an existing index
// must be rebuilt afterwards.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		if _, ok := s.lookupEnv(provider.APIKeyEnv()); !ok {
			return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
		}
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = model
	if model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}
	if provider != domain.AIProviderOllama {
		settings.Embedding.BaseURL = ""
	}
	settings.Embedding.APIKey = apiKey

	if d, ok := domain.EmbeddingDimensions()[settings.Embedding.Model]; ok {
		settings.Embedding.Dimensions = d
	}

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !slices.Contains(domain.AllLLMProviders(), provider) {
		return fmt.Errorf("%w: provider %s does not generate answers", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		if _, ok := s.lookupEnv(provider.APIKeyEnv()); !ok {
			return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
		}
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = model
	if model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}
	if provider != domain.AIProviderOllama {
		settings.LLM.BaseURL = ""
	}
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks that the current settings can run the application.
// A missing LLM is allowed: ingestion and retrieval still work.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	var errs []error
	if !settings.Embedding.IsConfigured() {
		errs = append(errs, fmt.Errorf("embedding provider %q is not configured", settings.Embedding.Provider))
	}
	if settings.Embedding.Dimensions <= 0 {
		errs = append(errs, fmt.Errorf("embedding.dimensions must be positive, got %d", settings.Embedding.Dimensions))
	}
	if settings.Retrieval.TopK <= 0 {
		errs = append(errs, fmt.Errorf("retrieval.top_k must be positive, got %d", settings.Retrieval.TopK))
	}
	if settings.Retrieval.MaxDocumentChars <= 0 || settings.Retrieval.MaxContextChars <= 0 {
		errs = append(errs, errors.New("retrieval character limits must be positive"))
	}
	if settings.LLM.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("llm.timeout must be positive, got %s", settings.LLM.Timeout))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, errors.Join(errs...))
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

// getStrings treats a present but empty list as deliberate.
func (s *SettingsService) getStrings(key string, defaultVal []string) []string {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	if val := s.configStore.GetStringSlice(key); val != nil {
		return val
	}
	return []string{}
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetDuration(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
