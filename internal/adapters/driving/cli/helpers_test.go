package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driven/classifier/phrase"
	"github.com/custodia-labs/docqa/internal/adapters/driven/embedding/hashing"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/adapters/driven/vectorindex/flat"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/services"
	"github.com/custodia-labs/docqa/internal/extractors"
)

// textExtractor treats payloads as UTF-8 text.
type textExtractor struct{}

func (textExtractor) Formats() []domain.Format {
	return []domain.Format{domain.FormatPDF, domain.FormatDOCX}
}

func (textExtractor) Extract(_ context.Context, content []byte) (string, error) {
	return string(content), nil
}

// stubLLM always returns answer.
type stubLLM struct {
	answer string
}

func (s *stubLLM) Generate(context.Context, string, driven.GenerateOptions) (string, error) {
	return s.answer, nil
}

func (s *stubLLM) Chat(context.Context, []driven.ChatMessage, driven.ChatOptions) (string, error) {
	return s.answer, nil
}

func (s *stubLLM) ModelName() string          { return "stub" }
func (s *stubLLM) Ping(context.Context) error { return nil }
func (s *stubLLM) Close() error               { return nil }

// testServices are real services over in-memory stores.
type testServices struct {
	llm   *stubLLM
	store *memory.DocumentStore
	index *flat.Durable
}

// setupTestServices injects services and resets command state on cleanup.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()

	embedder, err := hashing.New(64)
	require.NoError(t, err)
	index, err := flat.Open(filepath.Join(t.TempDir(), "vectors.idx"), 64)
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	ts := &testServices{
		llm:   &stubLLM{answer: "Refunds are processed within 30 days."},
		store: memory.NewDocumentStore(),
		index: index,
	}
	SetServices(&Services{
		Ingest: services.NewIngestService(extractors.NewRegistry(textExtractor{}), embedder, index, ts.store, nil),
		Retrieval: services.NewRetrievalService(embedder, index, ts.store, ts.llm, nil,
			phrase.New(nil), nil, services.DefaultRetrievalConfig()),
		Document:    services.NewDocumentService(ts.store),
		Consistency: services.NewConsistencyService(index, ts.store, nil),
		Settings:    newMockSettings(),
	})
	t.Cleanup(resetCommandState)
	return ts
}

func resetCommandState() {
	SetServices(nil)
	SetBootstrap(nil)
	ingestFormat = ""
	ingestWatch = ""
	askTopK = 0
	askContext = ""
	askJSON = false
	documentsJSON = false
	serveAddr = ""
	tuiLogFile = ""
	verbose = false
	logFormat = ""
	configDir = ""
}

// execute runs the root command with args and returns its combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := Execute(context.Background())
	return buf.String(), err
}

// mockSettings is an in-memory driving.SettingsService.
type mockSettings struct {
	settings    domain.AppSettings
	validateErr error
	embedCalls  int
	llmCalls    int
}

func newMockSettings() *mockSettings {
	return &mockSettings{settings: domain.DefaultAppSettings()}
}

func (m *mockSettings) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettings) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettings) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.embedCalls++
	m.settings.Embedding.Provider = provider
	m.settings.Embedding.Model = model
	m.settings.Embedding.APIKey = apiKey
	return nil
}

func (m *mockSettings) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.llmCalls++
	m.settings.LLM.Provider = provider
	m.settings.LLM.Model = model
	m.settings.LLM.APIKey = apiKey
	return nil
}

func (m *mockSettings) Validate() error                { return m.validateErr }
func (m *mockSettings) ValidateEmbeddingConfig() error { return nil }
func (m *mockSettings) ValidateLLMConfig() error       { return nil }
func (m *mockSettings) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}
