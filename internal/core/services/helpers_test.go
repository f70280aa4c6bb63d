package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driven/classifier/phrase"
	"github.com/custodia-labs/docqa/internal/adapters/driven/embedding/hashing"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/adapters/driven/vectorindex/flat"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/extractors"
)

const testDims = 64

// textExtractor treats payloads as UTF-8 text for both formats.
type textExtractor struct{}

func (textExtractor) Formats() []domain.Format {
	return []domain.Format{domain.FormatPDF, domain.FormatDOCX}
}

func (textExtractor) Extract(_ context.Context, content []byte) (string, error) {
	return string(content), nil
}

// recordingMetrics counts events by label.
type recordingMetrics struct {
	mu              sync.Mutex
	ingests         map[string]int
	queries         map[string]int
	generations     int
	inconsistencies map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		ingests:         make(map[string]int),
		queries:         make(map[string]int),
		inconsistencies: make(map[string]int),
	}
}

func (m *recordingMetrics) IngestCompleted(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ingests[outcome]++
}

func (m *recordingMetrics) QueryCompleted(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries[outcome]++
}

func (m *recordingMetrics) GenerationObserved(time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generations++
}

func (m *recordingMetrics) InconsistencyObserved(kind string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inconsistencies[kind] += n
}

func (m *recordingMetrics) inconsistency(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inconsistencies[kind]
}

// stubLLM returns a canned answer, optionally after a delay.
type stubLLM struct {
	mu       sync.Mutex
	answer   string
	err      error
	delay    time.Duration
	messages []driven.ChatMessage
	opts     driven.ChatOptions
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	return s.Chat(ctx, []driven.ChatMessage{{Role: driven.RoleUser, Content: prompt}}, driven.ChatOptions(opts))
}

func (s *stubLLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	s.mu.Lock()
	s.messages = messages
	s.opts = opts
	s.mu.Unlock()

	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(s.delay):
		}
	}
	return s.answer, s.err
}

func (s *stubLLM) lastUserPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages {
		if m.Role == driven.RoleUser {
			return m.Content
		}
	}
	return ""
}

func (s *stubLLM) ModelName() string          { return "stub" }
func (s *stubLLM) Ping(context.Context) error { return nil }
func (s *stubLLM) Close() error               { return nil }

// pipeline wires both services over shared real adapters.
type pipeline struct {
	index     *flat.Durable
	store     *memory.DocumentStore
	metrics   *recordingMetrics
	llm       *stubLLM
	ingest    *IngestService
	retrieval *RetrievalService
}

func newPipeline(t *testing.T) *pipeline {
	t.Helper()
	return newPipelineAt(t, filepath.Join(t.TempDir(), "vectors.idx"), memory.NewDocumentStore())
}

func newPipelineAt(t *testing.T, indexPath string, store *memory.DocumentStore) *pipeline {
	t.Helper()

	embedder, err := hashing.New(testDims)
	require.NoError(t, err)
	index, err := flat.Open(indexPath, testDims)
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	p := &pipeline{
		index:   index,
		store:   store,
		metrics: newRecordingMetrics(),
		llm:     &stubLLM{answer: "Refunds are processed within 30 days."},
	}
	p.ingest = NewIngestService(extractors.NewRegistry(textExtractor{}), embedder, index, store, p.metrics)
	p.retrieval = NewRetrievalService(embedder, index, store, p.llm, nil, phrase.New(nil), p.metrics, DefaultRetrievalConfig())
	return p
}

func (p *pipeline) mustIngest(t *testing.T, filename, text string) *domain.IngestResult {
	t.Helper()
	res, err := p.ingest.Ingest(context.Background(), domain.IngestRequest{Filename: filename, Content: []byte(text)})
	require.NoError(t, err)
	return res
}

func (p *pipeline) indexSize(t *testing.T) int {
	t.Helper()
	n, err := p.index.Size(context.Background())
	require.NoError(t, err)
	return n
}
