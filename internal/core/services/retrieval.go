package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

const outcomeAnswered = "answered"

// thinkBlock matches reasoning sections some models emit before the answer,
// optionally wrapped in bold markers.
var thinkBlock = regexp.MustCompile(`(?s)(\*\*)?<think>.*?</think>(\*\*)?`)

// RetrievalConfig bounds retrieval and generation.
type RetrievalConfig struct {
	Retrieval domain.RetrievalSettings

	// Temperature and MaxTokens are passed to every generation call.
	Temperature float64
	MaxTokens   int

	// Timeout bounds a single generation call.
	Timeout time.Duration
}

// DefaultRetrievalConfig returns the configuration derived from default settings.
func DefaultRetrievalConfig() RetrievalConfig {
	defaults := domain.DefaultAppSettings()
	return RetrievalConfig{
		Retrieval:   defaults.Retrieval,
		Temperature: defaults.LLM.Temperature,
		MaxTokens:   defaults.LLM.MaxTokens,
		Timeout:     defaults.LLM.Timeout,
	}
}

// RetrievalService answers questions from the ingested documents.
type RetrievalService struct {
	embedder   driven.Embedder
	index      driven.VectorIndex
	store      driven.DocumentStore
	llm        driven.LLMService
	prompts    driven.PromptStore
	classifier driven.AnswerClassifier
	metrics    driven.Metrics
	cfg        RetrievalConfig
}

// NewRetrievalService creates a new retrieval service.
// llm and prompts may be nil: without an LLM only Retrieve works, and
// without a prompt store the built-in prompts are used.
func NewRetrievalService(
	embedder driven.Embedder,
	index driven.VectorIndex,
	store driven.DocumentStore,
	llm driven.LLMService,
	prompts driven.PromptStore,
	classifier driven.AnswerClassifier,
	metrics driven.Metrics,
	cfg RetrievalConfig,
) *RetrievalService {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	defaults := DefaultRetrievalConfig()
	if cfg.Retrieval.TopK <= 0 {
		cfg.Retrieval.TopK = defaults.Retrieval.TopK
	}
	if cfg.Retrieval.MaxDocumentChars <= 0 {
		cfg.Retrieval.MaxDocumentChars = defaults.Retrieval.MaxDocumentChars
	}
	if cfg.Retrieval.MaxContextChars <= 0 {
		cfg.Retrieval.MaxContextChars = defaults.Retrieval.MaxContextChars
	}
	if cfg.Retrieval.MaxHistoryChars <= 0 {
		cfg.Retrieval.MaxHistoryChars = defaults.Retrieval.MaxHistoryChars
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaults.MaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	return &RetrievalService{
		embedder:   embedder,
		index:      index,
		store:      store,
		llm:        llm,
		prompts:    prompts,
		classifier: classifier,
		metrics:    metrics,
		cfg:        cfg,
	}
}

// Retrieve finds the k nearest documents and assembles their context.
// k == 0 searches nothing and reports no relevant documents.
func (s *RetrievalService) Retrieve(ctx context.Context, question string, k int) (*domain.Retrieval, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	}
	if k < 0 {
		return nil, fmt.Errorf("%w: k must not be negative, got %d", domain.ErrInvalidInput, k)
	}

	vector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		if errors.Is(err, domain.ErrEmbedding) || errors.Is(err, domain.ErrEmbeddingUnavailable) {
			return nil, fmt.Errorf("embedding question: %w", err)
		}
		return nil, fmt.Errorf("%w: embedding question: %w", domain.ErrEmbedding, err)
	}

	// Search reloads the persisted index, so documents ingested by any
	// pipeline sharing the file are visible.
	hits, err := s.index.Search(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}
	if len(hits) == 0 {
		return &domain.Retrieval{NotFound: domain.NewNotFound(domain.NotFoundNoRelevantDocuments)}, nil
	}

	positions := make([]int, len(hits))
	for i, h := range hits {
		positions[i] = h.Position
	}
	docs, err := s.store.FindByPositions(ctx, positions)
	if err != nil {
		return nil, fmt.Errorf("loading documents: %w", err)
	}

	byPosition := make(map[int]domain.Document, len(docs))
	for _, d := range docs {
		if d.HasPosition() {
			byPosition[d.Position()] = d
		}
	}

	if missing := len(hits) - len(byPosition); missing > 0 {
		logger.Warn("%d of %d retrieved positions have no document row", missing, len(hits))
		s.metrics.InconsistencyObserved(driven.ConsistencyDanglingPosition, missing)
	}
	if len(byPosition) == 0 {
		return &domain.Retrieval{NotFound: domain.NewNotFound(domain.NotFoundNoMatchingDocuments)}, nil
	}

	return s.assemble(hits, byPosition), nil
}

// assemble orders documents by distance rank and builds the bounded context.
// A document that would overflow the context is cut short; later ones are dropped.
func (s *RetrievalService) assemble(hits []driven.VectorHit, byPosition map[int]domain.Document) *domain.Retrieval {
	limits := s.cfg.Retrieval
	var (
		matches []domain.Match
		b       strings.Builder
		budget  = limits.MaxContextChars
	)

	for _, h := range hits {
		doc, ok := byPosition[h.Position]
		if !ok {
			continue
		}
		separator := ""
		if len(matches) > 0 {
			separator = "\n\n"
		}
		content := truncateRunes(doc.Content, limits.MaxDocumentChars)
		entry := separator + doc.Filename + ":\n" + content

		n := utf8.RuneCountInString(entry)
		if n > budget {
			if len(matches) > 0 && budget <= utf8.RuneCountInString(separator+doc.Filename+":\n") {
				break
			}
			entry = truncateRunes(entry, budget)
			n = budget
		}
		b.WriteString(entry)
		budget -= n

		matches = append(matches, domain.Match{
			Filename: doc.Filename,
			Position: h.Position,
			Distance: h.Distance,
			Content:  content,
		})
		if budget == 0 {
			break
		}
	}

	return &domain.Retrieval{Matches: matches, Context: b.String()}
}

// Ask retrieves context and generates an answer.
func (s *RetrievalService) Ask(ctx context.Context, q domain.Query) (*domain.QueryResult, error) {
	if s.llm == nil {
		return nil, fmt.Errorf("%w: configure an LLM provider to answer questions", domain.ErrLLMUnavailable)
	}

	retrieval, err := s.Retrieve(ctx, q.Question, q.TopK(s.cfg.Retrieval.TopK))
	if err != nil {
		s.metrics.QueryCompleted(string(domain.Classify(err)))
		return nil, err
	}
	if retrieval.NotFound != nil {
		return s.notFound(retrieval.NotFound.Reason), nil
	}

	answer, err := s.generate(ctx, q, retrieval)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		logger.Warn("answer generation failed: %v", err)
		return s.notFound(domain.NotFoundGenerationUnavailable), nil
	}

	answer = strings.TrimSpace(thinkBlock.ReplaceAllString(answer, ""))
	if s.classifier.Classify(answer) == domain.LowConfidence {
		logger.Debug("discarding low confidence answer for %q", q.Question)
		return s.notFound(domain.NotFoundLowConfidence), nil
	}

	sources := retrieval.Filenames()
	s.metrics.QueryCompleted(outcomeAnswered)
	return &domain.QueryResult{
		Answer:        answer,
		Sources:       sources,
		PrimarySource: sources[0],
	}, nil
}

func (s *RetrievalService) generate(ctx context.Context, q domain.Query, r *domain.Retrieval) (string, error) {
	system, user := s.loadPrompts()

	conversation := ""
	if history := strings.TrimSpace(q.History); history != "" {
		conversation = "Conversation so far:\n" + tailRunes(history, s.cfg.Retrieval.MaxHistoryChars) + "\n\n"
	}

	messages := []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: system},
		{Role: driven.RoleUser, Content: fmt.Sprintf(user, r.Context, conversation, q.Question)},
	}

	genCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	answer, err := s.llm.Chat(genCtx, messages, driven.ChatOptions{
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	s.metrics.GenerationObserved(time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGenerationUnavailable, err)
	}
	return answer, nil
}

func (s *RetrievalService) loadPrompts() (system, user string) {
	system, user = domain.DefaultAnswerSystemPrompt, domain.DefaultAnswerUserPrompt
	if s.prompts == nil {
		return system, user
	}
	if p, err := s.prompts.Load(driven.PromptAnswerSystem); err == nil {
		system = p
	}
	if p, err := s.prompts.Load(driven.PromptAnswerUser); err == nil {
		if verr := domain.CheckPromptVerbs(p, domain.AnswerUserPromptVerbs); verr != nil {
			logger.Warn("ignoring answer prompt: %v", verr)
		} else {
			user = p
		}
	}
	return system, user
}

func (s *RetrievalService) notFound(reason domain.NotFoundReason) *domain.QueryResult {
	s.metrics.QueryCompleted(strings.ReplaceAll(string(reason), " ", "_"))
	return &domain.QueryResult{NotFound: domain.NewNotFound(reason)}
}

// truncateRunes returns at most n runes of s.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// tailRunes returns at most the last n runes of s.
func tailRunes(s string, n int) string {
	count := utf8.RuneCountInString(s)
	if count <= n {
		return s
	}
	skip := count - n
	i := 0
	for pos := range s {
		if i == skip {
			return s[pos:]
		}
		i++
	}
	return ""
}
