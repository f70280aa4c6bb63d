package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// outcomeOK is the metrics outcome for a successful operation.
const outcomeOK = "ok"

// IngestService turns uploads into an embedded vector plus a metadata row.
//
// The vector is appended to the index before the row is inserted. The two
// writes are not atomic: if the insert fails the vector stays orphaned and
// the failure is reported as domain.ErrInconsistent.
type IngestService struct {
	extractors driven.ExtractorRegistry
	embedder   driven.Embedder
	index      driven.VectorIndex
	store      driven.DocumentStore
	metrics    driven.Metrics
	processor  driven.TextProcessor

	// mu serialises ingestions from the duplicate check through the insert.
	mu sync.Mutex
}

// NewIngestService creates a new ingestion service.
// A nil metrics recorder discards events.
func NewIngestService(
	extractors driven.ExtractorRegistry,
	embedder driven.Embedder,
	index driven.VectorIndex,
	store driven.DocumentStore,
	metrics driven.Metrics,
) *IngestService {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &IngestService{
		extractors: extractors,
		embedder:   embedder,
		index:      index,
		store:      store,
		metrics:    metrics,
	}
}

// WithTextProcessor runs p over extracted text before it is embedded.
func (s *IngestService) WithTextProcessor(p driven.TextProcessor) *IngestService {
	s.processor = p
	return s
}

// Ingest extracts, embeds and stores a document.
func (s *IngestService) Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	start := time.Now()
	result, err := s.ingest(ctx, req)

	outcome := outcomeOK
	if err != nil {
		outcome = string(domain.Classify(err))
		logger.Debug("ingest %s failed after %s: %v", req.Filename, time.Since(start), err)
	} else {
		logger.Info("ingested %s at position %d in %s", result.Filename, result.Position, time.Since(start))
	}
	s.metrics.IngestCompleted(outcome)
	return result, err
}

func (s *IngestService) ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	if strings.TrimSpace(req.Filename) == "" {
		return nil, fmt.Errorf("%w: filename is required", domain.ErrInvalidInput)
	}
	if len(req.Content) > domain.MaxPayloadBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit is %d",
			domain.ErrPayloadTooLarge, req.Filename, len(req.Content), domain.MaxPayloadBytes)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkDuplicate(ctx, req.Filename); err != nil {
		return nil, err
	}

	text, err := s.extract(ctx, req)
	if err != nil {
		return nil, err
	}

	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		if errors.Is(err, domain.ErrEmbedding) || errors.Is(err, domain.ErrEmbeddingUnavailable) {
			return nil, fmt.Errorf("embedding %s: %w", req.Filename, err)
		}
		return nil, fmt.Errorf("%w: embedding %s: %w", domain.ErrEmbedding, req.Filename, err)
	}

	// Append reloads the persisted index, so the position reflects every
	// earlier ingestion that reached disk.
	position, err := s.index.Append(ctx, vector)
	if err != nil {
		return nil, fmt.Errorf("appending vector for %s: %w", req.Filename, err)
	}

	doc, err := s.store.Insert(ctx, &domain.Document{
		Filename:       req.Filename,
		Content:        text,
		VectorPosition: &position,
	})
	if err != nil {
		return nil, s.orphaned(req.Filename, position, err)
	}

	return &domain.IngestResult{
		DocumentID: doc.ID,
		Filename:   doc.Filename,
		Position:   position,
	}, nil
}

func (s *IngestService) checkDuplicate(ctx context.Context, filename string) error {
	_, err := s.store.FindByFilename(ctx, filename)
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s", domain.ErrDuplicateDocument, filename)
	case errors.Is(err, domain.ErrNotFound):
		return nil
	case errors.Is(err, domain.ErrServiceUnavailable):
		return fmt.Errorf("checking %s: %w", filename, err)
	default:
		return fmt.Errorf("%w: checking %s: %w", domain.ErrServiceUnavailable, filename, err)
	}
}

func (s *IngestService) extract(ctx context.Context, req domain.IngestRequest) (string, error) {
	format := req.Format
	if format == "" {
		f, err := domain.FormatFromFilename(req.Filename)
		if err != nil {
			return "", err
		}
		format = f
	} else if !format.IsValid() {
		f, err := domain.ParseFormat(string(format))
		if err != nil {
			return "", err
		}
		format = f
	}

	extractor, err := s.extractors.Get(format)
	if err != nil {
		return "", err
	}

	text, err := extractor.Extract(ctx, req.Content)
	if err != nil {
		return "", fmt.Errorf("extracting %s: %w", req.Filename, err)
	}
	if s.processor != nil {
		text, err = s.processor.Process(ctx, text)
		if err != nil {
			return "", fmt.Errorf("processing %s with %s: %w", req.Filename, s.processor.Name(), err)
		}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: %s", domain.ErrExtractionEmpty, req.Filename)
	}
	return text, nil
}

// orphaned reports a vector that was persisted without its metadata row.
func (s *IngestService) orphaned(filename string, position int, cause error) error {
	logger.Error("vector at position %d for %s has no document row: %v", position, filename, cause)
	s.metrics.InconsistencyObserved(driven.ConsistencyOrphanVector, 1)

	if errors.Is(cause, domain.ErrDuplicateFilename) {
		return fmt.Errorf("%w: %w: position %d orphaned: %w",
			domain.ErrInconsistent, domain.ErrDuplicateDocument, position, cause)
	}
	return fmt.Errorf("%w: position %d orphaned for %s: %w", domain.ErrInconsistent, position, filename, cause)
}

// nopMetrics discards all events.
type nopMetrics struct{}

func (nopMetrics) IngestCompleted(string)                  {}
func (nopMetrics) QueryCompleted(string)                   {}
func (nopMetrics) GenerationObserved(time.Duration, error) {}
func (nopMetrics) InconsistencyObserved(string, int)       {}
