package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure ConsistencyService implements the interface.
var _ driving.ConsistencyService = (*ConsistencyService)(nil)

// ConsistencyService audits the position bijection between the vector index
// and the document store.
type ConsistencyService struct {
	index   driven.VectorIndex
	store   driven.DocumentStore
	metrics driven.Metrics
}

// NewConsistencyService creates a new consistency service.
func NewConsistencyService(index driven.VectorIndex, store driven.DocumentStore, metrics driven.Metrics) *ConsistencyService {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &ConsistencyService{index: index, store: store, metrics: metrics}
}

// Check compares index positions with stored documents.
// Store positions are ascending, so each category in the report is sorted.
func (s *ConsistencyService) Check(ctx context.Context) (*domain.ConsistencyReport, error) {
	size, err := s.index.Size(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading index size: %w", err)
	}
	positions, err := s.store.Positions(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading document positions: %w", err)
	}

	report := &domain.ConsistencyReport{
		IndexSize: size,
		Documents: len(positions),
	}

	claimed := make([]int, size)
	for _, p := range positions {
		if p < 0 || p >= size {
			report.DanglingPositions = append(report.DanglingPositions, p)
			continue
		}
		claimed[p]++
		if claimed[p] == 2 {
			report.DuplicatePositions = append(report.DuplicatePositions, p)
		}
	}
	for p, n := range claimed {
		if n == 0 {
			report.OrphanPositions = append(report.OrphanPositions, p)
		}
	}

	s.record(driven.ConsistencyOrphanVector, report.OrphanPositions)
	s.record(driven.ConsistencyDanglingPosition, report.DanglingPositions)
	s.record(driven.ConsistencyDuplicatePosition, report.DuplicatePositions)

	if report.Consistent() {
		logger.Debug("index and store agree on %d positions", size)
	}
	return report, nil
}

func (s *ConsistencyService) record(kind string, positions []int) {
	if len(positions) == 0 {
		return
	}
	logger.Warn("%d %s positions: %v", len(positions), kind, positions)
	s.metrics.InconsistencyObserved(kind, len(positions))
}
