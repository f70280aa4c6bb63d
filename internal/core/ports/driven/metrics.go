package driven

import "time"

// Consistency event kinds reported to Metrics.
const (
	// ConsistencyOrphanVector is an index position with no document row.
	ConsistencyOrphanVector = "orphan_vector"

	// ConsistencyDanglingPosition is a position that does not resolve: a
	// document position beyond the index, or a search hit with no document row.
	ConsistencyDanglingPosition = "dangling_position"

	// ConsistencyDuplicatePosition is a position claimed by several documents.
	ConsistencyDuplicatePosition = "duplicate_position"
)

// Metrics records operational events.
// All methods must be safe for concurrent use.
type Metrics interface {
	// IngestCompleted records an ingestion outcome ("ok" or an error category).
	IngestCompleted(outcome string)

	// QueryCompleted records a query outcome ("answered" or a not-found reason).
	QueryCompleted(outcome string)

	// GenerationObserved records a generation call's latency and success.
	GenerationObserved(d time.Duration, err error)

	// InconsistencyObserved counts position/document mismatches by kind.
	InconsistencyObserved(kind string, n int)
}
