package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// Ingestion Errors.

	// ErrDuplicateDocument indicates a document with the same filename was already ingested.
	// Re-uploading a name is a user error, not an update.
	ErrDuplicateDocument = errors.New("document already exists")

	// ErrDuplicateFilename is returned by a document store when an insert
	// collides with an existing filename.
	ErrDuplicateFilename = errors.New("filename already exists")

	// ErrUnsupportedFormat indicates the declared or inferred format has no extractor.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrExtractionEmpty indicates extraction produced no text (e.g. a scanned PDF).
	ErrExtractionEmpty = errors.New("no text could be extracted")

	// ErrPayloadTooLarge indicates an upload exceeds MaxPayloadBytes.
	ErrPayloadTooLarge = errors.New("payload too large")

	// Vector Errors.

	// ErrEmbedding indicates the embedder rejected its input or failed to produce a vector.
	ErrEmbedding = errors.New("embedding failed")

	// ErrDimensionMismatch indicates a vector does not match the index dimensions.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrIndexCorrupt indicates the persisted vector index could not be decoded.
	// A corrupt index is never partially loaded.
	ErrIndexCorrupt = errors.New("vector index corrupt")

	// ErrInconsistent indicates the vector index and the document store disagree
	// about which positions exist.
	ErrInconsistent = errors.New("vector index and document store are inconsistent")

	// Dependency Errors.

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured or unreachable.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrGenerationUnavailable indicates the answer generator failed or timed out.
	ErrGenerationUnavailable = errors.New("answer generation unavailable")

	// ErrServiceUnavailable indicates backing storage is unreachable.
	// Distinct from ErrNotFound: the data may exist but cannot be read.
	ErrServiceUnavailable = errors.New("service unavailable")
)

// ErrorCategory groups errors by how they are reported to users.
type ErrorCategory string

// Error categories.
const (
	CategoryNone        ErrorCategory = ""
	CategoryInput       ErrorCategory = "input"
	CategoryNotFound    ErrorCategory = "not_found"
	CategoryDependency  ErrorCategory = "dependency"
	CategoryConsistency ErrorCategory = "consistency"
	CategoryCorruption  ErrorCategory = "corruption"
	CategoryUnavailable ErrorCategory = "unavailable"
	CategoryInternal    ErrorCategory = "internal"
)

// Classify maps an error to its reporting category.
// Consistency and corruption take precedence over the input categories, so a
// duplicate that raced past the filename check reports as an inconsistency.
func Classify(err error) ErrorCategory {
	switch {
	case err == nil:
		return CategoryNone
	case errors.Is(err, ErrInconsistent):
		return CategoryConsistency
	case errors.Is(err, ErrIndexCorrupt):
		return CategoryCorruption
	case errors.Is(err, ErrServiceUnavailable):
		return CategoryUnavailable
	case errors.Is(err, ErrGenerationUnavailable),
		errors.Is(err, ErrLLMUnavailable),
		errors.Is(err, ErrEmbeddingUnavailable):
		return CategoryDependency
	case errors.Is(err, ErrPayloadTooLarge),
		errors.Is(err, ErrUnsupportedFormat),
		errors.Is(err, ErrExtractionEmpty),
		errors.Is(err, ErrDuplicateDocument),
		errors.Is(err, ErrDuplicateFilename),
		errors.Is(err, ErrAlreadyExists),
		errors.Is(err, ErrDimensionMismatch),
		errors.Is(err, ErrEmbedding),
		errors.Is(err, ErrInvalidInput):
		return CategoryInput
	case errors.Is(err, ErrNotFound):
		return CategoryNotFound
	default:
		return CategoryInternal
	}
}
