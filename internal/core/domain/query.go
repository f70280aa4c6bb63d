package domain

// DefaultTopK is the number of nearest documents retrieved when a query does not set K.
const DefaultTopK = 3

// Query is a question to answer from the ingested documents.
type Query struct {
	// Question is the natural-language question.
	Question string

	// History is optional prior conversation passed to the generator.
	History string

	// K is the number of documents to retrieve. Zero means the configured default.
	K int
}

// TopK returns the effective retrieval depth. A zero K resolves to
// defaultK, or to DefaultTopK when defaultK is not positive.
func (q Query) TopK(defaultK int) int {
	if q.K != 0 {
		return q.K
	}
	if defaultK <= 0 {
		return DefaultTopK
	}
	return defaultK
}

// Match is a retrieved document ranked by vector distance.
type Match struct {
	Filename string
	Position int
	Distance float32
	Content  string
}

// Retrieval is the grounded context assembled for a question.
// Exactly one of Matches or NotFound is populated.
type Retrieval struct {
	// Matches are ordered by ascending distance (most relevant first).
	Matches []Match

	// Context is the prompt-ready concatenation of truncated match contents.
	Context string

	// NotFound is set when retrieval produced nothing to ground an answer.
	NotFound *NotFound
}

// Filenames returns the match filenames in relevance order.
func (r *Retrieval) Filenames() []string {
	names := make([]string, 0, len(r.Matches))
	for _, m := range r.Matches {
		names = append(names, m.Filename)
	}
	return names
}

// QueryResult is either an answer with its sources or a NotFound signal.
type QueryResult struct {
	// Answer is the generated answer text.
	Answer string

	// Sources are the filenames used as context, most relevant first.
	Sources []string

	// PrimarySource is the top-ranked source filename.
	PrimarySource string

	// NotFound is set instead of Answer when no confident answer exists.
	NotFound *NotFound
}

// Found reports whether the result carries an answer.
func (r *QueryResult) Found() bool {
	return r.NotFound == nil
}

// NotFoundReason explains why no answer was produced.
type NotFoundReason string

// Not-found reasons.
const (
	// NotFoundNoRelevantDocuments means the index returned no positions.
	NotFoundNoRelevantDocuments NotFoundReason = "no relevant documents"

	// NotFoundNoMatchingDocuments means positions had no metadata rows.
	NotFoundNoMatchingDocuments NotFoundReason = "no matching documents"

	// NotFoundLowConfidence means the generator answered without grounding.
	NotFoundLowConfidence NotFoundReason = "no confident answer"

	// NotFoundGenerationUnavailable means the generator failed or timed out.
	NotFoundGenerationUnavailable NotFoundReason = "answer generation unavailable"
)

// NotFoundMessage is the neutral message shown when no answer is available.
const NotFoundMessage = "We're sorry, we don't have such a document to answer your query."

// NotFound is the "no answer" signal. It is a result, not an error.
type NotFound struct {
	Reason NotFoundReason
}

// NewNotFound creates a NotFound signal.
func NewNotFound(reason NotFoundReason) *NotFound {
	return &NotFound{Reason: reason}
}

// Recoverable reports whether retrying later may produce an answer.
func (n *NotFound) Recoverable() bool {
	return n.Reason == NotFoundGenerationUnavailable
}

// Message returns the user-facing message for the signal.
func (n *NotFound) Message() string {
	switch n.Reason {
	case NotFoundGenerationUnavailable:
		return "The answer service is temporarily unavailable. Please try again."
	case NotFoundNoMatchingDocuments:
		return "No matching documents found."
	case NotFoundNoRelevantDocuments:
		return "No relevant documents found."
	default:
		return NotFoundMessage
	}
}

// Confidence is an AnswerClassifier verdict.
type Confidence int

// Confidence verdicts.
const (
	Confident Confidence = iota
	LowConfidence
)

// String returns the string representation.
func (c Confidence) String() string {
	if c == Confident {
		return "confident"
	}
	return "low_confidence"
}

// ConsistencyReport describes how the vector index and document store agree.
type ConsistencyReport struct {
	// IndexSize is the number of vectors in the index.
	IndexSize int

	// Documents is the number of stored documents with a position.
	Documents int

	// OrphanPositions are index positions with no document.
	OrphanPositions []int

	// DanglingPositions are document positions beyond the index size.
	DanglingPositions []int

	// DuplicatePositions are positions claimed by more than one document.
	DuplicatePositions []int
}

// Consistent reports whether the stores form a bijection.
func (r *ConsistencyReport) Consistent() bool {
	return len(r.OrphanPositions) == 0 &&
		len(r.DanglingPositions) == 0 &&
		len(r.DuplicatePositions) == 0
}
