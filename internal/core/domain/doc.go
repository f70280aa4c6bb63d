// Package domain defines the core business entities for docqa.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An ingested document and its vector position
//   - Format: A supported upload format (PDF, DOCX)
//   - Query / QueryResult: A question and its grounded answer
//   - Retrieval: Ranked matches and the assembled prompt context
//   - NotFound: The neutral "no answer" signal
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
