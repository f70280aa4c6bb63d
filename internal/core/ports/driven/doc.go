// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Embedder: Turns text into unit-length vectors
//   - VectorIndex: Append-only exact nearest-neighbour index with durable persistence
//   - DocumentStore: Document metadata persistence
//   - ExtractorRegistry: Selects the text extractor for an upload format
//   - AnswerClassifier: Decides whether a generated answer is grounded
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Answer generation. Without it, questions cannot be answered
//     but ingestion and retrieval still work.
//   - PromptStore: Customisable prompts. Without it, built-in prompts are used.
//   - Metrics: Counters for observability. Without it, events are only logged.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or extractor package
package driven
