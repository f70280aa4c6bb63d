// Package embedding holds helpers shared by the Embedder adapters: vector
// normalisation and an expiring LRU cache that wraps any driven.Embedder.
//
// Provider adapters live in subpackages:
//   - hashing: deterministic feature hashing, no model download
//   - fastembed: local ONNX all-MiniLM-L6-v2 (requires cgo)
//   - ollama: HTTP calls to a local Ollama server
//   - openai: OpenAI embeddings API via openai-go
package embedding
