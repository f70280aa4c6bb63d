// Package llm holds decorators shared by the LLMService adapters.
// Provider adapters live in the ollama, openai and gemini subpackages.
package llm
