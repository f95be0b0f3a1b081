// Package generation provides interfaces and error types for interacting
// with external AI/LLM services for content generation. It abstracts the
// details of completion-API integration (OpenRouter), allowing the
// application to generate flashcard suggestions from source text without
// coupling to a specific external service.
package generation
