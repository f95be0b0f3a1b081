package generation

import (
	"context"

	"github.com/pawelm/flashgen-api/internal/domain"
)

// Generator defines the interface for generating flashcard suggestions from
// source text. This interface serves as a boundary between the application
// core and external AI/LLM services, following the hexagonal architecture
// pattern.
type Generator interface {
	// GenerateFlashcards creates flashcard suggestions from the provided
	// source text. The returned suggestions carry front/back content and
	// source "ai_full"; batch-local IDs are assigned by the caller.
	//
	// Returns an error wrapping one of this package's sentinel errors if
	// the generation fails for any reason.
	GenerateFlashcards(ctx context.Context, sourceText string) ([]domain.Suggestion, error)

	// Model reports the model name used for generation, for audit records.
	Model() string
}
