package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pawelm/flashgen-api/internal/domain"
	"github.com/pawelm/flashgen-api/internal/generation"
	"github.com/pawelm/flashgen-api/internal/store"
)

// GenerationResult is what a successful generation run returns: the audit
// record ID plus the suggestions awaiting user review.
type GenerationResult struct {
	GenerationID   uuid.UUID           `json:"generation_id"`
	Model          string              `json:"model"`
	GeneratedCount int                 `json:"generated_count"`
	Suggestions    []domain.Suggestion `json:"suggestions"`
	Duration       time.Duration       `json:"-"`
}

// GenerationService orchestrates the AI flashcard-authoring flow.
type GenerationService interface {
	// GenerateFlashcards runs the full generation pipeline for the given
	// source text: validate, record the attempt, call the completion
	// backend, and record the outcome. Returned suggestions carry
	// session-unique positive IDs assigned in arrival order.
	GenerateFlashcards(ctx context.Context, userID uuid.UUID, sourceText string) (*GenerationResult, error)

	// GetGeneration retrieves a generation audit record owned by the user.
	GetGeneration(ctx context.Context, userID, id uuid.UUID) (*domain.Generation, error)

	// ListGenerations retrieves the user's generation history, newest first.
	ListGenerations(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Generation, error)
}

// generationServiceImpl implements the GenerationService interface
type generationServiceImpl struct {
	generator      generation.Generator
	generationRepo store.GenerationStore
	errorLogRepo   store.GenerationErrorLogStore
	logger         *slog.Logger
}

// NewGenerationService creates a new GenerationService.
// It returns an error if any of the required dependencies are nil.
func NewGenerationService(
	generator generation.Generator,
	generationRepo store.GenerationStore,
	errorLogRepo store.GenerationErrorLogStore,
	logger *slog.Logger,
) (GenerationService, error) {
	if generator == nil {
		return nil, &ServiceError{
			Operation: "create_service",
			Message:   "generator cannot be nil",
		}
	}
	if generationRepo == nil {
		return nil, &ServiceError{
			Operation: "create_service",
			Message:   "generationRepo cannot be nil",
		}
	}
	if errorLogRepo == nil {
		return nil, &ServiceError{
			Operation: "create_service",
			Message:   "errorLogRepo cannot be nil",
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &generationServiceImpl{
		generator:      generator,
		generationRepo: generationRepo,
		errorLogRepo:   errorLogRepo,
		logger:         logger.With(slog.String("component", "generation_service")),
	}, nil
}

// GenerateFlashcards implements GenerationService.GenerateFlashcards
//
// The audit row is inserted before the completion call so that a failed call
// still has an attributable record. Error-log writes are best-effort: a
// failure there is logged and swallowed so it can never mask the causal error.
func (s *generationServiceImpl) GenerateFlashcards(
	ctx context.Context,
	userID uuid.UUID,
	sourceText string,
) (*GenerationResult, error) {
	if err := domain.ValidateSourceText(sourceText); err != nil {
		s.logger.Warn("source text rejected",
			"user_id", userID,
			"source_length", len(sourceText))
		return nil, err
	}

	gen, err := domain.NewGeneration(userID, s.generator.Model(), sourceText)
	if err != nil {
		s.logger.Error("failed to create generation record",
			"error", err,
			"user_id", userID)
		return nil, err
	}

	if err := s.generationRepo.Create(ctx, gen); err != nil {
		s.logger.Error("failed to persist generation record",
			"error", err,
			"user_id", userID,
			"generation_id", gen.ID)
		// The row never existed, so the error log carries no generation reference.
		s.appendErrorLog(ctx, userID, nil, "persistence", err)
		return nil, &ServiceError{
			Operation: "generate_flashcards",
			Message:   "failed to persist generation record",
			Err:       errors.Join(ErrPersistence, err),
		}
	}

	start := time.Now()
	suggestions, err := s.generator.GenerateFlashcards(ctx, sourceText)
	duration := time.Since(start)

	if err != nil {
		s.logger.Error("flashcard generation failed",
			"error", err,
			"user_id", userID,
			"generation_id", gen.ID,
			"duration_ms", duration.Milliseconds())
		s.appendErrorLog(ctx, userID, &gen.ID, classifyGenerationError(err), err)
		return nil, err
	}

	// Suggestion IDs are 1-based and unique within this result set; the
	// review flow uses them to address individual suggestions.
	for i := range suggestions {
		suggestions[i].ID = i + 1
	}

	if err := s.generationRepo.UpdateStats(ctx, gen.ID, len(suggestions), duration); err != nil {
		s.logger.Error("failed to update generation stats",
			"error", err,
			"generation_id", gen.ID)
		s.appendErrorLog(ctx, userID, &gen.ID, "persistence", err)
		return nil, &ServiceError{
			Operation: "generate_flashcards",
			Message:   "failed to record generation outcome",
			Err:       errors.Join(ErrPersistence, err),
		}
	}

	s.logger.Info("flashcards generated",
		"user_id", userID,
		"generation_id", gen.ID,
		"generated_count", len(suggestions),
		"duration_ms", duration.Milliseconds())

	return &GenerationResult{
		GenerationID:   gen.ID,
		Model:          gen.Model,
		GeneratedCount: len(suggestions),
		Suggestions:    suggestions,
		Duration:       duration,
	}, nil
}

// GetGeneration implements GenerationService.GetGeneration
func (s *generationServiceImpl) GetGeneration(
	ctx context.Context,
	userID, id uuid.UUID,
) (*domain.Generation, error) {
	gen, err := s.generationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrGenerationNotFound) {
			return nil, ErrGenerationNotFound
		}
		return nil, &ServiceError{
			Operation: "get_generation",
			Message:   "failed to retrieve generation",
			Err:       errors.Join(ErrPersistence, err),
		}
	}

	// Ownership check happens after the fetch; a foreign generation is
	// reported as missing to avoid leaking its existence.
	if gen.UserID != userID {
		return nil, ErrGenerationNotFound
	}

	return gen, nil
}

// ListGenerations implements GenerationService.ListGenerations
func (s *generationServiceImpl) ListGenerations(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Generation, error) {
	generations, err := s.generationRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, &ServiceError{
			Operation: "list_generations",
			Message:   "failed to list generations",
			Err:       errors.Join(ErrPersistence, err),
		}
	}
	return generations, nil
}

// appendErrorLog writes a best-effort audit entry for a pipeline failure.
// Append failures are logged and swallowed.
func (s *generationServiceImpl) appendErrorLog(
	ctx context.Context,
	userID uuid.UUID,
	generationID *uuid.UUID,
	errorCode string,
	cause error,
) {
	entry := domain.NewGenerationErrorLog(
		userID,
		generationID,
		s.generator.Model(),
		errorCode,
		cause.Error(),
	)
	if err := s.errorLogRepo.Append(ctx, entry); err != nil {
		s.logger.Error("failed to append generation error log",
			"error", err,
			"user_id", userID,
			"error_code", errorCode)
	}
}

// classifyGenerationError maps a generator error to the audit-log error code.
func classifyGenerationError(err error) string {
	switch {
	case errors.Is(err, generation.ErrAuthorization):
		return "authorization"
	case errors.Is(err, generation.ErrNetwork):
		return "network"
	case errors.Is(err, generation.ErrValidation):
		return "validation"
	case errors.Is(err, generation.ErrInvalidConfig):
		return "configuration"
	default:
		return "unknown"
	}
}
