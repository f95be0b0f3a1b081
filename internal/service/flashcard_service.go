package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pawelm/flashgen-api/internal/domain"
	"github.com/pawelm/flashgen-api/internal/store"
)

// FlashcardInput describes one flashcard to be created. GenerationID is
// required for AI-sourced cards and forbidden for manual ones; the domain
// layer enforces this.
type FlashcardInput struct {
	Front        string
	Back         string
	Source       domain.FlashcardSource
	GenerationID *uuid.UUID
}

// FlashcardService provides flashcard CRUD operations.
type FlashcardService interface {
	// CreateFlashcards creates the given batch of flashcards atomically.
	// Mixed batches (manual plus accepted suggestions) are allowed.
	// AI-sourced cards must reference a generation owned by the caller.
	CreateFlashcards(ctx context.Context, userID uuid.UUID, inputs []FlashcardInput) ([]*domain.Flashcard, error)

	// GetFlashcard retrieves a single flashcard owned by the user.
	GetFlashcard(ctx context.Context, userID, id uuid.UUID) (*domain.Flashcard, error)

	// ListFlashcards retrieves one page of the user's flashcards.
	ListFlashcards(ctx context.Context, userID uuid.UUID, params store.ListParams) (*store.FlashcardList, error)

	// UpdateFlashcard replaces the content of an existing flashcard.
	// Editing an AI-sourced card demotes its source to ai_edited.
	UpdateFlashcard(ctx context.Context, userID, id uuid.UUID, front, back string, source domain.FlashcardSource) (*domain.Flashcard, error)

	// DeleteFlashcard removes a flashcard owned by the user.
	DeleteFlashcard(ctx context.Context, userID, id uuid.UUID) error
}

// flashcardServiceImpl implements the FlashcardService interface
type flashcardServiceImpl struct {
	db             *sql.DB
	flashcardRepo  store.FlashcardStore
	generationRepo store.GenerationStore
	logger         *slog.Logger
}

// NewFlashcardService creates a new FlashcardService.
// It returns an error if any of the required dependencies are nil.
func NewFlashcardService(
	db *sql.DB,
	flashcardRepo store.FlashcardStore,
	generationRepo store.GenerationStore,
	logger *slog.Logger,
) (FlashcardService, error) {
	if db == nil {
		return nil, &ServiceError{
			Operation: "create_service",
			Message:   "db cannot be nil",
		}
	}
	if flashcardRepo == nil {
		return nil, &ServiceError{
			Operation: "create_service",
			Message:   "flashcardRepo cannot be nil",
		}
	}
	if generationRepo == nil {
		return nil, &ServiceError{
			Operation: "create_service",
			Message:   "generationRepo cannot be nil",
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &flashcardServiceImpl{
		db:             db,
		flashcardRepo:  flashcardRepo,
		generationRepo: generationRepo,
		logger:         logger.With(slog.String("component", "flashcard_service")),
	}, nil
}

// CreateFlashcards implements FlashcardService.CreateFlashcards
// All cards are inserted within a single transaction so a failed batch
// leaves no partial state behind.
func (s *flashcardServiceImpl) CreateFlashcards(
	ctx context.Context,
	userID uuid.UUID,
	inputs []FlashcardInput,
) ([]*domain.Flashcard, error) {
	if len(inputs) == 0 {
		return nil, domain.NewValidationError("flashcards", "at least one flashcard is required", domain.ErrValidation)
	}

	cards := make([]*domain.Flashcard, 0, len(inputs))
	for _, input := range inputs {
		card, err := domain.NewFlashcard(userID, input.Front, input.Back, input.Source, input.GenerationID)
		if err != nil {
			s.logger.Warn("flashcard input rejected",
				"error", err,
				"user_id", userID)
			return nil, err
		}
		cards = append(cards, card)
	}

	// Every referenced generation must exist and belong to the caller.
	if err := s.checkGenerationOwnership(ctx, userID, cards); err != nil {
		return nil, err
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.flashcardRepo.WithTx(tx).CreateMultiple(ctx, cards)
	})
	if err != nil {
		s.logger.Error("failed to create flashcards",
			"error", err,
			"user_id", userID,
			"count", len(cards))
		if errors.Is(err, store.ErrInvalidEntity) {
			return nil, err
		}
		return nil, &ServiceError{
			Operation: "create_flashcards",
			Message:   "failed to save flashcards",
			Err:       errors.Join(ErrPersistence, err),
		}
	}

	s.logger.Info("flashcards created",
		"user_id", userID,
		"count", len(cards))
	return cards, nil
}

// GetFlashcard implements FlashcardService.GetFlashcard
func (s *flashcardServiceImpl) GetFlashcard(
	ctx context.Context,
	userID, id uuid.UUID,
) (*domain.Flashcard, error) {
	card, err := s.flashcardRepo.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, store.ErrFlashcardNotFound) {
			return nil, ErrFlashcardNotFound
		}
		return nil, &ServiceError{
			Operation: "get_flashcard",
			Message:   "failed to retrieve flashcard",
			Err:       errors.Join(ErrPersistence, err),
		}
	}
	return card, nil
}

// ListFlashcards implements FlashcardService.ListFlashcards
func (s *flashcardServiceImpl) ListFlashcards(
	ctx context.Context,
	userID uuid.UUID,
	params store.ListParams,
) (*store.FlashcardList, error) {
	list, err := s.flashcardRepo.List(ctx, userID, params)
	if err != nil {
		if errors.Is(err, store.ErrInvalidEntity) {
			return nil, err
		}
		return nil, &ServiceError{
			Operation: "list_flashcards",
			Message:   "failed to list flashcards",
			Err:       errors.Join(ErrPersistence, err),
		}
	}
	return list, nil
}

// UpdateFlashcard implements FlashcardService.UpdateFlashcard
func (s *flashcardServiceImpl) UpdateFlashcard(
	ctx context.Context,
	userID, id uuid.UUID,
	front, back string,
	source domain.FlashcardSource,
) (*domain.Flashcard, error) {
	card, err := s.GetFlashcard(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	// An edited ai_full card becomes ai_edited; the domain rejects ai_full
	// as an explicit update target.
	if source == "" {
		source = card.Source
		if source == domain.SourceAIFull {
			source = domain.SourceAIEdited
		}
	}

	if err := card.UpdateContent(front, back, source); err != nil {
		s.logger.Warn("flashcard update rejected",
			"error", err,
			"flashcard_id", id,
			"user_id", userID)
		return nil, err
	}

	if err := s.flashcardRepo.Update(ctx, card); err != nil {
		if errors.Is(err, store.ErrFlashcardNotFound) {
			return nil, ErrFlashcardNotFound
		}
		s.logger.Error("failed to update flashcard",
			"error", err,
			"flashcard_id", id)
		return nil, &ServiceError{
			Operation: "update_flashcard",
			Message:   "failed to save flashcard changes",
			Err:       errors.Join(ErrPersistence, err),
		}
	}

	s.logger.Info("flashcard updated",
		"flashcard_id", id,
		"user_id", userID,
		"source", string(card.Source))
	return card, nil
}

// DeleteFlashcard implements FlashcardService.DeleteFlashcard
func (s *flashcardServiceImpl) DeleteFlashcard(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.flashcardRepo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, store.ErrFlashcardNotFound) {
			return ErrFlashcardNotFound
		}
		s.logger.Error("failed to delete flashcard",
			"error", err,
			"flashcard_id", id)
		return &ServiceError{
			Operation: "delete_flashcard",
			Message:   "failed to delete flashcard",
			Err:       errors.Join(ErrPersistence, err),
		}
	}

	s.logger.Info("flashcard deleted",
		"flashcard_id", id,
		"user_id", userID)
	return nil
}

// checkGenerationOwnership verifies that every generation referenced by the
// batch exists and belongs to the given user. Each distinct generation is
// fetched once.
func (s *flashcardServiceImpl) checkGenerationOwnership(
	ctx context.Context,
	userID uuid.UUID,
	cards []*domain.Flashcard,
) error {
	seen := make(map[uuid.UUID]bool)
	for _, card := range cards {
		if card.GenerationID == nil || seen[*card.GenerationID] {
			continue
		}
		seen[*card.GenerationID] = true

		gen, err := s.generationRepo.GetByID(ctx, *card.GenerationID)
		if err != nil {
			if errors.Is(err, store.ErrGenerationNotFound) {
				return ErrGenerationNotFound
			}
			return &ServiceError{
				Operation: "create_flashcards",
				Message:   "failed to verify generation reference",
				Err:       errors.Join(ErrPersistence, err),
			}
		}
		if gen.UserID != userID {
			return ErrNotOwned
		}
	}
	return nil
}
