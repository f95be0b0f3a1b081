package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Character limits for flashcard content. These are authoritative: the API
// layer validates them for UX, but the domain enforces them at the
// persistence boundary.
const (
	FlashcardFrontMaxLen = 200
	FlashcardBackMaxLen  = 500
)

// FlashcardSource describes how a flashcard came into existence.
type FlashcardSource string

// Possible flashcard source values.
const (
	// SourceManual marks a card typed in by hand.
	SourceManual FlashcardSource = "manual"

	// SourceAIFull marks a card accepted from an AI suggestion unchanged.
	SourceAIFull FlashcardSource = "ai_full"

	// SourceAIEdited marks a card accepted from an AI suggestion after editing.
	SourceAIEdited FlashcardSource = "ai_edited"
)

// Flashcard-specific validation errors.
var (
	// ErrFlashcardIDEmpty is returned when a flashcard ID is empty or nil.
	ErrFlashcardIDEmpty = errors.New("flashcard ID cannot be empty")

	// ErrFlashcardUserIDEmpty is returned when a flashcard's user ID is empty or nil.
	ErrFlashcardUserIDEmpty = errors.New("flashcard user ID cannot be empty")

	// ErrFlashcardFrontEmpty is returned when the front side is empty.
	ErrFlashcardFrontEmpty = errors.New("flashcard front cannot be empty")

	// ErrFlashcardBackEmpty is returned when the back side is empty.
	ErrFlashcardBackEmpty = errors.New("flashcard back cannot be empty")

	// ErrFlashcardFrontTooLong is returned when the front side exceeds FlashcardFrontMaxLen.
	ErrFlashcardFrontTooLong = fmt.Errorf(
		"flashcard front cannot exceed %d characters",
		FlashcardFrontMaxLen,
	)

	// ErrFlashcardBackTooLong is returned when the back side exceeds FlashcardBackMaxLen.
	ErrFlashcardBackTooLong = fmt.Errorf(
		"flashcard back cannot exceed %d characters",
		FlashcardBackMaxLen,
	)

	// ErrInvalidFlashcardSource is returned when the source is not a known value.
	ErrInvalidFlashcardSource = errors.New("invalid flashcard source")

	// ErrGenerationIDRequired is returned when an AI-sourced card lacks a generation reference.
	ErrGenerationIDRequired = errors.New("generation ID is required for AI-sourced flashcards")

	// ErrGenerationIDForbidden is returned when a manual card carries a generation reference.
	ErrGenerationIDForbidden = errors.New("generation ID must not be set for manual flashcards")
)

// Flashcard represents a persisted card owned by a user. Cards are created
// either manually or by accepting an AI-generated suggestion; GenerationID
// links AI-sourced cards back to the generation that produced them.
type Flashcard struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	Front        string          `json:"front"`
	Back         string          `json:"back"`
	Source       FlashcardSource `json:"source"`
	GenerationID *uuid.UUID      `json:"generation_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewFlashcard creates a new Flashcard owned by the given user.
// It generates a new UUID for the card and sets the creation/update timestamps.
// Returns an error if validation fails.
func NewFlashcard(
	userID uuid.UUID,
	front, back string,
	source FlashcardSource,
	generationID *uuid.UUID,
) (*Flashcard, error) {
	now := time.Now().UTC()
	card := &Flashcard{
		ID:           uuid.New(),
		UserID:       userID,
		Front:        front,
		Back:         back,
		Source:       source,
		GenerationID: generationID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Flashcard has valid data.
// Returns an error if any field fails validation.
func (f *Flashcard) Validate() error {
	if f.ID == uuid.Nil {
		return ErrFlashcardIDEmpty
	}

	if f.UserID == uuid.Nil {
		return ErrFlashcardUserIDEmpty
	}

	if f.Front == "" {
		return ErrFlashcardFrontEmpty
	}

	if len(f.Front) > FlashcardFrontMaxLen {
		return ErrFlashcardFrontTooLong
	}

	if f.Back == "" {
		return ErrFlashcardBackEmpty
	}

	if len(f.Back) > FlashcardBackMaxLen {
		return ErrFlashcardBackTooLong
	}

	if !IsValidFlashcardSource(f.Source) {
		return ErrInvalidFlashcardSource
	}

	// AI-sourced cards must be attributable to a generation; manual ones must not be.
	switch f.Source {
	case SourceAIFull, SourceAIEdited:
		if f.GenerationID == nil || *f.GenerationID == uuid.Nil {
			return ErrGenerationIDRequired
		}
	case SourceManual:
		if f.GenerationID != nil {
			return ErrGenerationIDForbidden
		}
	}

	return nil
}

// UpdateContent replaces the card's front/back text and source, bumping the
// UpdatedAt timestamp. Editing an ai_full card demotes it to ai_edited; the
// update path never accepts ai_full as a target source.
func (f *Flashcard) UpdateContent(front, back string, source FlashcardSource) error {
	if source == SourceAIFull {
		return fmt.Errorf("%w: cannot update a flashcard to source %q",
			ErrInvalidFlashcardSource, SourceAIFull)
	}

	origFront, origBack, origSource := f.Front, f.Back, f.Source
	f.Front = front
	f.Back = back
	f.Source = source

	// Manual cards carry no generation reference; clearing happens only after
	// validation so a failed update leaves the card untouched.
	origGenerationID := f.GenerationID
	if source == SourceManual {
		f.GenerationID = nil
	}

	if err := f.Validate(); err != nil {
		f.Front, f.Back, f.Source = origFront, origBack, origSource
		f.GenerationID = origGenerationID
		return err
	}

	f.UpdatedAt = time.Now().UTC()
	return nil
}

// IsValidFlashcardSource checks if the given source is a known FlashcardSource.
func IsValidFlashcardSource(source FlashcardSource) bool {
	switch source {
	case SourceManual, SourceAIFull, SourceAIEdited:
		return true
	default:
		return false
	}
}
