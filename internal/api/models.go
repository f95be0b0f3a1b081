package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/pawelm/flashgen-api/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	AccessToken  string    `json:"token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    string    `json:"expires_at,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    string `json:"expires_at"`
}

// GenerateRequest defines the payload for the flashcard generation endpoint.
// Length bounds mirror the domain rules so obviously bad input is rejected
// before touching the service.
type GenerateRequest struct {
	SourceText string `json:"source_text" validate:"required,min=1000,max=10000"`
}

// GenerateResponse defines the successful response for the generation endpoint.
type GenerateResponse struct {
	GenerationID   uuid.UUID           `json:"generation_id"`
	Model          string              `json:"model"`
	GeneratedCount int                 `json:"generated_count"`
	Suggestions    []domain.Suggestion `json:"flashcard_suggestions"`
}

// CreateFlashcardsRequest defines the payload for the batch flashcard
// creation endpoint.
type CreateFlashcardsRequest struct {
	Flashcards []FlashcardInput `json:"flashcards" validate:"required,min=1,dive"`
}

// FlashcardInput is one flashcard in a creation batch.
type FlashcardInput struct {
	Front        string  `json:"front"                   validate:"required,max=200"`
	Back         string  `json:"back"                    validate:"required,max=500"`
	Source       string  `json:"source"                  validate:"required,oneof=manual ai_full ai_edited"`
	GenerationID *string `json:"generation_id,omitempty"`
}

// UpdateFlashcardRequest defines the payload for the flashcard update
// endpoint. Source is optional; omitting it keeps the current source
// (demoting ai_full to ai_edited).
type UpdateFlashcardRequest struct {
	Front  string `json:"front"            validate:"required,max=200"`
	Back   string `json:"back"             validate:"required,max=500"`
	Source string `json:"source,omitempty" validate:"omitempty,oneof=manual ai_edited"`
}

// CreateFlashcardsResponse defines the successful response for the batch
// flashcard creation endpoint.
type CreateFlashcardsResponse struct {
	Flashcards   []FlashcardResponse `json:"flashcards"`
	TotalCreated int                 `json:"total_created"`
}

// FlashcardResponse represents one flashcard in API responses.
type FlashcardResponse struct {
	ID           uuid.UUID  `json:"id"`
	Front        string     `json:"front"`
	Back         string     `json:"back"`
	Source       string     `json:"source"`
	GenerationID *uuid.UUID `json:"generation_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// FlashcardListResponse is one page of flashcards plus pagination totals.
type FlashcardListResponse struct {
	Flashcards []FlashcardResponse `json:"flashcards"`
	Total      int                 `json:"total"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
}

// flashcardToResponse converts a domain flashcard to its API representation.
func flashcardToResponse(card *domain.Flashcard) FlashcardResponse {
	return FlashcardResponse{
		ID:           card.ID,
		Front:        card.Front,
		Back:         card.Back,
		Source:       string(card.Source),
		GenerationID: card.GenerationID,
		CreatedAt:    card.CreatedAt,
		UpdatedAt:    card.UpdatedAt,
	}
}
