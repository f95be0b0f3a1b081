package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pawelm/flashgen-api/internal/domain"
)

// FlashcardSortField enumerates columns a flashcard listing may be ordered by.
type FlashcardSortField string

// Allowed sort fields for ListParams.SortBy.
const (
	SortByCreatedAt FlashcardSortField = "created_at"
	SortByUpdatedAt FlashcardSortField = "updated_at"
)

// ListParams controls pagination and filtering for flashcard listings.
// Page and Limit are 1-based; a zero Filter means no source filtering.
type ListParams struct {
	Page   int
	Limit  int
	SortBy FlashcardSortField
	Filter domain.FlashcardSource
}

// FlashcardList is a single page of flashcards together with the total
// number of rows matching the query (across all pages).
type FlashcardList struct {
	Flashcards []*domain.Flashcard
	Total      int
}

// FlashcardStore defines the interface for flashcard data persistence.
type FlashcardStore interface {
	// CreateMultiple saves multiple flashcards to the store atomically.
	// Run it within a transaction via WithTx and store.RunInTransaction;
	// outside a transaction partial inserts are possible on failure.
	//
	// All cards must be valid according to domain validation rules.
	// Returns validation errors if any card data is invalid.
	CreateMultiple(ctx context.Context, cards []*domain.Flashcard) error

	// GetByID retrieves a flashcard by its unique ID, scoped to the owning user.
	// Returns ErrFlashcardNotFound if the card does not exist or belongs to
	// a different user.
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Flashcard, error)

	// List retrieves a page of the user's flashcards ordered by the requested
	// sort field, newest first. Returns an empty page (not an error) when no
	// rows match.
	List(ctx context.Context, userID uuid.UUID, params ListParams) (*FlashcardList, error)

	// Update persists changes to an existing flashcard's content fields.
	// Returns ErrFlashcardNotFound if the card does not exist or belongs to
	// a different user. Returns validation errors if the card data is invalid.
	Update(ctx context.Context, card *domain.Flashcard) error

	// Delete removes a flashcard owned by the given user.
	// Returns ErrFlashcardNotFound if the card does not exist or belongs to
	// a different user.
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// WithTx returns a new FlashcardStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) FlashcardStore
}
