package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pawelm/flashgen-api/internal/domain"
)

// GenerationStore defines the interface for generation audit-record persistence.
type GenerationStore interface {
	// Create saves a new generation record to the store.
	// The record must be written before the external completion call is made
	// so that downstream failures remain attributable to it.
	// Returns validation errors from the domain Generation if data is invalid.
	Create(ctx context.Context, generation *domain.Generation) error

	// GetByID retrieves a generation by its unique ID.
	// Returns ErrGenerationNotFound if the generation does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Generation, error)

	// UpdateStats records the outcome of the completion call on an existing
	// generation row: the number of suggestions produced and the wall-clock
	// duration of the call.
	// Returns ErrGenerationNotFound if the generation does not exist.
	UpdateStats(ctx context.Context, id uuid.UUID, generatedCount int, duration time.Duration) error

	// ListByUser retrieves the user's generations, newest first.
	// Returns an empty slice if the user has no generations.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Generation, error)

	// WithTx returns a new GenerationStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) GenerationStore
}

// GenerationErrorLogStore defines the interface for the write-only
// generation error audit trail.
type GenerationErrorLogStore interface {
	// Append writes an error-log entry. Callers treat this as best-effort:
	// an append failure must never mask the error being logged.
	Append(ctx context.Context, entry *domain.GenerationErrorLog) error
}
