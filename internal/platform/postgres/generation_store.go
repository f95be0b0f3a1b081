package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pawelm/flashgen-api/internal/domain"
	"github.com/pawelm/flashgen-api/internal/platform/logger"
	"github.com/pawelm/flashgen-api/internal/store"
)

// PostgresGenerationStore implements the store.GenerationStore interface
// using a PostgreSQL database as the storage backend.
type PostgresGenerationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresGenerationStore creates a new PostgreSQL implementation of the
// GenerationStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresGenerationStore(db store.DBTX, logger *slog.Logger) *PostgresGenerationStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresGenerationStore{
		db:     db,
		logger: logger.With(slog.String("component", "generation_store")),
	}
}

// Ensure PostgresGenerationStore implements store.GenerationStore interface
var _ store.GenerationStore = (*PostgresGenerationStore)(nil)

// Create implements store.GenerationStore.Create
// It saves a new generation audit record to the database.
// Returns store.ErrInvalidEntity if the user ID doesn't exist (foreign key violation).
func (s *PostgresGenerationStore) Create(ctx context.Context, generation *domain.Generation) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := generation.Validate(); err != nil {
		log.Warn("generation validation failed during create",
			slog.String("error", err.Error()),
			slog.String("generation_id", generation.ID.String()))
		return err
	}

	query := `
		INSERT INTO generations (
			id, user_id, model, source_text_hash, source_text_length,
			generated_count, accepted_unedited_count, accepted_edited_count,
			generation_duration_ms, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		generation.ID,
		generation.UserID,
		generation.Model,
		generation.SourceTextHash,
		generation.SourceTextLength,
		generation.GeneratedCount,
		generation.AcceptedUneditedCount,
		generation.AcceptedEditedCount,
		generation.Duration.Milliseconds(),
		generation.CreatedAt,
		generation.UpdatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			log.Warn("foreign key violation during generation creation",
				slog.String("error", err.Error()),
				slog.String("generation_id", generation.ID.String()),
				slog.String("user_id", generation.UserID.String()))
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, generation.UserID)
		}

		log.Error("failed to create generation",
			slog.String("error", err.Error()),
			slog.String("generation_id", generation.ID.String()),
			slog.String("user_id", generation.UserID.String()))
		return err
	}

	log.Info("generation created successfully",
		slog.String("generation_id", generation.ID.String()),
		slog.String("user_id", generation.UserID.String()))
	return nil
}

// GetByID implements store.GenerationStore.GetByID
// It retrieves a generation by its unique ID.
// Returns store.ErrGenerationNotFound if the generation does not exist.
func (s *PostgresGenerationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Generation, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, model, source_text_hash, source_text_length,
			generated_count, accepted_unedited_count, accepted_edited_count,
			generation_duration_ms, created_at, updated_at
		FROM generations
		WHERE id = $1
	`

	generation, err := scanGeneration(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("generation not found", slog.String("generation_id", id.String()))
			return nil, store.ErrGenerationNotFound
		}
		log.Error("failed to get generation by ID",
			slog.String("error", err.Error()),
			slog.String("generation_id", id.String()))
		return nil, err
	}

	return generation, nil
}

// UpdateStats implements store.GenerationStore.UpdateStats
// It records the outcome of the completion call on an existing generation row.
// Returns store.ErrGenerationNotFound if the generation does not exist.
func (s *PostgresGenerationStore) UpdateStats(
	ctx context.Context,
	id uuid.UUID,
	generatedCount int,
	duration time.Duration,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE generations
		SET generated_count = $1, generation_duration_ms = $2, updated_at = $3
		WHERE id = $4
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		generatedCount,
		duration.Milliseconds(),
		time.Now().UTC(),
		id,
	)

	if err != nil {
		log.Error("failed to update generation stats",
			slog.String("error", err.Error()),
			slog.String("generation_id", id.String()))
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected after stats update",
			slog.String("error", err.Error()),
			slog.String("generation_id", id.String()))
		return err
	}

	if affected == 0 {
		log.Debug("generation not found during stats update",
			slog.String("generation_id", id.String()))
		return store.ErrGenerationNotFound
	}

	log.Info("generation stats updated",
		slog.String("generation_id", id.String()),
		slog.Int("generated_count", generatedCount),
		slog.Int64("duration_ms", duration.Milliseconds()))
	return nil
}

// ListByUser implements store.GenerationStore.ListByUser
// It retrieves the user's generations, newest first.
func (s *PostgresGenerationStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Generation, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit < 1 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, user_id, model, source_text_hash, source_text_length,
			generated_count, accepted_unedited_count, accepted_edited_count,
			generation_duration_ms, created_at, updated_at
		FROM generations
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		log.Error("failed to list generations",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	generations := make([]*domain.Generation, 0, limit)
	for rows.Next() {
		generation, err := scanGeneration(rows)
		if err != nil {
			log.Error("failed to scan generation row",
				slog.String("error", err.Error()))
			return nil, err
		}
		generations = append(generations, generation)
	}

	if err := rows.Err(); err != nil {
		log.Error("error iterating generation rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	return generations, nil
}

// WithTx implements store.GenerationStore.WithTx
// It returns a new GenerationStore instance that uses the provided transaction.
func (s *PostgresGenerationStore) WithTx(tx *sql.Tx) store.GenerationStore {
	return &PostgresGenerationStore{
		db:     tx,
		logger: s.logger,
	}
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanGeneration reads one generation row, converting the stored
// millisecond duration back to time.Duration.
func scanGeneration(row rowScanner) (*domain.Generation, error) {
	var generation domain.Generation
	var durationMs int64

	err := row.Scan(
		&generation.ID,
		&generation.UserID,
		&generation.Model,
		&generation.SourceTextHash,
		&generation.SourceTextLength,
		&generation.GeneratedCount,
		&generation.AcceptedUneditedCount,
		&generation.AcceptedEditedCount,
		&durationMs,
		&generation.CreatedAt,
		&generation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	generation.Duration = time.Duration(durationMs) * time.Millisecond
	return &generation, nil
}
