package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pawelm/flashgen-api/internal/domain"
	"github.com/pawelm/flashgen-api/internal/platform/logger"
	"github.com/pawelm/flashgen-api/internal/store"
)

// Listing defaults applied when ListParams fields are zero.
const (
	defaultListPage  = 1
	defaultListLimit = 10
	maxListLimit     = 50
)

// PostgresFlashcardStore implements the store.FlashcardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresFlashcardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresFlashcardStore creates a new PostgreSQL implementation of the
// FlashcardStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresFlashcardStore(db store.DBTX, logger *slog.Logger) *PostgresFlashcardStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresFlashcardStore{
		db:     db,
		logger: logger.With(slog.String("component", "flashcard_store")),
	}
}

// Ensure PostgresFlashcardStore implements store.FlashcardStore interface
var _ store.FlashcardStore = (*PostgresFlashcardStore)(nil)

// CreateMultiple implements store.FlashcardStore.CreateMultiple
// It inserts each card in order; run it inside a transaction (via WithTx and
// store.RunInTransaction) for all-or-nothing semantics.
// Returns store.ErrInvalidEntity if a referenced user or generation does not exist.
func (s *PostgresFlashcardStore) CreateMultiple(ctx context.Context, cards []*domain.Flashcard) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(cards) == 0 {
		return nil
	}

	for _, card := range cards {
		if err := card.Validate(); err != nil {
			log.Warn("flashcard validation failed during create",
				slog.String("error", err.Error()),
				slog.String("flashcard_id", card.ID.String()))
			return err
		}
	}

	query := `
		INSERT INTO flashcards (id, user_id, front, back, source, generation_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	for _, card := range cards {
		_, err := s.db.ExecContext(
			ctx,
			query,
			card.ID,
			card.UserID,
			card.Front,
			card.Back,
			card.Source,
			card.GenerationID,
			card.CreatedAt,
			card.UpdatedAt,
		)

		if err != nil {
			if isForeignKeyViolation(err) {
				log.Warn("foreign key violation during flashcard creation",
					slog.String("error", err.Error()),
					slog.String("flashcard_id", card.ID.String()))
				return fmt.Errorf("%w: referenced user or generation not found",
					store.ErrInvalidEntity)
			}

			log.Error("failed to create flashcard",
				slog.String("error", err.Error()),
				slog.String("flashcard_id", card.ID.String()),
				slog.String("user_id", card.UserID.String()))
			return err
		}
	}

	log.Info("flashcards created successfully",
		slog.Int("count", len(cards)))
	return nil
}

// GetByID implements store.FlashcardStore.GetByID
// Ownership is part of the lookup: a card belonging to another user is
// indistinguishable from a missing one.
// Returns store.ErrFlashcardNotFound if no matching card exists.
func (s *PostgresFlashcardStore) GetByID(
	ctx context.Context,
	userID, id uuid.UUID,
) (*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, front, back, source, generation_id, created_at, updated_at
		FROM flashcards
		WHERE id = $1 AND user_id = $2
	`

	var card domain.Flashcard
	var source string

	err := s.db.QueryRowContext(ctx, query, id, userID).Scan(
		&card.ID,
		&card.UserID,
		&card.Front,
		&card.Back,
		&source,
		&card.GenerationID,
		&card.CreatedAt,
		&card.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("flashcard not found", slog.String("flashcard_id", id.String()))
			return nil, store.ErrFlashcardNotFound
		}
		log.Error("failed to get flashcard by ID",
			slog.String("error", err.Error()),
			slog.String("flashcard_id", id.String()))
		return nil, err
	}

	card.Source = domain.FlashcardSource(source)
	return &card, nil
}

// List implements store.FlashcardStore.List
// It returns one page of the user's flashcards plus the total row count
// across all pages. Unset params get defaults; the sort column is mapped
// through an allow-list, never interpolated from input.
func (s *PostgresFlashcardStore) List(
	ctx context.Context,
	userID uuid.UUID,
	params store.ListParams,
) (*store.FlashcardList, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	page := params.Page
	if page < 1 {
		page = defaultListPage
	}
	limit := params.Limit
	if limit < 1 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := (page - 1) * limit

	sortColumn := "created_at"
	if params.SortBy == store.SortByUpdatedAt {
		sortColumn = "updated_at"
	}

	args := []any{userID}
	filterClause := ""
	if params.Filter != "" {
		if !domain.IsValidFlashcardSource(params.Filter) {
			return nil, fmt.Errorf("%w: unknown source filter %q",
				store.ErrInvalidEntity, params.Filter)
		}
		filterClause = " AND source = $2"
		args = append(args, string(params.Filter))
	}

	countQuery := "SELECT COUNT(*) FROM flashcards WHERE user_id = $1" + filterClause
	var total int
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Error("failed to count flashcards",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, front, back, source, generation_id, created_at, updated_at
		FROM flashcards
		WHERE user_id = $1%s
		ORDER BY %s DESC
		LIMIT $%d OFFSET $%d
	`, filterClause, sortColumn, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list flashcards",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	cards := make([]*domain.Flashcard, 0, limit)
	for rows.Next() {
		var card domain.Flashcard
		var source string
		if err := rows.Scan(
			&card.ID,
			&card.UserID,
			&card.Front,
			&card.Back,
			&source,
			&card.GenerationID,
			&card.CreatedAt,
			&card.UpdatedAt,
		); err != nil {
			log.Error("failed to scan flashcard row",
				slog.String("error", err.Error()))
			return nil, err
		}
		card.Source = domain.FlashcardSource(source)
		cards = append(cards, &card)
	}

	if err := rows.Err(); err != nil {
		log.Error("error iterating flashcard rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	return &store.FlashcardList{Flashcards: cards, Total: total}, nil
}

// Update implements store.FlashcardStore.Update
// It persists the card's content fields, scoped to the owning user.
// Returns store.ErrFlashcardNotFound if no matching card exists.
func (s *PostgresFlashcardStore) Update(ctx context.Context, card *domain.Flashcard) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("flashcard validation failed during update",
			slog.String("error", err.Error()),
			slog.String("flashcard_id", card.ID.String()))
		return err
	}

	query := `
		UPDATE flashcards
		SET front = $1, back = $2, source = $3, generation_id = $4, updated_at = $5
		WHERE id = $6 AND user_id = $7
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		card.Front,
		card.Back,
		card.Source,
		card.GenerationID,
		card.UpdatedAt,
		card.ID,
		card.UserID,
	)

	if err != nil {
		log.Error("failed to update flashcard",
			slog.String("error", err.Error()),
			slog.String("flashcard_id", card.ID.String()))
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected after update",
			slog.String("error", err.Error()),
			slog.String("flashcard_id", card.ID.String()))
		return err
	}

	if affected == 0 {
		log.Debug("flashcard not found during update",
			slog.String("flashcard_id", card.ID.String()))
		return store.ErrFlashcardNotFound
	}

	log.Info("flashcard updated successfully",
		slog.String("flashcard_id", card.ID.String()))
	return nil
}

// Delete implements store.FlashcardStore.Delete
// It removes a flashcard owned by the given user.
// Returns store.ErrFlashcardNotFound if no matching card exists.
func (s *PostgresFlashcardStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM flashcards WHERE id = $1 AND user_id = $2`
	result, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		log.Error("failed to delete flashcard",
			slog.String("error", err.Error()),
			slog.String("flashcard_id", id.String()))
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected after delete",
			slog.String("error", err.Error()),
			slog.String("flashcard_id", id.String()))
		return err
	}

	if affected == 0 {
		log.Debug("flashcard not found during delete",
			slog.String("flashcard_id", id.String()))
		return store.ErrFlashcardNotFound
	}

	log.Info("flashcard deleted successfully",
		slog.String("flashcard_id", id.String()))
	return nil
}

// WithTx implements store.FlashcardStore.WithTx
// It returns a new FlashcardStore instance that uses the provided transaction.
func (s *PostgresFlashcardStore) WithTx(tx *sql.Tx) store.FlashcardStore {
	return &PostgresFlashcardStore{
		db:     tx,
		logger: s.logger,
	}
}
