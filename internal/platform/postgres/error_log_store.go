package postgres

import (
	"context"
	"log/slog"

	"github.com/pawelm/flashgen-api/internal/domain"
	"github.com/pawelm/flashgen-api/internal/platform/logger"
	"github.com/pawelm/flashgen-api/internal/store"
)

// PostgresGenerationErrorLogStore implements the store.GenerationErrorLogStore
// interface using a PostgreSQL database as the storage backend. The table is
// append-only; callers treat writes as best-effort.
type PostgresGenerationErrorLogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresGenerationErrorLogStore creates a new PostgreSQL implementation
// of the GenerationErrorLogStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresGenerationErrorLogStore(
	db store.DBTX,
	logger *slog.Logger,
) *PostgresGenerationErrorLogStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresGenerationErrorLogStore{
		db:     db,
		logger: logger.With(slog.String("component", "generation_error_log_store")),
	}
}

// Ensure PostgresGenerationErrorLogStore implements store.GenerationErrorLogStore interface
var _ store.GenerationErrorLogStore = (*PostgresGenerationErrorLogStore)(nil)

// Append implements store.GenerationErrorLogStore.Append
// It writes one error-log entry. The caller decides what to do with a
// failure here; typically it is logged and swallowed so it cannot mask
// the error being recorded.
func (s *PostgresGenerationErrorLogStore) Append(
	ctx context.Context,
	entry *domain.GenerationErrorLog,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO generation_error_logs (
			id, user_id, generation_id, model, error_code, error_message, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.UserID,
		entry.GenerationID,
		entry.Model,
		entry.ErrorCode,
		entry.ErrorMessage,
		entry.CreatedAt,
	)

	if err != nil {
		log.Error("failed to append generation error log",
			slog.String("error", err.Error()),
			slog.String("user_id", entry.UserID.String()),
			slog.String("error_code", entry.ErrorCode))
		return err
	}

	log.Debug("generation error logged",
		slog.String("user_id", entry.UserID.String()),
		slog.String("error_code", entry.ErrorCode))
	return nil
}
