package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pawelm/flashgen-api/internal/domain"
	"github.com/pawelm/flashgen-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// fakeResult implements sql.Result for the fake DBTX.
type fakeResult struct {
	rowsAffected int64
}

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rowsAffected, nil }

// fakeDBTX implements store.DBTX for unit tests that only exercise
// ExecContext paths. Query paths need a real database and are covered
// by integration tests.
type fakeDBTX struct {
	execErr      error
	rowsAffected int64
	execCalls    int
	lastQuery    string
	lastArgs     []any
}

func (f *fakeDBTX) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	f.execCalls++
	f.lastQuery = query
	f.lastArgs = args
	if f.execErr != nil {
		return nil, f.execErr
	}
	return fakeResult{rowsAffected: f.rowsAffected}, nil
}

func (f *fakeDBTX) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeDBTX) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeDBTX) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return nil
}

func pgError(code string) error {
	return &pgconn.PgError{Code: code, Message: "constraint violation"}
}

func validCard(t *testing.T, userID uuid.UUID) *domain.Flashcard {
	t.Helper()
	card, err := domain.NewFlashcard(userID, "front", "back", domain.SourceManual, nil)
	require.NoError(t, err)
	return card
}

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	assert.True(t, isUniqueViolation(pgError(uniqueViolationCode)))
	assert.False(t, isUniqueViolation(pgError(foreignKeyViolationCode)))
	assert.False(t, isUniqueViolation(errors.New("plain error")))
	assert.False(t, isUniqueViolation(nil))

	assert.True(t, isForeignKeyViolation(pgError(foreignKeyViolationCode)))
	assert.False(t, isForeignKeyViolation(pgError(uniqueViolationCode)))

	// Classification must see through wrapping.
	wrapped := errors.Join(errors.New("outer"), pgError(uniqueViolationCode))
	assert.True(t, isUniqueViolation(wrapped))
}

func TestUserStoreCreateHashesPassword(t *testing.T) {
	t.Parallel()

	db := &fakeDBTX{}
	s := NewPostgresUserStore(db, nil, bcrypt.MinCost)

	user, err := domain.NewUser("user@example.com", "correct-horse-battery")
	require.NoError(t, err)

	require.NoError(t, s.Create(context.Background(), user))

	assert.Empty(t, user.Password, "plaintext must be cleared after hashing")
	require.NotEmpty(t, user.HashedPassword)
	assert.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(user.HashedPassword), []byte("correct-horse-battery")))
	assert.Equal(t, 1, db.execCalls)
}

func TestUserStoreCreateDuplicateEmail(t *testing.T) {
	t.Parallel()

	db := &fakeDBTX{execErr: pgError(uniqueViolationCode)}
	s := NewPostgresUserStore(db, nil, bcrypt.MinCost)

	user, err := domain.NewUser("user@example.com", "correct-horse-battery")
	require.NoError(t, err)

	err = s.Create(context.Background(), user)
	assert.ErrorIs(t, err, store.ErrEmailExists)
	assert.True(t, store.IsDuplicateError(err))
}

func TestUserStoreCreateInvalidUserSkipsDatabase(t *testing.T) {
	t.Parallel()

	db := &fakeDBTX{}
	s := NewPostgresUserStore(db, nil, bcrypt.MinCost)

	user := &domain.User{ID: uuid.New(), Email: "not-an-email", Password: "correct-horse-battery"}

	err := s.Create(context.Background(), user)
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)
	assert.Zero(t, db.execCalls, "invalid users must never reach the database")
}

func TestFlashcardStoreCreateMultiple(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("empty slice is a no-op", func(t *testing.T) {
		t.Parallel()
		db := &fakeDBTX{}
		s := NewPostgresFlashcardStore(db, nil)

		require.NoError(t, s.CreateMultiple(context.Background(), nil))
		assert.Zero(t, db.execCalls)
	})

	t.Run("one insert per card", func(t *testing.T) {
		t.Parallel()
		db := &fakeDBTX{}
		s := NewPostgresFlashcardStore(db, nil)

		cards := []*domain.Flashcard{validCard(t, userID), validCard(t, userID)}
		require.NoError(t, s.CreateMultiple(context.Background(), cards))
		assert.Equal(t, 2, db.execCalls)
	})

	t.Run("validation failure skips the database", func(t *testing.T) {
		t.Parallel()
		db := &fakeDBTX{}
		s := NewPostgresFlashcardStore(db, nil)

		bad := validCard(t, userID)
		bad.Front = ""
		cards := []*domain.Flashcard{validCard(t, userID), bad}

		err := s.CreateMultiple(context.Background(), cards)
		assert.ErrorIs(t, err, domain.ErrFlashcardFrontEmpty)
		assert.Zero(t, db.execCalls, "all cards are validated before any insert")
	})

	t.Run("foreign key violation maps to invalid entity", func(t *testing.T) {
		t.Parallel()
		db := &fakeDBTX{execErr: pgError(foreignKeyViolationCode)}
		s := NewPostgresFlashcardStore(db, nil)

		err := s.CreateMultiple(context.Background(), []*domain.Flashcard{validCard(t, userID)})
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})
}

func TestFlashcardStoreUpdateNotFound(t *testing.T) {
	t.Parallel()

	db := &fakeDBTX{rowsAffected: 0}
	s := NewPostgresFlashcardStore(db, nil)

	err := s.Update(context.Background(), validCard(t, uuid.New()))
	assert.ErrorIs(t, err, store.ErrFlashcardNotFound)
	assert.True(t, store.IsNotFoundError(err))
}

func TestFlashcardStoreDelete(t *testing.T) {
	t.Parallel()

	t.Run("missing card", func(t *testing.T) {
		t.Parallel()
		db := &fakeDBTX{rowsAffected: 0}
		s := NewPostgresFlashcardStore(db, nil)

		err := s.Delete(context.Background(), uuid.New(), uuid.New())
		assert.ErrorIs(t, err, store.ErrFlashcardNotFound)
	})

	t.Run("existing card", func(t *testing.T) {
		t.Parallel()
		db := &fakeDBTX{rowsAffected: 1}
		s := NewPostgresFlashcardStore(db, nil)

		assert.NoError(t, s.Delete(context.Background(), uuid.New(), uuid.New()))
	})
}

func TestGenerationStoreUpdateStatsNotFound(t *testing.T) {
	t.Parallel()

	db := &fakeDBTX{rowsAffected: 0}
	s := NewPostgresGenerationStore(db, nil)

	err := s.UpdateStats(context.Background(), uuid.New(), 5, 0)
	assert.ErrorIs(t, err, store.ErrGenerationNotFound)
}

func TestGenerationStoreCreateForeignKeyViolation(t *testing.T) {
	t.Parallel()

	db := &fakeDBTX{execErr: pgError(foreignKeyViolationCode)}
	s := NewPostgresGenerationStore(db, nil)

	sourceText := make([]byte, domain.SourceTextMinLen)
	for i := range sourceText {
		sourceText[i] = 'a'
	}
	gen, err := domain.NewGeneration(uuid.New(), "openai/gpt-4o-mini", string(sourceText))
	require.NoError(t, err)

	err = s.Create(context.Background(), gen)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestErrorLogStoreAppendSurfacesFailure(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("connection reset")
	db := &fakeDBTX{execErr: sentinel}
	s := NewPostgresGenerationErrorLogStore(db, nil)

	entry := domain.NewGenerationErrorLog(uuid.New(), nil, "openai/gpt-4o-mini", "network", "boom")
	err := s.Append(context.Background(), entry)
	assert.ErrorIs(t, err, sentinel)
}

func TestConstructorsRejectNilDB(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { NewPostgresUserStore(nil, nil, bcrypt.MinCost) })
	assert.Panics(t, func() { NewPostgresFlashcardStore(nil, nil) })
	assert.Panics(t, func() { NewPostgresGenerationStore(nil, nil) })
	assert.Panics(t, func() { NewPostgresGenerationErrorLogStore(nil, nil) })
}
