package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pawelm/flashgen-api/internal/domain"
	"github.com/pawelm/flashgen-api/internal/generation"
	"github.com/pawelm/flashgen-api/internal/store"
)

// mockGenerator implements generation.Generator for service tests.
type mockGenerator struct {
	suggestions []domain.Suggestion
	err         error
	calls       int
	lastSource  string
}

var _ generation.Generator = (*mockGenerator)(nil)

func (m *mockGenerator) GenerateFlashcards(
	ctx context.Context,
	sourceText string,
) ([]domain.Suggestion, error) {
	m.calls++
	m.lastSource = sourceText
	if m.err != nil {
		return nil, m.err
	}
	return m.suggestions, nil
}

func (m *mockGenerator) Model() string {
	return "openai/gpt-4o-mini"
}

// mockGenerationStore implements store.GenerationStore in memory.
type mockGenerationStore struct {
	createErr      error
	updateStatsErr error
	getErr         error
	created        []*domain.Generation
	statsUpdates   int
	generations    map[uuid.UUID]*domain.Generation
}

var _ store.GenerationStore = (*mockGenerationStore)(nil)

func newMockGenerationStore() *mockGenerationStore {
	return &mockGenerationStore{generations: make(map[uuid.UUID]*domain.Generation)}
}

func (m *mockGenerationStore) Create(ctx context.Context, gen *domain.Generation) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, gen)
	m.generations[gen.ID] = gen
	return nil
}

func (m *mockGenerationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Generation, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	gen, ok := m.generations[id]
	if !ok {
		return nil, store.ErrGenerationNotFound
	}
	return gen, nil
}

func (m *mockGenerationStore) UpdateStats(
	ctx context.Context,
	id uuid.UUID,
	generatedCount int,
	duration time.Duration,
) error {
	if m.updateStatsErr != nil {
		return m.updateStatsErr
	}
	m.statsUpdates++
	if gen, ok := m.generations[id]; ok {
		gen.GeneratedCount = generatedCount
		gen.Duration = duration
	}
	return nil
}

func (m *mockGenerationStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Generation, error) {
	var out []*domain.Generation
	for _, gen := range m.generations {
		if gen.UserID == userID {
			out = append(out, gen)
		}
	}
	return out, nil
}

func (m *mockGenerationStore) WithTx(tx *sql.Tx) store.GenerationStore {
	return m
}

// mockErrorLogStore implements store.GenerationErrorLogStore in memory.
type mockErrorLogStore struct {
	appendErr error
	entries   []*domain.GenerationErrorLog
}

var _ store.GenerationErrorLogStore = (*mockErrorLogStore)(nil)

func (m *mockErrorLogStore) Append(ctx context.Context, entry *domain.GenerationErrorLog) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

// mockFlashcardStore implements store.FlashcardStore in memory.
type mockFlashcardStore struct {
	createErr error
	updateErr error
	deleteErr error
	listErr   error
	cards     map[uuid.UUID]*domain.Flashcard
}

var _ store.FlashcardStore = (*mockFlashcardStore)(nil)

func newMockFlashcardStore() *mockFlashcardStore {
	return &mockFlashcardStore{cards: make(map[uuid.UUID]*domain.Flashcard)}
}

func (m *mockFlashcardStore) CreateMultiple(ctx context.Context, cards []*domain.Flashcard) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, card := range cards {
		m.cards[card.ID] = card
	}
	return nil
}

func (m *mockFlashcardStore) GetByID(
	ctx context.Context,
	userID, id uuid.UUID,
) (*domain.Flashcard, error) {
	card, ok := m.cards[id]
	if !ok || card.UserID != userID {
		return nil, store.ErrFlashcardNotFound
	}
	copied := *card
	return &copied, nil
}

func (m *mockFlashcardStore) List(
	ctx context.Context,
	userID uuid.UUID,
	params store.ListParams,
) (*store.FlashcardList, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*domain.Flashcard
	for _, card := range m.cards {
		if card.UserID == userID {
			out = append(out, card)
		}
	}
	return &store.FlashcardList{Flashcards: out, Total: len(out)}, nil
}

func (m *mockFlashcardStore) Update(ctx context.Context, card *domain.Flashcard) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	existing, ok := m.cards[card.ID]
	if !ok || existing.UserID != card.UserID {
		return store.ErrFlashcardNotFound
	}
	copied := *card
	m.cards[card.ID] = &copied
	return nil
}

func (m *mockFlashcardStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	card, ok := m.cards[id]
	if !ok || card.UserID != userID {
		return store.ErrFlashcardNotFound
	}
	delete(m.cards, id)
	return nil
}

func (m *mockFlashcardStore) WithTx(tx *sql.Tx) store.FlashcardStore {
	return m
}
