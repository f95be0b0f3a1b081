package review

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/pawelm/flashgen-api/internal/domain"
)

// Mode selects how the user is authoring flashcards.
type Mode string

const (
	// ModeAI reviews suggestions produced by a generation batch.
	ModeAI Mode = "ai"

	// ModeManual authors flashcards by hand; no suggestion batch exists.
	ModeManual Mode = "manual"
)

// Batch is the result of starting a generation: the audit row ID plus the
// suggestions to review.
type Batch struct {
	GenerationID uuid.UUID
	Suggestions  []domain.Suggestion
}

// Generator starts a flashcard generation batch from source text.
type Generator interface {
	StartGeneration(ctx context.Context, sourceText string) (*Batch, error)
}

// CardSubmission is one flashcard to persist when a suggestion is accepted.
type CardSubmission struct {
	Front        string
	Back         string
	Source       domain.FlashcardSource
	GenerationID *uuid.UUID
}

// CardSaver persists accepted suggestions.
type CardSaver interface {
	SaveCards(ctx context.Context, cards []CardSubmission) error
}

// Snapshot is a point-in-time copy of the review state, safe to read after
// the state has moved on.
type Snapshot struct {
	Mode            Mode
	IsGenerating    bool
	GenerationError string
	Suggestions     []domain.Suggestion
	GenerationID    uuid.UUID
	EditingID       int
}

// State owns the in-memory suggestion batch for its lifetime. All
// transitions are serialized by a mutex; generation and persistence calls
// run outside the lock so other transitions can interleave, and each
// transition targets a suggestion ID so a missing ID is a no-op rather
// than a corruption hazard.
type State struct {
	mu sync.Mutex

	mode            Mode
	isGenerating    bool
	generationError string
	suggestions     []domain.Suggestion
	generationID    uuid.UUID
	editingID       int

	generator Generator
	saver     CardSaver
	logger    *slog.Logger
}

// NewState creates a review State with the given collaborators.
func NewState(generator Generator, saver CardSaver, logger *slog.Logger) (*State, error) {
	if generator == nil {
		return nil, errors.New("generator cannot be nil")
	}
	if saver == nil {
		return nil, errors.New("card saver cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &State{
		mode:      ModeAI,
		generator: generator,
		saver:     saver,
		logger:    logger.With(slog.String("component", "review_state")),
	}, nil
}

// Snapshot returns a copy of the current state. The suggestion slice is
// copied so callers can render it without racing later transitions.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	suggestions := make([]domain.Suggestion, len(s.suggestions))
	copy(suggestions, s.suggestions)

	return Snapshot{
		Mode:            s.mode,
		IsGenerating:    s.isGenerating,
		GenerationError: s.generationError,
		Suggestions:     suggestions,
		GenerationID:    s.generationID,
		EditingID:       s.editingID,
	}
}

// SetMode switches the authoring mode. A mode switch is a hard reset: the
// suggestion batch, generation ID, generation error and editing selection
// are all cleared, even when switching to the current mode.
func (s *State) SetMode(mode Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mode = mode
	s.suggestions = nil
	s.generationID = uuid.Nil
	s.generationError = ""
	s.editingID = 0
}

// Generate starts a generation batch for the given source text and replaces
// the working set with its suggestions. Failures are recorded in
// GenerationError rather than returned; callers watch the snapshot.
// Concurrent calls are not deduplicated here: callers should disable the
// trigger while IsGenerating is set.
func (s *State) Generate(ctx context.Context, sourceText string) {
	s.mu.Lock()
	s.isGenerating = true
	s.generationError = ""
	s.mu.Unlock()

	batch, err := s.generator.StartGeneration(ctx, sourceText)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.isGenerating = false

	if err != nil {
		s.logger.Warn("generation failed", slog.String("error", err.Error()))
		s.generationError = err.Error()
		return
	}

	s.suggestions = batch.Suggestions
	s.generationID = batch.GenerationID
}

// Accept persists the suggestion with the given ID unchanged. The
// suggestion is removed from the working set before the persistence call
// (optimistic); on failure it is re-appended with the error message
// attached. An absent ID is a no-op.
func (s *State) Accept(ctx context.Context, id int) {
	s.persistSuggestion(ctx, id, nil)
}

// SaveEdit persists the suggestion with the given ID using the edited
// front and back. The persisted card is marked ai_edited. Behaves like
// Accept otherwise.
func (s *State) SaveEdit(ctx context.Context, id int, front, back string) {
	s.persistSuggestion(ctx, id, &editedContent{front: front, back: back})
}

type editedContent struct {
	front string
	back  string
}

func (s *State) persistSuggestion(ctx context.Context, id int, edit *editedContent) {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}

	original := s.suggestions[idx]
	s.suggestions = append(s.suggestions[:idx], s.suggestions[idx+1:]...)
	s.editingID = 0

	generationID := s.generationID
	s.mu.Unlock()

	card := CardSubmission{
		Front:  original.Front,
		Back:   original.Back,
		Source: domain.SourceAIFull,
	}
	if edit != nil {
		card.Front = edit.front
		card.Back = edit.back
		card.Source = domain.SourceAIEdited
	}
	if generationID != uuid.Nil {
		card.GenerationID = &generationID
	}

	err := s.saver.SaveCards(ctx, []CardSubmission{card})
	if err == nil {
		return
	}

	s.logger.Warn("failed to persist accepted suggestion",
		slog.Int("suggestion_id", id),
		slog.String("error", err.Error()))

	// Re-read current state before re-inserting: the batch may have been
	// reset by an interleaved transition, in which case the restore is
	// dropped along with the rest of the batch.
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generationID != generationID {
		return
	}
	original.Error = err.Error()
	s.suggestions = append(s.suggestions, original)
}

// Reject discards the suggestion with the given ID without a persistence
// call. Rejecting an absent ID is a no-op, so repeated clicks are safe.
func (s *State) Reject(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return
	}
	s.suggestions = append(s.suggestions[:idx], s.suggestions[idx+1:]...)
	if s.editingID == id {
		s.editingID = 0
	}
}

// RejectAll discards the whole suggestion batch and its generation ID in
// one step. Already-persisted flashcards are unaffected.
func (s *State) RejectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.suggestions = nil
	s.generationID = uuid.Nil
}

// Edit marks the suggestion with the given ID as being edited. ID 0 is the
// "no selection" sentinel and clears the selection.
func (s *State) Edit(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.editingID = id
}

// ClearError clears the generation error only; the rest of the state is
// untouched.
func (s *State) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generationError = ""
}

// AcceptAll accepts every current suggestion in batch order, strictly
// sequentially: each persistence call completes before the next starts, so
// a failure at item k means items before it are persisted and items after
// it have not been touched yet. A failed item is restored with its error
// and later items continue to process; failed items need manual
// re-acceptance.
func (s *State) AcceptAll(ctx context.Context) {
	s.mu.Lock()
	ids := make([]int, len(s.suggestions))
	for i, suggestion := range s.suggestions {
		ids[i] = suggestion.ID
	}
	s.mu.Unlock()

	for _, id := range ids {
		s.Accept(ctx, id)
	}
}

// indexOf returns the position of the suggestion with the given ID, or -1.
// Callers must hold the lock.
func (s *State) indexOf(id int) int {
	for i, suggestion := range s.suggestions {
		if suggestion.ID == id {
			return i
		}
	}
	return -1
}
