package domain

import (
	"crypto/md5" //nolint:gosec // identity fingerprint only, not a security control
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Source text length bounds enforced before any external completion call.
const (
	SourceTextMinLen = 1000
	SourceTextMaxLen = 10000
)

// Generation-specific validation errors.
var (
	// ErrGenerationIDEmpty is returned when a generation ID is empty or nil.
	ErrGenerationIDEmpty = errors.New("generation ID cannot be empty")

	// ErrGenerationUserIDEmpty is returned when a generation's user ID is empty or nil.
	ErrGenerationUserIDEmpty = errors.New("generation user ID cannot be empty")

	// ErrGenerationModelEmpty is returned when the model name is empty.
	ErrGenerationModelEmpty = errors.New("generation model cannot be empty")

	// ErrGenerationHashEmpty is returned when the source text hash is empty.
	ErrGenerationHashEmpty = errors.New("generation source text hash cannot be empty")

	// ErrSourceTextLength is returned when source text is outside the allowed bounds.
	ErrSourceTextLength = fmt.Errorf(
		"source text must be between %d and %d characters",
		SourceTextMinLen, SourceTextMaxLen,
	)
)

// Generation is the persisted audit record for one invocation of the AI
// flashcard-authoring flow. The row is written before the external completion
// call executes so that failures remain attributable, then updated with the
// actual counts and duration once the call completes.
type Generation struct {
	ID                    uuid.UUID     `json:"id"`
	UserID                uuid.UUID     `json:"user_id"`
	Model                 string        `json:"model"`
	SourceTextHash        string        `json:"source_text_hash"`
	SourceTextLength      int           `json:"source_text_length"`
	GeneratedCount        int           `json:"generated_count"`
	AcceptedUneditedCount int           `json:"accepted_unedited_count"`
	AcceptedEditedCount   int           `json:"accepted_edited_count"`
	Duration              time.Duration `json:"generation_duration"`
	CreatedAt             time.Time     `json:"created_at"`
	UpdatedAt             time.Time     `json:"updated_at"`
}

// ValidateSourceText checks the length bounds for generation input.
// Returns ErrSourceTextLength if the text is too short or too long.
func ValidateSourceText(text string) error {
	if len(text) < SourceTextMinLen || len(text) > SourceTextMaxLen {
		return ErrSourceTextLength
	}
	return nil
}

// SourceTextFingerprint computes the MD5 hex digest of the source text.
// The digest serves as an identity tag for dedup/audit, not as a
// cryptographic guarantee.
func SourceTextFingerprint(text string) string {
	sum := md5.Sum([]byte(text)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// NewGeneration creates the audit record for a generation request with
// zeroed counters. Returns an error if validation fails.
func NewGeneration(userID uuid.UUID, model, sourceText string) (*Generation, error) {
	if err := ValidateSourceText(sourceText); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	gen := &Generation{
		ID:               uuid.New(),
		UserID:           userID,
		Model:            model,
		SourceTextHash:   SourceTextFingerprint(sourceText),
		SourceTextLength: len(sourceText),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := gen.Validate(); err != nil {
		return nil, err
	}

	return gen, nil
}

// Validate checks if the Generation has valid data.
// Returns an error if any field fails validation.
func (g *Generation) Validate() error {
	if g.ID == uuid.Nil {
		return ErrGenerationIDEmpty
	}

	if g.UserID == uuid.Nil {
		return ErrGenerationUserIDEmpty
	}

	if g.Model == "" {
		return ErrGenerationModelEmpty
	}

	if g.SourceTextHash == "" {
		return ErrGenerationHashEmpty
	}

	if g.SourceTextLength < SourceTextMinLen || g.SourceTextLength > SourceTextMaxLen {
		return ErrSourceTextLength
	}

	if g.GeneratedCount < 0 || g.AcceptedUneditedCount < 0 || g.AcceptedEditedCount < 0 {
		return fmt.Errorf("%w: generation counters cannot be negative", ErrValidation)
	}

	return nil
}

// RecordResult updates the counters after the completion call returns,
// bumping the UpdatedAt timestamp.
func (g *Generation) RecordResult(generatedCount int, duration time.Duration) error {
	if generatedCount < 0 {
		return fmt.Errorf("%w: generated count cannot be negative", ErrValidation)
	}

	g.GeneratedCount = generatedCount
	g.Duration = duration
	g.UpdatedAt = time.Now().UTC()
	return nil
}

// GenerationErrorLog is a write-only audit entry appended whenever the
// generation pipeline fails. GenerationID is nil when the failure happened
// before the generation row was created.
type GenerationErrorLog struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	GenerationID *uuid.UUID `json:"generation_id,omitempty"`
	Model        string     `json:"model"`
	ErrorCode    string     `json:"error_code"`
	ErrorMessage string     `json:"error_message"`
	CreatedAt    time.Time  `json:"created_at"`
}

// NewGenerationErrorLog creates an error-log entry. generationID may be nil
// when the generation row was never created.
func NewGenerationErrorLog(
	userID uuid.UUID,
	generationID *uuid.UUID,
	model, errorCode, errorMessage string,
) *GenerationErrorLog {
	return &GenerationErrorLog{
		ID:           uuid.New(),
		UserID:       userID,
		GenerationID: generationID,
		Model:        model,
		ErrorCode:    errorCode,
		ErrorMessage: errorMessage,
		CreatedAt:    time.Now().UTC(),
	}
}
