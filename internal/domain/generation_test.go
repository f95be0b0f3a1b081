package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func validSourceText() string {
	return strings.Repeat("a", SourceTextMinLen)
}

func TestValidateSourceText(t *testing.T) {
	t.Parallel() // Enable parallel execution
	tests := []struct {
		name    string
		length  int
		wantErr bool
	}{
		{"below minimum", SourceTextMinLen - 1, true},
		{"at minimum", SourceTextMinLen, false},
		{"at maximum", SourceTextMaxLen, false},
		{"above maximum", SourceTextMaxLen + 1, true},
		{"empty", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSourceText(strings.Repeat("x", tt.length))
			if tt.wantErr && !errors.Is(err, ErrSourceTextLength) {
				t.Errorf("Expected ErrSourceTextLength, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestSourceTextFingerprint(t *testing.T) {
	t.Parallel() // Enable parallel execution

	// Known MD5 digest; the fingerprint is an identity tag, so the exact
	// value matters for dedup lookups.
	got := SourceTextFingerprint("hello")
	want := "5d41402abc4b2a76b9719d911017c592"
	if got != want {
		t.Errorf("Expected fingerprint %s, got %s", want, got)
	}

	if SourceTextFingerprint("a") == SourceTextFingerprint("b") {
		t.Error("Expected different inputs to produce different fingerprints")
	}
}

func TestNewGeneration(t *testing.T) {
	t.Parallel() // Enable parallel execution
	userID := uuid.New()
	text := validSourceText()

	gen, err := NewGeneration(userID, "openai/gpt-4o-mini", text)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if gen.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if gen.UserID != userID {
		t.Errorf("Expected user ID %s, got %s", userID, gen.UserID)
	}

	if gen.SourceTextHash != SourceTextFingerprint(text) {
		t.Errorf("Expected hash %s, got %s", SourceTextFingerprint(text), gen.SourceTextHash)
	}

	if gen.SourceTextLength != len(text) {
		t.Errorf("Expected length %d, got %d", len(text), gen.SourceTextLength)
	}

	if gen.GeneratedCount != 0 || gen.AcceptedUneditedCount != 0 || gen.AcceptedEditedCount != 0 {
		t.Error("Expected zeroed counters on a new generation")
	}

	// Test source text out of bounds
	_, err = NewGeneration(userID, "openai/gpt-4o-mini", "too short")
	if !errors.Is(err, ErrSourceTextLength) {
		t.Errorf("Expected error %v, got %v", ErrSourceTextLength, err)
	}

	// Test missing user
	_, err = NewGeneration(uuid.Nil, "openai/gpt-4o-mini", text)
	if !errors.Is(err, ErrGenerationUserIDEmpty) {
		t.Errorf("Expected error %v, got %v", ErrGenerationUserIDEmpty, err)
	}

	// Test missing model
	_, err = NewGeneration(userID, "", text)
	if !errors.Is(err, ErrGenerationModelEmpty) {
		t.Errorf("Expected error %v, got %v", ErrGenerationModelEmpty, err)
	}
}

func TestGenerationRecordResult(t *testing.T) {
	t.Parallel() // Enable parallel execution
	gen, err := NewGeneration(uuid.New(), "openai/gpt-4o-mini", validSourceText())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := gen.RecordResult(5, 1500*time.Millisecond); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if gen.GeneratedCount != 5 {
		t.Errorf("Expected generated count 5, got %d", gen.GeneratedCount)
	}

	if gen.Duration != 1500*time.Millisecond {
		t.Errorf("Expected duration 1.5s, got %v", gen.Duration)
	}

	if err := gen.RecordResult(-1, 0); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected validation error for negative count, got %v", err)
	}
}

func TestNewGenerationErrorLog(t *testing.T) {
	t.Parallel() // Enable parallel execution
	userID := uuid.New()
	generationID := uuid.New()

	entry := NewGenerationErrorLog(userID, &generationID, "openai/gpt-4o-mini", "NETWORK_ERROR", "connection refused")

	if entry.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if entry.GenerationID == nil || *entry.GenerationID != generationID {
		t.Errorf("Expected generation ID %s, got %v", generationID, entry.GenerationID)
	}

	if entry.ErrorCode != "NETWORK_ERROR" {
		t.Errorf("Expected error code NETWORK_ERROR, got %s", entry.ErrorCode)
	}

	// Failures before the generation row exists carry a nil reference.
	orphan := NewGenerationErrorLog(userID, nil, "openai/gpt-4o-mini", "UNEXPECTED_ERROR", "boom")
	if orphan.GenerationID != nil {
		t.Errorf("Expected nil generation ID, got %v", orphan.GenerationID)
	}
}
