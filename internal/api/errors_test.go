package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/pawelm/flashgen-api/internal/domain"
	"github.com/pawelm/flashgen-api/internal/generation"
	"github.com/pawelm/flashgen-api/internal/service"
	serviceauth "github.com/pawelm/flashgen-api/internal/service/auth"
	"github.com/pawelm/flashgen-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil_like_unknown", errors.New("boom"), http.StatusInternalServerError},
		{"expired_token", serviceauth.ErrExpiredToken, http.StatusUnauthorized},
		{"invalid_credentials", serviceauth.ErrInvalidCredentials, http.StatusUnauthorized},
		{"upstream_auth_rejected", generation.ErrAuthorization, http.StatusUnauthorized},
		{"not_owned", service.ErrNotOwned, http.StatusForbidden},
		{"flashcard_not_found", service.ErrFlashcardNotFound, http.StatusNotFound},
		{"generation_not_found", service.ErrGenerationNotFound, http.StatusNotFound},
		{"email_exists", store.ErrEmailExists, http.StatusConflict},
		{"source_text_length", domain.ErrSourceTextLength, http.StatusBadRequest},
		{"domain_field_sentinel", domain.ErrFlashcardFrontEmpty, http.StatusBadRequest},
		{"generation_id_forbidden", domain.ErrGenerationIDForbidden, http.StatusBadRequest},
		{"invalid_entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"upstream_network", generation.ErrNetwork, http.StatusBadGateway},
		{"upstream_validation", generation.ErrValidation, http.StatusBadGateway},
		{
			"wrapped_errors_unwrap",
			fmt.Errorf("saving cards: %w", store.ErrFlashcardNotFound),
			http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Run("internal_details_never_leak", func(t *testing.T) {
		err := errors.New("pq: connection to 10.0.0.5:5432 refused")
		msg := GetSafeErrorMessage(err)
		assert.Equal(t, "An unexpected error occurred", msg)
	})

	t.Run("domain_sentinels_pass_through", func(t *testing.T) {
		msg := GetSafeErrorMessage(domain.ErrFlashcardFrontTooLong)
		assert.Equal(t, domain.ErrFlashcardFrontTooLong.Error(), msg)
	})

	t.Run("validation_error_names_field", func(t *testing.T) {
		err := domain.NewValidationError("front", "is required", domain.ErrValidation)
		msg := GetSafeErrorMessage(err)
		assert.Equal(t, "Invalid front", msg)
	})

	t.Run("nil_error", func(t *testing.T) {
		assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
	})
}

func TestSanitizeValidationError(t *testing.T) {
	validate := validator.New()

	t.Run("reports_field_and_rule_not_value", func(t *testing.T) {
		req := LoginRequest{Email: "not-an-email", Password: "hunter2-but-longer"}
		err := validate.Struct(req)
		assert.Error(t, err)

		msg := SanitizeValidationError(err)
		assert.Contains(t, msg, "Email")
		assert.Contains(t, msg, "invalid email format")
		assert.NotContains(t, msg, "not-an-email")
		assert.NotContains(t, msg, "hunter2")
	})

	t.Run("non_validator_error", func(t *testing.T) {
		assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("boom")))
	})
}
