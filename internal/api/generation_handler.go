package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/pawelm/flashgen-api/internal/api/shared"
	"github.com/pawelm/flashgen-api/internal/domain"
	"github.com/pawelm/flashgen-api/internal/platform/logger"
	"github.com/pawelm/flashgen-api/internal/service"
)

// GenerationHandler handles flashcard generation HTTP requests.
type GenerationHandler struct {
	generationService service.GenerationService
	validator         *validator.Validate
	logger            *slog.Logger
}

// NewGenerationHandler creates a new GenerationHandler.
func NewGenerationHandler(
	generationService service.GenerationService,
	logger *slog.Logger,
) *GenerationHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for GenerationHandler")
	}

	return &GenerationHandler{
		generationService: generationService,
		validator:         validator.New(),
		logger:            logger.With(slog.String("component", "generation_handler")),
	}
}

// GenerationResponse represents one generation record in API responses.
type GenerationResponse struct {
	ID                    string    `json:"id"`
	Model                 string    `json:"model"`
	SourceTextHash        string    `json:"source_text_hash"`
	SourceTextLength      int       `json:"source_text_length"`
	GeneratedCount        int       `json:"generated_count"`
	AcceptedUneditedCount int       `json:"accepted_unedited_count"`
	AcceptedEditedCount   int       `json:"accepted_edited_count"`
	DurationMillis        int64     `json:"duration_ms"`
	CreatedAt             time.Time `json:"created_at"`
}

// generationToResponse converts a domain.Generation to a GenerationResponse.
func generationToResponse(gen *domain.Generation) GenerationResponse {
	return GenerationResponse{
		ID:                    gen.ID.String(),
		Model:                 gen.Model,
		SourceTextHash:        gen.SourceTextHash,
		SourceTextLength:      gen.SourceTextLength,
		GeneratedCount:        gen.GeneratedCount,
		AcceptedUneditedCount: gen.AcceptedUneditedCount,
		AcceptedEditedCount:   gen.AcceptedEditedCount,
		DurationMillis:        gen.Duration.Milliseconds(),
		CreatedAt:             gen.CreatedAt,
	}
}

// Generate handles POST /api/generations requests. It runs the full
// generation flow synchronously and returns the suggested flashcards.
func (h *GenerationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req GenerateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(
			w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	log.Debug("starting flashcard generation",
		slog.String("user_id", userID.String()),
		slog.Int("source_text_chars", len(req.SourceText)))

	result, err := h.generationService.GenerateFlashcards(r.Context(), userID, req.SourceText)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to generate flashcards"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("generation completed",
		slog.String("user_id", userID.String()),
		slog.String("generation_id", result.GenerationID.String()),
		slog.Int("generated_count", result.GeneratedCount),
		slog.Duration("duration", result.Duration))

	response := GenerateResponse{
		GenerationID:   result.GenerationID,
		Model:          result.Model,
		GeneratedCount: result.GeneratedCount,
		Suggestions:    result.Suggestions,
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, response)
}

// GetGeneration handles GET /api/generations/{id} requests.
func (h *GenerationHandler) GetGeneration(w http.ResponseWriter, r *http.Request) {
	userID, generationID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	gen, err := h.generationService.GetGeneration(r.Context(), userID, generationID)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to get generation"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, generationToResponse(gen))
}

// ListGenerations handles GET /api/generations requests.
func (h *GenerationHandler) ListGenerations(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	limit := parsePositiveQueryInt(r, "limit", 20)
	offset := parsePositiveQueryInt(r, "offset", 0)

	generations, err := h.generationService.ListGenerations(r.Context(), userID, limit, offset)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to list generations"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	responses := make([]GenerationResponse, 0, len(generations))
	for _, gen := range generations {
		responses = append(responses, generationToResponse(gen))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// parsePositiveQueryInt reads a non-negative integer query parameter,
// falling back to def when absent or unparseable.
func parsePositiveQueryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}
