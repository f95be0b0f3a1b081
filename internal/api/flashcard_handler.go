package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/pawelm/flashgen-api/internal/api/shared"
	"github.com/pawelm/flashgen-api/internal/domain"
	"github.com/pawelm/flashgen-api/internal/platform/logger"
	"github.com/pawelm/flashgen-api/internal/service"
	"github.com/pawelm/flashgen-api/internal/store"
)

// FlashcardHandler handles flashcard-related HTTP requests.
type FlashcardHandler struct {
	flashcardService service.FlashcardService
	validator        *validator.Validate
	logger           *slog.Logger
}

// NewFlashcardHandler creates a new FlashcardHandler.
func NewFlashcardHandler(
	flashcardService service.FlashcardService,
	logger *slog.Logger,
) *FlashcardHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for FlashcardHandler")
	}

	return &FlashcardHandler{
		flashcardService: flashcardService,
		validator:        validator.New(),
		logger:           logger.With(slog.String("component", "flashcard_handler")),
	}
}

// CreateFlashcards handles POST /api/flashcards requests. The whole batch
// is saved atomically; a single invalid card rejects the request.
func (h *FlashcardHandler) CreateFlashcards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req CreateFlashcardsRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(
			w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	inputs := make([]service.FlashcardInput, 0, len(req.Flashcards))
	for _, in := range req.Flashcards {
		input := service.FlashcardInput{
			Front:  in.Front,
			Back:   in.Back,
			Source: domain.FlashcardSource(in.Source),
		}
		if in.GenerationID != nil {
			genID, err := uuid.Parse(*in.GenerationID)
			if err != nil {
				shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid generation ID format")
				return
			}
			input.GenerationID = &genID
		}
		inputs = append(inputs, input)
	}

	cards, err := h.flashcardService.CreateFlashcards(r.Context(), userID, inputs)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to create flashcards"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("flashcards created",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(cards)))

	responses := make([]FlashcardResponse, 0, len(cards))
	for _, card := range cards {
		responses = append(responses, flashcardToResponse(card))
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, CreateFlashcardsResponse{
		Flashcards:   responses,
		TotalCreated: len(responses),
	})
}

// GetFlashcard handles GET /api/flashcards/{id} requests.
func (h *FlashcardHandler) GetFlashcard(w http.ResponseWriter, r *http.Request) {
	userID, cardID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	card, err := h.flashcardService.GetFlashcard(r.Context(), userID, cardID)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to get flashcard"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, flashcardToResponse(card))
}

// ListFlashcards handles GET /api/flashcards requests. Supported query
// parameters: page, limit, sort_by (created_at or updated_at) and filter
// (flashcard source).
func (h *FlashcardHandler) ListFlashcards(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	params := store.ListParams{
		Page:   parsePositiveQueryInt(r, "page", 0),
		Limit:  parsePositiveQueryInt(r, "limit", 0),
		SortBy: store.FlashcardSortField(r.URL.Query().Get("sort_by")),
		Filter: domain.FlashcardSource(r.URL.Query().Get("filter")),
	}

	list, err := h.flashcardService.ListFlashcards(r.Context(), userID, params)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to list flashcards"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	responses := make([]FlashcardResponse, 0, len(list.Flashcards))
	for _, card := range list.Flashcards {
		responses = append(responses, flashcardToResponse(card))
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit < 1 {
		limit = 10
	} else if limit > 50 {
		limit = 50
	}

	shared.RespondWithJSON(w, r, http.StatusOK, FlashcardListResponse{
		Flashcards: responses,
		Total:      list.Total,
		Page:       page,
		Limit:      limit,
	})
}

// UpdateFlashcard handles PUT /api/flashcards/{id} requests.
func (h *FlashcardHandler) UpdateFlashcard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, cardID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateFlashcardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(
			w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	card, err := h.flashcardService.UpdateFlashcard(
		r.Context(), userID, cardID, req.Front, req.Back, domain.FlashcardSource(req.Source))
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to update flashcard"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("flashcard updated",
		slog.String("user_id", userID.String()),
		slog.String("card_id", cardID.String()),
		slog.String("source", string(card.Source)))
	shared.RespondWithJSON(w, r, http.StatusOK, flashcardToResponse(card))
}

// DeleteFlashcard handles DELETE /api/flashcards/{id} requests.
func (h *FlashcardHandler) DeleteFlashcard(w http.ResponseWriter, r *http.Request) {
	userID, cardID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.flashcardService.DeleteFlashcard(r.Context(), userID, cardID); err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to delete flashcard"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
