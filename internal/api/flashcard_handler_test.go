package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawelm/flashgen-api/internal/api/shared"
	"github.com/pawelm/flashgen-api/internal/domain"
	"github.com/pawelm/flashgen-api/internal/service"
	"github.com/pawelm/flashgen-api/internal/store"
)

// MockFlashcardService is a mock implementation of service.FlashcardService
// for testing.
type MockFlashcardService struct {
	CreateFlashcardsFn func(ctx context.Context, userID uuid.UUID, inputs []service.FlashcardInput) ([]*domain.Flashcard, error)
	GetFlashcardFn     func(ctx context.Context, userID, id uuid.UUID) (*domain.Flashcard, error)
	ListFlashcardsFn   func(ctx context.Context, userID uuid.UUID, params store.ListParams) (*store.FlashcardList, error)
	UpdateFlashcardFn  func(ctx context.Context, userID, id uuid.UUID, front, back string, source domain.FlashcardSource) (*domain.Flashcard, error)
	DeleteFlashcardFn  func(ctx context.Context, userID, id uuid.UUID) error
}

func (m *MockFlashcardService) CreateFlashcards(
	ctx context.Context,
	userID uuid.UUID,
	inputs []service.FlashcardInput,
) ([]*domain.Flashcard, error) {
	if m.CreateFlashcardsFn != nil {
		return m.CreateFlashcardsFn(ctx, userID, inputs)
	}
	return nil, nil
}

func (m *MockFlashcardService) GetFlashcard(
	ctx context.Context,
	userID, id uuid.UUID,
) (*domain.Flashcard, error) {
	if m.GetFlashcardFn != nil {
		return m.GetFlashcardFn(ctx, userID, id)
	}
	return nil, nil
}

func (m *MockFlashcardService) ListFlashcards(
	ctx context.Context,
	userID uuid.UUID,
	params store.ListParams,
) (*store.FlashcardList, error) {
	if m.ListFlashcardsFn != nil {
		return m.ListFlashcardsFn(ctx, userID, params)
	}
	return &store.FlashcardList{}, nil
}

func (m *MockFlashcardService) UpdateFlashcard(
	ctx context.Context,
	userID, id uuid.UUID,
	front, back string,
	source domain.FlashcardSource,
) (*domain.Flashcard, error) {
	if m.UpdateFlashcardFn != nil {
		return m.UpdateFlashcardFn(ctx, userID, id, front, back, source)
	}
	return nil, nil
}

func (m *MockFlashcardService) DeleteFlashcard(ctx context.Context, userID, id uuid.UUID) error {
	if m.DeleteFlashcardFn != nil {
		return m.DeleteFlashcardFn(ctx, userID, id)
	}
	return nil
}

// requestWithPathID builds a request carrying both the authenticated user and
// a chi route parameter, mirroring what the router and middleware provide.
func requestWithPathID(
	method, target, pathID string,
	userID uuid.UUID,
	body []byte,
) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", pathID)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	if userID != uuid.Nil {
		ctx = context.WithValue(ctx, shared.UserIDContextKey, userID)
	}
	return req.WithContext(ctx)
}

// TestFlashcardHandler_CreateFlashcards tests the batch creation endpoint.
func TestFlashcardHandler_CreateFlashcards(t *testing.T) {
	fixedUserID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	fixedGenerationID := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	fixedTime := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	genIDStr := fixedGenerationID.String()

	tests := []struct {
		name           string
		withUser       bool
		requestBody    interface{}
		setupMock      func(*MockFlashcardService)
		expectedStatus int
		expectedErrMsg string
		expectedCards  int
	}{
		{
			name:     "successful_manual_batch",
			withUser: true,
			requestBody: CreateFlashcardsRequest{
				Flashcards: []FlashcardInput{
					{Front: "Question 1", Back: "Answer 1", Source: "manual"},
					{Front: "Question 2", Back: "Answer 2", Source: "manual"},
				},
			},
			setupMock: func(ms *MockFlashcardService) {
				ms.CreateFlashcardsFn = func(ctx context.Context, userID uuid.UUID, inputs []service.FlashcardInput) ([]*domain.Flashcard, error) {
					require.Len(t, inputs, 2)
					assert.Equal(t, domain.SourceManual, inputs[0].Source)
					assert.Nil(t, inputs[0].GenerationID)
					cards := make([]*domain.Flashcard, len(inputs))
					for i, in := range inputs {
						cards[i] = &domain.Flashcard{
							ID:        uuid.New(),
							UserID:    userID,
							Front:     in.Front,
							Back:      in.Back,
							Source:    in.Source,
							CreatedAt: fixedTime,
							UpdatedAt: fixedTime,
						}
					}
					return cards, nil
				}
			},
			expectedStatus: http.StatusCreated,
			expectedCards:  2,
		},
		{
			name:     "ai_card_with_generation_id",
			withUser: true,
			requestBody: CreateFlashcardsRequest{
				Flashcards: []FlashcardInput{
					{Front: "Q", Back: "A", Source: "ai_full", GenerationID: &genIDStr},
				},
			},
			setupMock: func(ms *MockFlashcardService) {
				ms.CreateFlashcardsFn = func(ctx context.Context, userID uuid.UUID, inputs []service.FlashcardInput) ([]*domain.Flashcard, error) {
					require.Len(t, inputs, 1)
					require.NotNil(t, inputs[0].GenerationID)
					assert.Equal(t, fixedGenerationID, *inputs[0].GenerationID)
					return []*domain.Flashcard{{
						ID:           uuid.New(),
						UserID:       userID,
						Front:        inputs[0].Front,
						Back:         inputs[0].Back,
						Source:       inputs[0].Source,
						GenerationID: inputs[0].GenerationID,
						CreatedAt:    fixedTime,
						UpdatedAt:    fixedTime,
					}}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			expectedCards:  1,
		},
		{
			name:     "empty_batch_rejected",
			withUser: true,
			requestBody: CreateFlashcardsRequest{
				Flashcards: []FlashcardInput{},
			},
			setupMock:      func(ms *MockFlashcardService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:     "invalid_source_rejected",
			withUser: true,
			requestBody: CreateFlashcardsRequest{
				Flashcards: []FlashcardInput{
					{Front: "Q", Back: "A", Source: "telepathy"},
				},
			},
			setupMock:      func(ms *MockFlashcardService) {},
			expectedStatus: http.StatusBadRequest,
			expectedErrMsg: "invalid value",
		},
		{
			name:     "malformed_generation_id",
			withUser: true,
			requestBody: `{"flashcards":[{"front":"Q","back":"A","source":"ai_full","generation_id":"not-a-uuid"}]}`,
			setupMock:      func(ms *MockFlashcardService) {},
			expectedStatus: http.StatusBadRequest,
			expectedErrMsg: "Invalid generation ID format",
		},
		{
			name:     "generation_owned_by_other_user",
			withUser: true,
			requestBody: CreateFlashcardsRequest{
				Flashcards: []FlashcardInput{
					{Front: "Q", Back: "A", Source: "ai_full", GenerationID: &genIDStr},
				},
			},
			setupMock: func(ms *MockFlashcardService) {
				ms.CreateFlashcardsFn = func(ctx context.Context, userID uuid.UUID, inputs []service.FlashcardInput) ([]*domain.Flashcard, error) {
					return nil, service.ErrNotOwned
				}
			},
			expectedStatus: http.StatusForbidden,
			expectedErrMsg: "do not own",
		},
		{
			name:     "ai_card_missing_generation_id",
			withUser: true,
			requestBody: CreateFlashcardsRequest{
				Flashcards: []FlashcardInput{
					{Front: "Q", Back: "A", Source: "ai_full"},
				},
			},
			setupMock: func(ms *MockFlashcardService) {
				ms.CreateFlashcardsFn = func(ctx context.Context, userID uuid.UUID, inputs []service.FlashcardInput) ([]*domain.Flashcard, error) {
					return nil, domain.ErrGenerationIDRequired
				}
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing_user_id",
			withUser:       false,
			requestBody:    CreateFlashcardsRequest{Flashcards: []FlashcardInput{{Front: "Q", Back: "A", Source: "manual"}}},
			setupMock:      func(ms *MockFlashcardService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedErrMsg: "User ID not found or invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockFlashcardService{}
			tt.setupMock(mockService)

			handler := NewFlashcardHandler(mockService, newTestHandlerLogger())

			var reqBody []byte
			var err error
			if str, ok := tt.requestBody.(string); ok {
				reqBody = []byte(str)
			} else {
				reqBody, err = json.Marshal(tt.requestBody)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/flashcards", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")
			if tt.withUser {
				req = req.WithContext(
					context.WithValue(req.Context(), shared.UserIDContextKey, fixedUserID))
			}

			w := httptest.NewRecorder()
			handler.CreateFlashcards(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedErrMsg != "" {
				var respBody map[string]interface{}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
				errorMsg, ok := respBody["error"].(string)
				assert.True(t, ok, "Expected error field in response")
				assert.Contains(t, errorMsg, tt.expectedErrMsg)
			}

			if tt.expectedCards > 0 {
				var resp CreateFlashcardsResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Len(t, resp.Flashcards, tt.expectedCards)
				assert.Equal(t, tt.expectedCards, resp.TotalCreated)
			}
		})
	}
}

// TestFlashcardHandler_ListFlashcards tests the listing endpoint and its
// query parameter handling.
func TestFlashcardHandler_ListFlashcards(t *testing.T) {
	fixedUserID := uuid.MustParse("11111111-1111-1111-1111-111111111111")

	t.Run("passes_query_params", func(t *testing.T) {
		var gotParams store.ListParams
		mockService := &MockFlashcardService{
			ListFlashcardsFn: func(ctx context.Context, userID uuid.UUID, params store.ListParams) (*store.FlashcardList, error) {
				gotParams = params
				return &store.FlashcardList{
					Flashcards: []*domain.Flashcard{{
						ID:     uuid.New(),
						UserID: userID,
						Front:  "Q",
						Back:   "A",
						Source: domain.SourceAIEdited,
					}},
					Total: 42,
				}, nil
			},
		}
		handler := NewFlashcardHandler(mockService, newTestHandlerLogger())

		req := httptest.NewRequest(
			http.MethodGet, "/api/flashcards?page=3&limit=10&sort_by=updated_at&filter=ai_edited", nil)
		req = req.WithContext(context.WithValue(req.Context(), shared.UserIDContextKey, fixedUserID))

		w := httptest.NewRecorder()
		handler.ListFlashcards(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 3, gotParams.Page)
		assert.Equal(t, 10, gotParams.Limit)
		assert.Equal(t, store.SortByUpdatedAt, gotParams.SortBy)
		assert.Equal(t, domain.SourceAIEdited, gotParams.Filter)

		var resp FlashcardListResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 42, resp.Total)
		assert.Equal(t, 3, resp.Page)
		assert.Equal(t, 10, resp.Limit)
		assert.Len(t, resp.Flashcards, 1)
	})

	t.Run("empty_page_returns_empty_array", func(t *testing.T) {
		mockService := &MockFlashcardService{
			ListFlashcardsFn: func(ctx context.Context, userID uuid.UUID, params store.ListParams) (*store.FlashcardList, error) {
				return &store.FlashcardList{}, nil
			},
		}
		handler := NewFlashcardHandler(mockService, newTestHandlerLogger())

		req := httptest.NewRequest(http.MethodGet, "/api/flashcards", nil)
		req = req.WithContext(context.WithValue(req.Context(), shared.UserIDContextKey, fixedUserID))

		w := httptest.NewRecorder()
		handler.ListFlashcards(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp FlashcardListResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotNil(t, resp.Flashcards)
		assert.Empty(t, resp.Flashcards)
		assert.Equal(t, 1, resp.Page)
		assert.Equal(t, 10, resp.Limit)
	})

	t.Run("invalid_filter_surfaces_bad_request", func(t *testing.T) {
		mockService := &MockFlashcardService{
			ListFlashcardsFn: func(ctx context.Context, userID uuid.UUID, params store.ListParams) (*store.FlashcardList, error) {
				return nil, domain.ErrInvalidFlashcardSource
			},
		}
		handler := NewFlashcardHandler(mockService, newTestHandlerLogger())

		req := httptest.NewRequest(http.MethodGet, "/api/flashcards?filter=bogus", nil)
		req = req.WithContext(context.WithValue(req.Context(), shared.UserIDContextKey, fixedUserID))

		w := httptest.NewRecorder()
		handler.ListFlashcards(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// TestFlashcardHandler_GetFlashcard tests flashcard retrieval by ID.
func TestFlashcardHandler_GetFlashcard(t *testing.T) {
	fixedUserID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	fixedCardID := uuid.MustParse("33333333-3333-3333-3333-333333333333")

	t.Run("found", func(t *testing.T) {
		mockService := &MockFlashcardService{
			GetFlashcardFn: func(ctx context.Context, userID, id uuid.UUID) (*domain.Flashcard, error) {
				assert.Equal(t, fixedUserID, userID)
				assert.Equal(t, fixedCardID, id)
				return &domain.Flashcard{
					ID:     fixedCardID,
					UserID: userID,
					Front:  "Q",
					Back:   "A",
					Source: domain.SourceManual,
				}, nil
			},
		}
		handler := NewFlashcardHandler(mockService, newTestHandlerLogger())

		w := httptest.NewRecorder()
		req := requestWithPathID(
			http.MethodGet, "/api/flashcards/"+fixedCardID.String(), fixedCardID.String(), fixedUserID, nil)
		handler.GetFlashcard(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp FlashcardResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, fixedCardID, resp.ID)
		assert.Equal(t, "manual", resp.Source)
	})

	t.Run("not_found", func(t *testing.T) {
		mockService := &MockFlashcardService{
			GetFlashcardFn: func(ctx context.Context, userID, id uuid.UUID) (*domain.Flashcard, error) {
				return nil, service.ErrFlashcardNotFound
			},
		}
		handler := NewFlashcardHandler(mockService, newTestHandlerLogger())

		w := httptest.NewRecorder()
		req := requestWithPathID(
			http.MethodGet, "/api/flashcards/"+fixedCardID.String(), fixedCardID.String(), fixedUserID, nil)
		handler.GetFlashcard(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

// TestFlashcardHandler_UpdateFlashcard tests the update endpoint.
func TestFlashcardHandler_UpdateFlashcard(t *testing.T) {
	fixedUserID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	fixedCardID := uuid.MustParse("33333333-3333-3333-3333-333333333333")

	t.Run("successful_update", func(t *testing.T) {
		mockService := &MockFlashcardService{
			UpdateFlashcardFn: func(ctx context.Context, userID, id uuid.UUID, front, back string, source domain.FlashcardSource) (*domain.Flashcard, error) {
				assert.Equal(t, "New front", front)
				assert.Equal(t, "New back", back)
				assert.Equal(t, domain.FlashcardSource(""), source)
				return &domain.Flashcard{
					ID:     id,
					UserID: userID,
					Front:  front,
					Back:   back,
					Source: domain.SourceAIEdited,
				}, nil
			},
		}
		handler := NewFlashcardHandler(mockService, newTestHandlerLogger())

		body, err := json.Marshal(UpdateFlashcardRequest{Front: "New front", Back: "New back"})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := requestWithPathID(
			http.MethodPut, "/api/flashcards/"+fixedCardID.String(), fixedCardID.String(), fixedUserID, body)
		handler.UpdateFlashcard(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp FlashcardResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "ai_edited", resp.Source)
	})

	t.Run("ai_full_source_rejected", func(t *testing.T) {
		handler := NewFlashcardHandler(&MockFlashcardService{}, newTestHandlerLogger())

		body := []byte(`{"front":"F","back":"B","source":"ai_full"}`)

		w := httptest.NewRecorder()
		req := requestWithPathID(
			http.MethodPut, "/api/flashcards/"+fixedCardID.String(), fixedCardID.String(), fixedUserID, body)
		handler.UpdateFlashcard(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing_front_rejected", func(t *testing.T) {
		handler := NewFlashcardHandler(&MockFlashcardService{}, newTestHandlerLogger())

		body := []byte(`{"back":"B"}`)

		w := httptest.NewRecorder()
		req := requestWithPathID(
			http.MethodPut, "/api/flashcards/"+fixedCardID.String(), fixedCardID.String(), fixedUserID, body)
		handler.UpdateFlashcard(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var respBody map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
		assert.Contains(t, respBody["error"], "required field")
	})

	t.Run("not_found", func(t *testing.T) {
		mockService := &MockFlashcardService{
			UpdateFlashcardFn: func(ctx context.Context, userID, id uuid.UUID, front, back string, source domain.FlashcardSource) (*domain.Flashcard, error) {
				return nil, service.ErrFlashcardNotFound
			},
		}
		handler := NewFlashcardHandler(mockService, newTestHandlerLogger())

		body := []byte(`{"front":"F","back":"B"}`)

		w := httptest.NewRecorder()
		req := requestWithPathID(
			http.MethodPut, "/api/flashcards/"+fixedCardID.String(), fixedCardID.String(), fixedUserID, body)
		handler.UpdateFlashcard(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

// TestFlashcardHandler_DeleteFlashcard tests the delete endpoint.
func TestFlashcardHandler_DeleteFlashcard(t *testing.T) {
	fixedUserID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	fixedCardID := uuid.MustParse("33333333-3333-3333-3333-333333333333")

	t.Run("successful_delete", func(t *testing.T) {
		var deleted bool
		mockService := &MockFlashcardService{
			DeleteFlashcardFn: func(ctx context.Context, userID, id uuid.UUID) error {
				assert.Equal(t, fixedCardID, id)
				deleted = true
				return nil
			},
		}
		handler := NewFlashcardHandler(mockService, newTestHandlerLogger())

		w := httptest.NewRecorder()
		req := requestWithPathID(
			http.MethodDelete, "/api/flashcards/"+fixedCardID.String(), fixedCardID.String(), fixedUserID, nil)
		handler.DeleteFlashcard(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.True(t, deleted)
		assert.Empty(t, w.Body.String())
	})

	t.Run("not_found", func(t *testing.T) {
		mockService := &MockFlashcardService{
			DeleteFlashcardFn: func(ctx context.Context, userID, id uuid.UUID) error {
				return service.ErrFlashcardNotFound
			},
		}
		handler := NewFlashcardHandler(mockService, newTestHandlerLogger())

		w := httptest.NewRecorder()
		req := requestWithPathID(
			http.MethodDelete, "/api/flashcards/"+fixedCardID.String(), fixedCardID.String(), fixedUserID, nil)
		handler.DeleteFlashcard(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("missing_user", func(t *testing.T) {
		handler := NewFlashcardHandler(&MockFlashcardService{}, newTestHandlerLogger())

		w := httptest.NewRecorder()
		req := requestWithPathID(
			http.MethodDelete, "/api/flashcards/"+fixedCardID.String(), fixedCardID.String(), uuid.Nil, nil)
		handler.DeleteFlashcard(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
