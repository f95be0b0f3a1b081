package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawelm/flashgen-api/internal/domain"
	"github.com/pawelm/flashgen-api/internal/review"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
}

func TestNewValidation(t *testing.T) {
	_, err := New("", "token", testLogger())
	assert.Error(t, err)

	_, err = New("http://localhost:8080", "", testLogger())
	assert.Error(t, err)

	_, err = New("http://localhost:8080", "token", nil)
	assert.Error(t, err)

	client, err := New("http://localhost:8080/", "token", testLogger())
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", client.baseURL)
}

func TestStartGeneration(t *testing.T) {
	generationID := uuid.New()

	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/generations", r.URL.Path)
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var req map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "some source text", req["source_text"])

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"generation_id":   generationID,
				"generated_count": 2,
				"flashcard_suggestions": []map[string]interface{}{
					{"id": 1, "front": "Q1", "back": "A1", "source": "ai_full"},
					{"id": 2, "front": "Q2", "back": "A2", "source": "ai_full"},
				},
			})
		}))
		defer server.Close()

		client, err := New(server.URL, "test-token", testLogger())
		require.NoError(t, err)

		batch, err := client.StartGeneration(context.Background(), "some source text")
		require.NoError(t, err)
		assert.Equal(t, generationID, batch.GenerationID)
		require.Len(t, batch.Suggestions, 2)
		assert.Equal(t, 1, batch.Suggestions[0].ID)
		assert.Equal(t, "Q1", batch.Suggestions[0].Front)
		assert.Equal(t, domain.SourceAIFull, batch.Suggestions[0].Source)
	})

	t.Run("server_error_carries_sanitized_message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadGateway)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error": "Completion service is unavailable, try again later",
			})
		}))
		defer server.Close()

		client, err := New(server.URL, "test-token", testLogger())
		require.NoError(t, err)

		_, err = client.StartGeneration(context.Background(), "some source text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Completion service is unavailable")
		assert.Contains(t, err.Error(), "502")
	})

	t.Run("non_json_error_body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("<html>oops</html>"))
		}))
		defer server.Close()

		client, err := New(server.URL, "test-token", testLogger())
		require.NoError(t, err)

		_, err = client.StartGeneration(context.Background(), "some source text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 500")
	})
}

func TestSaveCards(t *testing.T) {
	generationID := uuid.New()

	t.Run("success", func(t *testing.T) {
		var gotBody map[string]interface{}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/flashcards", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"flashcards": []interface{}{}, "total_created": 1,
			})
		}))
		defer server.Close()

		client, err := New(server.URL, "test-token", testLogger())
		require.NoError(t, err)

		err = client.SaveCards(context.Background(), []review.CardSubmission{{
			Front:        "Q1",
			Back:         "A1",
			Source:       domain.SourceAIEdited,
			GenerationID: &generationID,
		}})
		require.NoError(t, err)

		cards, ok := gotBody["flashcards"].([]interface{})
		require.True(t, ok)
		require.Len(t, cards, 1)
		card, ok := cards[0].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "Q1", card["front"])
		assert.Equal(t, "ai_edited", card["source"])
		assert.Equal(t, generationID.String(), card["generation_id"])
	})

	t.Run("rejected_batch_surfaces_error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error": "flashcard front cannot be empty",
			})
		}))
		defer server.Close()

		client, err := New(server.URL, "test-token", testLogger())
		require.NoError(t, err)

		err = client.SaveCards(context.Background(), []review.CardSubmission{{
			Back:   "A1",
			Source: domain.SourceManual,
		}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "flashcard front cannot be empty")
	})
}
