// Package apiclient is a small HTTP client for the flashgen API, used by
// front ends to drive the review workflow. It implements the collaborator
// interfaces of the review package.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pawelm/flashgen-api/internal/domain"
	"github.com/pawelm/flashgen-api/internal/review"
)

const defaultTimeout = 60 * time.Second

// Client talks to a flashgen API server on behalf of one authenticated user.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// Interface guards against drifting from the review collaborators.
var (
	_ review.Generator = (*Client)(nil)
	_ review.CardSaver = (*Client)(nil)
)

// New creates a Client for the given server base URL and bearer token.
func New(baseURL, token string, logger *slog.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("base URL cannot be empty")
	}
	if token == "" {
		return nil, errors.New("token cannot be empty")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger.With(slog.String("component", "apiclient")),
	}, nil
}

type generateRequest struct {
	SourceText string `json:"source_text"`
}

type generateResponse struct {
	GenerationID   uuid.UUID           `json:"generation_id"`
	GeneratedCount int                 `json:"generated_count"`
	Suggestions    []domain.Suggestion `json:"flashcard_suggestions"`
}

// StartGeneration submits source text for generation and returns the
// resulting suggestion batch.
func (c *Client) StartGeneration(ctx context.Context, sourceText string) (*review.Batch, error) {
	var resp generateResponse
	err := c.post(ctx, "/api/generations", generateRequest{SourceText: sourceText}, &resp)
	if err != nil {
		return nil, err
	}

	return &review.Batch{
		GenerationID: resp.GenerationID,
		Suggestions:  resp.Suggestions,
	}, nil
}

type cardPayload struct {
	Front        string  `json:"front"`
	Back         string  `json:"back"`
	Source       string  `json:"source"`
	GenerationID *string `json:"generation_id,omitempty"`
}

type createFlashcardsRequest struct {
	Flashcards []cardPayload `json:"flashcards"`
}

// SaveCards persists a batch of accepted suggestions as flashcards.
func (c *Client) SaveCards(ctx context.Context, cards []review.CardSubmission) error {
	payload := createFlashcardsRequest{
		Flashcards: make([]cardPayload, 0, len(cards)),
	}
	for _, card := range cards {
		p := cardPayload{
			Front:  card.Front,
			Back:   card.Back,
			Source: string(card.Source),
		}
		if card.GenerationID != nil {
			id := card.GenerationID.String()
			p.GenerationID = &id
		}
		payload.Flashcards = append(payload.Flashcards, p)
	}

	return c.post(ctx, "/api/flashcards", payload, nil)
}

type errorResponse struct {
	Error string `json:"error"`
}

// post issues one JSON POST and decodes a 2xx response into out when out is
// non-nil. Non-2xx responses are turned into errors carrying the server's
// sanitized message.
func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("failed to close response body",
				slog.String("error", closeErr.Error()))
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response from %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr errorResponse
		if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("%s (status %d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("request to %s failed with status %d", path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}
