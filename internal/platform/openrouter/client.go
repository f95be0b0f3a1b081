package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pawelm/flashgen-api/internal/domain"
	"github.com/pawelm/flashgen-api/internal/generation"
)

const (
	// maxAttempts is the total attempt budget per call, including the first try.
	maxAttempts = 3

	// retryBaseDelay is multiplied by the number of failures so far to get
	// the wait before the next attempt (linear backoff: 1s, then 2s).
	retryBaseDelay = 1 * time.Second

	// refererHeader identifies the application to the OpenRouter gateway.
	refererHeader = "https://flashgen.app"

	// defaultRequestTimeout bounds a single HTTP attempt.
	defaultRequestTimeout = 60 * time.Second
)

// Flashcard-authoring prompt fixed by GenerateFlashcards.
const flashcardSystemPrompt = `You are an expert at creating educational flashcards. Your task is to analyze the provided text and create concise, effective flashcards that capture the key concepts. Each flashcard should have a clear front (question/concept) and back (answer/explanation).

You must respond with valid JSON in the following format:
{
  "flashcards": [
    {
      "front": "question or concept",
      "back": "answer or explanation"
    }
  ]
}`

const flashcardUserPromptPrefix = "Please create educational flashcards from the following text. " +
	"Focus on the most important concepts and ensure each flashcard is self-contained and clear:\n\n"

// Generation parameters fixed by the flashcard-authoring wrapper.
const (
	flashcardTemperature = 0.7
	flashcardMaxTokens   = 2000
)

// ModelParams are the tunable generation parameters.
type ModelParams struct {
	Temperature float64 `validate:"gte=0,lte=1"`
	MaxTokens   int     `validate:"required,gt=0"`
}

// Config holds everything the client needs to reach the completion API.
// Validation happens once at construction, not per call.
type Config struct {
	APIKey       string      `validate:"required"`
	Endpoint     string      `validate:"required,url"`
	DefaultModel string      `validate:"required"`
	ModelParams  ModelParams `validate:"required"`
}

// Payload describes one structured completion request. User is the only
// required field; Model and Params override the client's defaults for this
// call only (call-level takes precedence over instance defaults).
type Payload struct {
	System         string
	User           string
	ResponseFormat *ResponseFormat
	Model          string
	Params         *ModelParams
}

// Client talks to an OpenRouter-compatible chat completion endpoint.
// It is safe for concurrent use: all per-call state, including the retry
// counter, is local to each invocation.
type Client struct {
	logger     *slog.Logger
	config     Config
	httpClient *http.Client
	validate   *validator.Validate
	retryDelay time.Duration
}

// Ensure Client implements the generation.Generator interface.
var _ generation.Generator = (*Client)(nil)

// NewClient creates a completion client with the provided configuration.
// Returns an error wrapping generation.ErrInvalidConfig if any constraint
// is violated.
func NewClient(logger *slog.Logger, cfg Config) (*Client, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrInvalidConfig, err)
	}

	return &Client{
		logger:     logger.With(slog.String("component", "openrouter_client")),
		config:     cfg,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
		validate:   validate,
		retryDelay: retryBaseDelay,
	}, nil
}

// Model reports the configured default model name.
func (c *Client) Model() string {
	return c.config.DefaultModel
}

// SendStructured issues a completion request and decodes the model's JSON
// content into target, validating it against target's struct tags.
// Transient failures (transport errors and non-2xx statuses other than 401)
// are retried up to the attempt budget with linear backoff; authorization
// and validation failures are surfaced immediately.
func (c *Client) SendStructured(ctx context.Context, payload Payload, target any) error {
	if payload.User == "" {
		return fmt.Errorf("%w: user prompt cannot be empty", generation.ErrValidation)
	}

	// The failure counter is scoped to this call. Keeping it off the Client
	// means concurrent calls can never contaminate each other's budgets.
	for attempt := 1; ; attempt++ {
		err := c.doRequest(ctx, payload, target)
		if err == nil {
			c.logger.DebugContext(ctx, "completion request succeeded",
				slog.Int("attempt", attempt))
			return nil
		}

		// Only network-class failures are worth retrying; a 401 or a
		// malformed response will not improve on a second attempt.
		if !errors.Is(err, generation.ErrNetwork) || attempt >= maxAttempts {
			c.logger.WarnContext(ctx, "completion request failed",
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()))
			return err
		}

		delay := time.Duration(attempt) * c.retryDelay
		c.logger.InfoContext(ctx, "retrying completion request",
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", generation.ErrNetwork, ctx.Err())
		}
	}
}

// doRequest performs a single HTTP attempt: build, post, classify, validate.
func (c *Client) doRequest(ctx context.Context, payload Payload, target any) error {
	body, err := json.Marshal(c.buildRequest(payload))
	if err != nil {
		return fmt.Errorf("%w: failed to encode request: %v", generation.ErrValidation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", generation.ErrNetwork, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("HTTP-Referer", refererHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", generation.ErrNetwork, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: invalid API key or unauthorized", generation.ErrAuthorization)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: unexpected status %d", generation.ErrNetwork, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response body: %v", generation.ErrNetwork, err)
	}

	var envelope chatResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("%w: malformed response envelope: %v", generation.ErrValidation, err)
	}

	// The pipeline requests a single deterministic completion; anything else
	// is a contract violation on the provider's side.
	if len(envelope.Choices) != 1 {
		return fmt.Errorf("%w: expected exactly 1 choice, got %d",
			generation.ErrValidation, len(envelope.Choices))
	}

	content := envelope.Choices[0].Message.Content
	if content == "" {
		return fmt.Errorf("%w: empty message content", generation.ErrValidation)
	}

	if err := json.Unmarshal([]byte(content), target); err != nil {
		return fmt.Errorf("%w: message content is not valid JSON: %v", generation.ErrValidation, err)
	}

	if err := c.validateTarget(target); err != nil {
		return fmt.Errorf("%w: %v", generation.ErrValidation, err)
	}

	return nil
}

// buildRequest assembles the provider request body, applying call-level
// overrides over the instance defaults.
func (c *Client) buildRequest(payload Payload) chatRequest {
	messages := make([]chatMessage, 0, 2)
	if payload.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: payload.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: payload.User})

	model := c.config.DefaultModel
	if payload.Model != "" {
		model = payload.Model
	}

	params := c.config.ModelParams
	if payload.Params != nil {
		params = *payload.Params
	}

	return chatRequest{
		Model:          model,
		Messages:       messages,
		Temperature:    params.Temperature,
		MaxTokens:      params.MaxTokens,
		ResponseFormat: payload.ResponseFormat,
		Stream:         false,
	}
}

// validateTarget runs struct-tag validation on the decoded content.
// Non-struct targets (after pointer indirection) are accepted as-is;
// callers that want schema enforcement pass tagged structs.
func (c *Client) validateTarget(target any) error {
	v := reflect.ValueOf(target)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return errors.New("target cannot be nil")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	return c.validate.Struct(target)
}

// GenerateFlashcards implements generation.Generator. It fixes the system
// prompt to the flashcard-authoring instruction and the response schema to
// {flashcards:[{front,back}]}, then maps the validated result into
// suggestions with source "ai_full".
func (c *Client) GenerateFlashcards(ctx context.Context, sourceText string) ([]domain.Suggestion, error) {
	if sourceText == "" {
		return nil, fmt.Errorf("%w: source text cannot be empty", generation.ErrValidation)
	}

	payload := Payload{
		System: flashcardSystemPrompt,
		User:   flashcardUserPromptPrefix + sourceText,
		ResponseFormat: &ResponseFormat{
			Type: "json_schema",
			JSONSchema: ResponseFormatJS{
				Name:   "flashcards",
				Strict: true,
				Schema: JSONSchema{
					Type: "object",
					Properties: map[string]JSONSchema{
						"flashcards": {
							Type: "array",
							Items: &JSONSchema{
								Type: "object",
								Properties: map[string]JSONSchema{
									"front": {Type: "string"},
									"back":  {Type: "string"},
								},
								Required: []string{"front", "back"},
							},
						},
					},
					Required: []string{"flashcards"},
				},
			},
		},
		Params: &ModelParams{
			Temperature: flashcardTemperature,
			MaxTokens:   flashcardMaxTokens,
		},
	}

	var result flashcardsResponse
	if err := c.SendStructured(ctx, payload, &result); err != nil {
		c.logger.ErrorContext(ctx, "flashcard generation failed",
			slog.String("error", err.Error()),
			slog.Int("source_length", len(sourceText)))
		return nil, err
	}

	suggestions := make([]domain.Suggestion, 0, len(result.Flashcards))
	for _, card := range result.Flashcards {
		suggestions = append(suggestions, domain.Suggestion{
			Front:  card.Front,
			Back:   card.Back,
			Source: domain.SourceAIFull,
		})
	}

	c.logger.InfoContext(ctx, "flashcards generated",
		slog.Int("count", len(suggestions)),
		slog.String("model", c.config.DefaultModel))

	return suggestions, nil
}
