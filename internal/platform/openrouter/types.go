package openrouter

// chatMessage is a single entry in the completion request's message list.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the provider request body. Streaming is always disabled:
// the pipeline consumes complete, schema-validated responses only.
type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
	Stream         bool            `json:"stream"`
}

// JSONSchema is a minimal JSON-Schema node used to describe the expected
// shape of the model's structured output.
type JSONSchema struct {
	Type       string                `json:"type"`
	Properties map[string]JSONSchema `json:"properties,omitempty"`
	Items      *JSONSchema           `json:"items,omitempty"`
	Required   []string              `json:"required,omitempty"`
}

// ResponseFormat asks the provider for strict structured output.
type ResponseFormat struct {
	Type       string           `json:"type"`
	JSONSchema ResponseFormatJS `json:"json_schema"`
}

// ResponseFormatJS names and carries the schema inside a ResponseFormat.
type ResponseFormatJS struct {
	Name   string     `json:"name"`
	Strict bool       `json:"strict"`
	Schema JSONSchema `json:"schema"`
}

// chatResponse is the provider response envelope. The pipeline requires
// exactly one choice with non-empty message content.
type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Model   string       `json:"model"`
	Usage   chatUsage    `json:"usage"`
}

// chatChoice is one candidate completion in the envelope.
type chatChoice struct {
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// chatUsage reports token consumption for the request.
type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// flashcardsResponse is the structured content expected from the
// flashcard-authoring prompt.
type flashcardsResponse struct {
	Flashcards []flashcardData `json:"flashcards" validate:"required,dive"`
}

// flashcardData is a single proposed card inside a flashcardsResponse.
type flashcardData struct {
	Front string `json:"front" validate:"required"`
	Back  string `json:"back"  validate:"required"`
}
