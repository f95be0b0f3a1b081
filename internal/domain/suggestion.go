package domain

// Suggestion is an ephemeral, AI-proposed flashcard awaiting a user decision.
// Suggestions live only in the review working set and are never persisted as
// such; accepting one produces a Flashcard. The ID is a 1-based sequence
// number unique within its batch, not a globally stable identifier.
type Suggestion struct {
	ID           int             `json:"id"`
	Front        string          `json:"front"`
	Back         string          `json:"back"`
	Source       FlashcardSource `json:"source"`
	IsProcessing bool            `json:"-"`
	Error        string          `json:"-"`
}
