// Package review holds the client-side state for one batch of AI flashcard
// suggestions as the user accepts, edits, or rejects them. It is transport
// agnostic: persistence and generation are injected collaborators, so any
// front end (TUI, CLI, test harness) can drive the same lifecycle.
package review
