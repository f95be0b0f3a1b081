// Package openrouter implements the generation interface against an
// OpenRouter-compatible chat completion API. It handles request shaping,
// bearer authentication, strict response validation, and bounded retry of
// transient failures.
package openrouter
