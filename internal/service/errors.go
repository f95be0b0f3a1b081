package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check for these with errors.Is(); the API layer maps them to HTTP
// status codes.
var (
	// ErrPersistence indicates that a database operation failed for a reason
	// other than the entity being missing or invalid.
	// API layer should map this to HTTP 500 Internal Server Error.
	ErrPersistence = errors.New("persistence failure")

	// ErrNotOwned indicates a resource is owned by a different user than the
	// one making the request.
	// API layer should map this to HTTP 403 Forbidden.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrFlashcardNotFound indicates that the requested flashcard does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrFlashcardNotFound = errors.New("flashcard not found")

	// ErrGenerationNotFound indicates that the requested generation does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrGenerationNotFound = errors.New("generation not found")
)

// ServiceError wraps unexpected errors from a service with operation context.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "generate_flashcards")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}
