// Package service provides application-level services for flashcard
// generation, flashcard management, and user accounts. Services own the
// transaction boundaries and translate store errors into the sentinel
// errors the API layer maps to HTTP status codes.
package service
