// Package api contains the HTTP handlers for the flashcard generation
// service: authentication, generation requests, and flashcard CRUD. Handlers
// delegate business logic to the service layer and translate its sentinel
// errors into sanitized HTTP responses.
package api
