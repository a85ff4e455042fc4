package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for addressed-entity-absent failures. Handlers map these
// to 404 envelopes.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrDocNotFound     = errors.New("document not found")
)

// AuthError is a structured credential-proxy failure carrying the error
// code surfaced to clients and the HTTP status the handler should answer
// with. Provider error codes are preserved where available.
type AuthError struct {
	Code    string
	Message string
	Status  int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newAuthError(status int, code, message string) *AuthError {
	return &AuthError{Code: code, Message: message, Status: status}
}
