package apperrors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidInput is a generic sentinel for malformed request parameters.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDataUnavailable signals a store read failure the caller cannot recover from.
	ErrDataUnavailable = errors.New("data unavailable")
)
