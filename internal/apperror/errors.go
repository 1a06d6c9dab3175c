package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors for the API error taxonomy. Store and service code wraps
// these with %w so the HTTP layer can map them to status codes with errors.Is.
var (
	// ErrNotFound covers both a missing record and an ownership mismatch;
	// callers cannot distinguish the two, which prevents id enumeration.
	ErrNotFound = errors.New("not found")

	ErrUnauthorized = errors.New("unauthorized")

	ErrValidation = errors.New("validation failed")

	// ErrUpstreamUnavailable marks an answer engine timeout or failure.
	// Nothing was persisted; the client may retry.
	ErrUpstreamUnavailable = errors.New("answer engine unavailable")
)

func NotFound(what string) error {
	return fmt.Errorf("%s: %w", what, ErrNotFound)
}

func Validation(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrValidation)
}

func Upstream(err error) error {
	return fmt.Errorf("%v: %w", err, ErrUpstreamUnavailable)
}
