package notify

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by Service wraps exactly one of these;
// classify with errors.Is.
var (
	// ErrValidation marks malformed or missing input. Nothing was written.
	ErrValidation = errors.New("invalid input")
	// ErrNotFound marks a referenced notification, message or organizer that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden marks a message that exists but is not addressed to the caller.
	ErrForbidden = errors.New("forbidden")
	// ErrStore marks a persistence failure.
	ErrStore = errors.New("store failure")
)

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

func notFoundError(what string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, what)
}

func forbiddenError(msg string) error {
	return fmt.Errorf("%w: %s", ErrForbidden, msg)
}

func storeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStore, op, err)
}
