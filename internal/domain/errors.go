package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrQuizNotFound indicates the referenced quiz does not exist.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrAttemptNotFound indicates the referenced attempt does not exist.
	// The lifecycle layer maps it to ErrForbidden before it reaches callers,
	// so a missing attempt is indistinguishable from a foreign one.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrForbidden is returned when the caller does not own the attempt.
	ErrForbidden = errors.New("unauthorized")
	// ErrAttemptCompleted rejects a submission for an already-completed attempt.
	ErrAttemptCompleted = errors.New("attempt already completed")
	// ErrUnavailable marks a storage collaborator failure. The triggering
	// request failed but left no partial state; callers may retry.
	ErrUnavailable = errors.New("storage unavailable")
)

// Unavailablef wraps a storage error so callers can match ErrUnavailable
// without seeing driver internals in the error kind.
func Unavailablef(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}
