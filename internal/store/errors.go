package store

import (
	"errors"
	"fmt"
)

// Sentinel errors for the stock services. Handlers map these to HTTP
// status codes with errors.Is; everything else is an internal failure.
var (
	// ErrInvalidInput is returned for a zero delta, an empty audit
	// batch, or an otherwise malformed request. Nothing is written.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPermissionDenied is returned when the actor lacks the
	// capability required for the requested change. Nothing is written.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound is returned when a referenced item or location does
	// not belong to the requesting organization.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateRequest is returned when an adjustment carries an
	// idempotency key that has already been recorded.
	ErrDuplicateRequest = errors.New("duplicate request")
)

// ReconciliationError reports a failed audit batch. The whole batch has
// been rolled back; ItemID identifies the change that failed.
type ReconciliationError struct {
	ItemID int64
	Err    error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("reconciliation failed at item %d: %v", e.ItemID, e.Err)
}

func (e *ReconciliationError) Unwrap() error {
	return e.Err
}
