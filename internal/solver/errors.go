package solver

import "errors"

// Sentinel errors for precondition failures. All of these are
// detected locally, before any network call is made.
var (
	// ErrMissingInput means a required input (such as the checkpoint
	// reference) was empty.
	ErrMissingInput = errors.New("missing required input")

	// ErrMissingSession means the operation needs an active session
	// and none exists.
	ErrMissingSession = errors.New("no active session")

	// ErrInvalidState means the operation is not allowed in the
	// current state, such as starting an auto-run while a step is
	// already in flight.
	ErrInvalidState = errors.New("operation not allowed in current state")
)
