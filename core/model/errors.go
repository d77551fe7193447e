package model

import "errors"

// Sentinel errors separating sequencing violations from bad arguments.
// Callers match them with errors.Is.
var (
	// ErrInvalidTransition reports a lifecycle operation applied in the
	// wrong state, such as delivering a request that was never picked up.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInvalidInput reports a malformed argument: nil entities,
	// non-positive speeds, offers built for a different driver.
	ErrInvalidInput = errors.New("invalid input")
)
