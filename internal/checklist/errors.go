package checklist

import "errors"

var (
	// ErrNotFound covers both a missing record and an ownership mismatch, so the
	// authenticated surface never leaks whether a foreign id exists.
	ErrNotFound = errors.New("checklist not found or access denied")

	ErrValidation        = errors.New("invalid input")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidTransition = errors.New("invalid status transition")
)
