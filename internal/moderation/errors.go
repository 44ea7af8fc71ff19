package moderation

import "errors"

// Validation errors are surfaced synchronously to mutating callers and never
// retried. Store failures on the read path are absorbed by the fail-open
// policy instead.
var (
	ErrEmptyWord       = errors.New("moderation: word is empty after trimming")
	ErrInvalidSeverity = errors.New("moderation: invalid severity")
)
