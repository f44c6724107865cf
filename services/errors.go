package services

import "errors"

// Error kinds surfaced by loading and feature derivation. Callers match them
// with errors.Is; the returned errors wrap them with row and column context.
var (
	ErrFileNotFound       = errors.New("dataset file not found")
	ErrSchemaMismatch     = errors.New("dataset schema mismatch")
	ErrMalformedTimestamp = errors.New("malformed timestamp")
	ErrInvalidInput       = errors.New("invalid input")
)
