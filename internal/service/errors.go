package service

import "errors"

var (
	// ErrNotFound covers both "does not exist" and "exists but belongs to
	// another provider"; callers must not be able to tell them apart.
	ErrNotFound    = errors.New("not found")
	ErrForbidden   = errors.New("forbidden")
	ErrBlocked     = errors.New("sender is blocked")
	ErrValidation  = errors.New("validation failed")
	ErrUnsupported = errors.New("operation not supported for this thread source")
)
