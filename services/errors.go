package services

import "errors"

// Error kinds surfaced by the engines. Every returned error wraps exactly one
// of these together with a human readable message.
var (
	ErrValidation  = errors.New("validation failed")
	ErrForbidden   = errors.New("forbidden")
	ErrNotFound    = errors.New("not found")
	ErrLocked      = errors.New("post is locked")
	ErrPersistence = errors.New("persistence failure")
)
