package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation failed")
	// ErrJobFinalized is returned when a mutation targets a job that has
	// already reached a terminal status.
	ErrJobFinalized = errors.New("job finalized")
)
