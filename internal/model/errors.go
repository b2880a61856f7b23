package model

import "errors"

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("listing not found")
	ErrNotAvailable      = errors.New("listing not available")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrForbidden         = errors.New("actor not allowed")
	ErrVersionConflict   = errors.New("concurrent update conflict")
)
