package repository

import "errors"

// Sentinel kinds for registry errors.
var (
	ErrNotFound          = errors.New("schema not found")
	ErrAlreadyRegistered = errors.New("schema already registered")
	ErrInvalidSchema     = errors.New("invalid schema")
)
