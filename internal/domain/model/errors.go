package model

import "errors"

// Sentinel kinds for declared type errors.
var (
	ErrUnknownType = errors.New("unknown field type")
)
