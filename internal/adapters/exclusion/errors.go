package exclusion

import "errors"

// Sentinel kinds for exclusion import errors.
var (
	ErrTooLarge      = errors.New("exclusion source exceeds size limit")
	ErrInvalidSource = errors.New("invalid exclusion source")
)
