package schemafile

import "errors"

// Sentinel kinds for record definition errors.
var (
	ErrInvalidDefinition = errors.New("invalid record definition")
	ErrLoad              = errors.New("load record definitions failed")
)
