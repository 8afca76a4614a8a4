package role

import (
	"errors"
	"fmt"
)

// Sentinel kinds for descriptor derivation errors. Callers branch on them
// with errors.Is; every failure is reported as a *FieldError wrapping one.
var (
	// ErrTypeMismatch means the declared field type cannot carry the role.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrInvalidConfiguration means the role's own settings are invalid,
	// independent of the field it is attached to.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrRoleMismatch means the default classifier cannot derive a
	// descriptor for the declared type without a more specific role.
	ErrRoleMismatch = errors.New("role mismatch")
)

// FieldError names the field whose descriptor could not be built.
type FieldError struct {
	Field  string
	Role   Kind
	Reason string
	Err    error
}

func (e *FieldError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("field %q (%s): %v", e.Field, e.Role, e.Err)
	}
	return fmt.Sprintf("field %q (%s): %v: %s", e.Field, e.Role, e.Err, e.Reason)
}

func (e *FieldError) Unwrap() error { return e.Err }

func fieldErrorf(field string, kind Kind, sentinel error, format string, args ...any) *FieldError {
	return &FieldError{Field: field, Role: kind, Err: sentinel, Reason: fmt.Sprintf(format, args...)}
}
