package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jessebenson/numl/internal/domain/role"
)

// Error aggregates every field failure of one schema build. A build that
// returns an Error returns no schema at all.
type Error struct {
	Schema string
	Fields []*role.FieldError
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "schema %q: %d field(s) failed", e.Schema, len(e.Fields))
	for _, fe := range e.Fields {
		b.WriteString("; ")
		b.WriteString(fe.Error())
	}
	return b.String()
}

// Unwrap exposes the field errors to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	errs := make([]error, len(e.Fields))
	for i, fe := range e.Fields {
		errs[i] = fe
	}
	return errs
}

// FieldNames lists the failed fields in declaration order.
func (e *Error) FieldNames() []string {
	names := make([]string, len(e.Fields))
	for i, fe := range e.Fields {
		names[i] = fe.Field
	}
	return names
}

// ErrInvalidTag is returned by FromStruct for a malformed numl tag.
var ErrInvalidTag = errors.New("invalid numl tag")
