// Package property defines the immutable descriptors that say how one record
// field becomes one or more numeric feature-vector columns.
//
// Descriptors are built once per schema and never mutated afterwards, so a
// descriptor set may be shared by any number of concurrent readers.
package property

import (
	"fmt"

	"github.com/jessebenson/numl/internal/domain/model"
)

// Kind identifies the descriptor variant.
type Kind uint8

// Descriptor variants.
const (
	KindNumeric Kind = iota + 1
	KindString
	KindDateTime
	KindEnumerable
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindString:
		return "string"
	case KindDateTime:
		return "datetime"
	case KindEnumerable:
		return "enumerable"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Property describes how one field is encoded.
type Property interface {
	// Name is the field identifier, unique within a schema.
	Name() string
	// Kind is the descriptor variant.
	Kind() Kind
	// Type is the field's declared type.
	Type() model.Type
	// IsLabel reports whether the field is a prediction target.
	IsLabel() bool
}

// Header carries the fields common to every descriptor.
type Header struct {
	Name  string
	Type  model.Type
	Label bool
}

type header struct {
	name  string
	typ   model.Type
	label bool
}

func newHeader(h Header) header {
	return header{name: h.Name, typ: h.Type, label: h.Label}
}

func (h header) Name() string     { return h.name }
func (h header) Type() model.Type { return h.typ }
func (h header) IsLabel() bool    { return h.label }

// Numeric is a field encoded as a single number.
type Numeric struct {
	header
}

// NewNumeric returns a numeric descriptor.
func NewNumeric(h Header) *Numeric {
	return &Numeric{header: newHeader(h)}
}

// Kind implements Property.
func (*Numeric) Kind() Kind { return KindNumeric }

// Enumerable is a fixed-length sequence field; every record must supply
// exactly Length elements.
type Enumerable struct {
	header
	length int
}

// NewEnumerable returns a sequence descriptor. Length must be positive.
func NewEnumerable(h Header, length int) (*Enumerable, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrNonPositiveLength, length)
	}
	return &Enumerable{header: newHeader(h), length: length}, nil
}

// Kind implements Property.
func (*Enumerable) Kind() Kind { return KindEnumerable }

// Length is the fixed number of elements per record.
func (e *Enumerable) Length() int { return e.length }
