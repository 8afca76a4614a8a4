// Package model contains the declared shape of record fields passed between layers.
package model

import (
	"fmt"
	"strings"
)

// Kind classifies the declared data type of a record field.
type Kind uint8

// Declared kinds. KindInvalid is the zero value and never valid on a field.
const (
	KindInvalid Kind = iota
	KindNumber
	KindBool
	KindEnum
	KindString
	KindDateTime
	KindSequence
)

var kindNames = map[Kind]string{
	KindInvalid:  "invalid",
	KindNumber:   "number",
	KindBool:     "bool",
	KindEnum:     "enum",
	KindString:   "string",
	KindDateTime: "datetime",
	KindSequence: "sequence",
}

// String returns the canonical lower-case name of k.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Type is a declared field type. Elem is only meaningful for sequences.
type Type struct {
	Kind Kind
	Elem Kind
}

// Number, Bool, Enum, String and DateTime return the scalar declared types.
func Number() Type   { return Type{Kind: KindNumber} }
func Bool() Type     { return Type{Kind: KindBool} }
func Enum() Type     { return Type{Kind: KindEnum} }
func String() Type   { return Type{Kind: KindString} }
func DateTime() Type { return Type{Kind: KindDateTime} }

// SequenceOf returns a fixed-arity ordered sequence of elem values.
func SequenceOf(elem Kind) Type { return Type{Kind: KindSequence, Elem: elem} }

// Valid reports whether t names a usable declared type.
func (t Type) Valid() bool {
	switch t.Kind {
	case KindNumber, KindBool, KindEnum, KindString, KindDateTime:
		return t.Elem == KindInvalid
	case KindSequence:
		return t.Elem != KindInvalid && t.Elem != KindSequence
	default:
		return false
	}
}

// Iterable reports whether values of t are ordered collections.
// Strings are deliberately not iterable here: a string field is a single value.
func (t Type) Iterable() bool { return t.Kind == KindSequence }

func (t Type) String() string {
	if t.Kind == KindSequence {
		return "sequence<" + t.Elem.String() + ">"
	}
	return t.Kind.String()
}

// ParseType parses a declared type name such as "number", "date" or
// "sequence<number>". "[]number" is accepted as a sequence shorthand.
func ParseType(s string) (Type, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(name, "sequence<") && strings.HasSuffix(name, ">"):
		elem, err := parseScalar(strings.TrimSuffix(strings.TrimPrefix(name, "sequence<"), ">"))
		if err != nil {
			return Type{}, fmt.Errorf("parse type %q: %w", s, err)
		}
		return SequenceOf(elem), nil
	case strings.HasPrefix(name, "[]"):
		elem, err := parseScalar(strings.TrimPrefix(name, "[]"))
		if err != nil {
			return Type{}, fmt.Errorf("parse type %q: %w", s, err)
		}
		return SequenceOf(elem), nil
	}
	k, err := parseScalar(name)
	if err != nil {
		return Type{}, fmt.Errorf("parse type %q: %w", s, err)
	}
	return Type{Kind: k}, nil
}

func parseScalar(name string) (Kind, error) {
	switch strings.TrimSpace(name) {
	case "number", "int", "integer", "float", "double", "decimal":
		return KindNumber, nil
	case "bool", "boolean":
		return KindBool, nil
	case "enum":
		return KindEnum, nil
	case "string", "text":
		return KindString, nil
	case "date", "datetime", "time", "timestamp":
		return KindDateTime, nil
	default:
		return KindInvalid, ErrUnknownType
	}
}

// Field is a declared record field: its name and its value type.
type Field struct {
	Name string
	Type Type
}
