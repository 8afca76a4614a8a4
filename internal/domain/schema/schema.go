// Package schema walks a record's declared fields and assembles the ordered
// set of property descriptors that defines its feature-vector layout.
package schema

import (
	"slices"

	"github.com/jessebenson/numl/internal/domain/model"
	"github.com/jessebenson/numl/internal/domain/property"
	"github.com/jessebenson/numl/internal/domain/role"
)

// Field is one field declaration of a record type. A zero Role leaves the
// field out of the feature vector.
type Field struct {
	Name string
	Type model.Type
	Role role.Role
}

// Decl returns the declared name and type without the role.
func (f Field) Decl() model.Field {
	return model.Field{Name: f.Name, Type: f.Type}
}

// Schema is the immutable, ordered descriptor set of one record type. The
// order is the declaration order of the roled fields and defines column
// order, so it is identical for every build of the same declaration.
type Schema struct {
	name  string
	props []property.Property
	index map[string]int
}

func newSchema(name string, props []property.Property) *Schema {
	idx := make(map[string]int, len(props))
	for i, p := range props {
		idx[p.Name()] = i
	}
	return &Schema{name: name, props: props, index: idx}
}

// Name is the record type name.
func (s *Schema) Name() string { return s.name }

// Len is the number of descriptors.
func (s *Schema) Len() int { return len(s.props) }

// Properties returns the descriptors in column order.
func (s *Schema) Properties() []property.Property { return slices.Clone(s.props) }

// Property looks a descriptor up by field name.
func (s *Schema) Property(name string) (property.Property, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.props[i], true
}

// Features returns the non-label descriptors in column order.
func (s *Schema) Features() []property.Property {
	return s.filter(func(p property.Property) bool { return !p.IsLabel() })
}

// Labels returns the label descriptors in column order. Most consumers
// require exactly one; that is their check to make.
func (s *Schema) Labels() []property.Property {
	return s.filter(property.Property.IsLabel)
}

func (s *Schema) filter(keep func(property.Property) bool) []property.Property {
	var out []property.Property
	for _, p := range s.props {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// Equal reports whether two schemas describe the same layout: same name,
// same order and the same per-field configuration.
func (s *Schema) Equal(o *Schema) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.name != o.name || len(s.props) != len(o.props) {
		return false
	}
	for i := range s.props {
		if !sameProperty(s.props[i], o.props[i]) {
			return false
		}
	}
	return true
}

func sameProperty(a, b property.Property) bool {
	if a.Kind() != b.Kind() || a.Name() != b.Name() || a.Type() != b.Type() || a.IsLabel() != b.IsLabel() {
		return false
	}
	switch pa := a.(type) {
	case *property.String:
		pb := b.(*property.String)
		return pa.Config() == pb.Config() && slices.Equal(pa.Exclusions(), pb.Exclusions())
	case *property.DateTime:
		pb := b.(*property.DateTime)
		return pa.Features() == pb.Features() && pa.Portion() == pb.Portion()
	case *property.Enumerable:
		return pa.Length() == b.(*property.Enumerable).Length()
	}
	return true
}
