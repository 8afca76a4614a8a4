// Package types contains the JSON shapes served by the describe API
package types

import (
	"time"

	"github.com/jessebenson/numl/internal/domain/property"
	"github.com/jessebenson/numl/internal/domain/schema"
)

// Descriptor is the wire form of one property descriptor. Only the
// settings of its own variant are set.
type Descriptor struct {
	Name            string   `json:"name"`
	Kind            string   `json:"kind"`
	Type            string   `json:"type"`
	Label           bool     `json:"label"`
	Split           string   `json:"split,omitempty"`
	Separator       *string  `json:"separator,omitempty"`
	Enum            *bool    `json:"enum,omitempty"`
	ExclusionSource string   `json:"exclusion_source,omitempty"`
	Exclusions      int      `json:"exclusions,omitempty"`
	Features        []string `json:"features,omitempty"`
	Portion         string   `json:"portion,omitempty"`
	Length          int      `json:"length,omitempty"`
}

// Schema is a registered schema with its descriptors in column order.
type Schema struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Source       string       `json:"source,omitempty"`
	RegisteredAt time.Time    `json:"registered_at"`
	Descriptors  []Descriptor `json:"descriptors"`
}

// SchemaSummary is one row of the schema listing.
type SchemaSummary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Descriptors  int       `json:"descriptors"`
	Labels       []string  `json:"labels"`
	RegisteredAt time.Time `json:"registered_at"`
}

// NewDescriptor converts a descriptor to its wire form.
func NewDescriptor(p property.Property) Descriptor {
	d := Descriptor{
		Name:  p.Name(),
		Kind:  p.Kind().String(),
		Type:  p.Type().String(),
		Label: p.IsLabel(),
	}
	switch v := p.(type) {
	case *property.String:
		sep, enum := v.Separator(), v.AsEnum()
		d.Split = v.SplitType().String()
		d.Separator = &sep
		d.Enum = &enum
		d.ExclusionSource = v.ExclusionSource()
		d.Exclusions = len(v.Exclusions())
	case *property.DateTime:
		d.Features = v.Features().Names()
		if v.Portion() != 0 {
			d.Portion = v.Portion().String()
		}
	case *property.Enumerable:
		d.Length = v.Length()
	}
	return d
}

// NewDescriptors converts every descriptor of s in column order.
func NewDescriptors(s *schema.Schema) []Descriptor {
	props := s.Properties()
	out := make([]Descriptor, len(props))
	for i, p := range props {
		out[i] = NewDescriptor(p)
	}
	return out
}

// LabelNames lists the label descriptor names of s.
func LabelNames(s *schema.Schema) []string {
	labels := s.Labels()
	names := make([]string, len(labels))
	for i, p := range labels {
		names[i] = p.Name()
	}
	return names
}
