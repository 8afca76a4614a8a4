// Package role classifies record fields by their declared role and derives
// the property descriptor each role asks for.
//
// A Role is a closed tagged union: the Kind selects the variant and only the
// settings relevant to that variant are populated. Build is the single place
// that switches over the variants.
package role

import (
	"fmt"
	"strings"

	"github.com/jessebenson/numl/internal/domain/property"
)

// Kind selects the role variant.
type Kind uint8

// Role variants. KindNone is the zero value and marks an unroled field.
const (
	KindNone Kind = iota
	KindFeature
	KindLabel
	KindStringFeature
	KindStringLabel
	KindDateFeature
	KindEnumerableFeature
)

var kindNames = [...]string{
	KindNone:              "none",
	KindFeature:           "feature",
	KindLabel:             "label",
	KindStringFeature:     "string-feature",
	KindStringLabel:       "string-label",
	KindDateFeature:       "date-feature",
	KindEnumerableFeature: "enumerable-feature",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("role(%d)", uint8(k))
}

// IsLabel reports whether the variant marks a prediction target.
func (k Kind) IsLabel() bool { return k == KindLabel || k == KindStringLabel }

// ParseKind parses a role name. Dashes and underscores are optional, so
// "string-feature", "string_feature" and "stringfeature" are equivalent.
func ParseKind(s string) (Kind, error) {
	norm := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(s))
	for k, name := range kindNames {
		if strings.ReplaceAll(name, "-", "") == norm {
			return Kind(k), nil
		}
	}
	return KindNone, fmt.Errorf("%w: unknown role %q", ErrInvalidConfiguration, s)
}

// Role is the role marker attached to a field declaration. It is a pure
// configuration value.
type Role struct {
	kind Kind

	// string variants
	str property.StringConfig

	// date variant
	features property.DateTimeFeature
	portion  property.DatePortion

	// enumerable variant
	length int
}

// Kind returns the role variant.
func (r Role) Kind() Kind { return r.kind }

// IsZero reports whether no role is attached.
func (r Role) IsZero() bool { return r.kind == KindNone }

// Feature marks an ordinary feature classified by its declared type.
func Feature() Role { return Role{kind: KindFeature} }

// Label marks a prediction target classified by its declared type.
func Label() Role { return Role{kind: KindLabel} }

// StringOption configures a string role.
type StringOption func(*property.StringConfig)

// WithSplit sets the tokenization strategy and separator.
func WithSplit(split property.SplitType, separator string) StringOption {
	return func(c *property.StringConfig) {
		c.Split = split
		c.Separator = separator
	}
}

// WithSeparator overrides only the separator.
func WithSeparator(separator string) StringOption {
	return func(c *property.StringConfig) {
		c.Separator = separator
	}
}

// WithExclusions names the source of tokens filtered out of tokenization.
func WithExclusions(source string) StringOption {
	return func(c *property.StringConfig) {
		c.ExclusionSource = source
	}
}

// AsEnum treats the whole string as one categorical value.
func AsEnum(enum bool) StringOption {
	return func(c *property.StringConfig) {
		c.AsEnum = enum
	}
}

// StringFeature marks a tokenized or categorical string feature. Without
// options it splits on single spaces into words, is not categorical and has
// no exclusions.
func StringFeature(opts ...StringOption) Role {
	return Role{kind: KindStringFeature, str: stringConfig(opts)}
}

// StringLabel marks a string prediction target. The resulting descriptor is
// always categorical whatever the options request.
func StringLabel(opts ...StringOption) Role {
	return Role{kind: KindStringLabel, str: stringConfig(opts)}
}

func stringConfig(opts []StringOption) property.StringConfig {
	cfg := property.DefaultStringConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// DateFeature extracts an explicit set of calendar components.
func DateFeature(features property.DateTimeFeature) Role {
	return Role{kind: KindDateFeature, features: features}
}

// DatePortionFeature extracts a named coarse portion such as date-only.
func DatePortionFeature(portion property.DatePortion) Role {
	return Role{kind: KindDateFeature, portion: portion, features: portion.Features()}
}

// EnumerableFeature marks a fixed-length sequence feature.
func EnumerableFeature(length int) Role {
	return Role{kind: KindEnumerableFeature, length: length}
}

// StringConfig returns the string settings of a string role.
func (r Role) StringConfig() property.StringConfig { return r.str }

// Features returns the calendar components of a date role.
func (r Role) Features() property.DateTimeFeature { return r.features }

// Portion returns the named portion of a date role, zero if explicit.
func (r Role) Portion() property.DatePortion { return r.portion }

// Length returns the fixed length of an enumerable role.
func (r Role) Length() int { return r.length }

// Validate checks the role's own settings, independent of any field. It is
// the fail-fast check run before a descriptor is built.
func (r Role) Validate() error {
	switch r.kind {
	case KindNone, KindFeature, KindLabel:
		return nil
	case KindStringFeature, KindStringLabel:
		if !r.str.Split.Valid() {
			return fmt.Errorf("%w: split type %s", ErrInvalidConfiguration, r.str.Split)
		}
		if r.str.Split == property.SplitCustom && r.str.Separator == "" {
			return fmt.Errorf("%w: custom split needs a separator", ErrInvalidConfiguration)
		}
		return nil
	case KindDateFeature:
		if r.portion != 0 && !r.portion.Valid() {
			return fmt.Errorf("%w: date portion %d", ErrInvalidConfiguration, r.portion)
		}
		if !r.features.Valid() {
			return fmt.Errorf("%w: date features %d", ErrInvalidConfiguration, r.features)
		}
		return nil
	case KindEnumerableFeature:
		if r.length <= 0 {
			return fmt.Errorf("%w: cannot have an enumerable feature of length %d", ErrInvalidConfiguration, r.length)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown role %s", ErrInvalidConfiguration, r.kind)
	}
}

func (r Role) String() string {
	switch r.kind {
	case KindStringFeature, KindStringLabel:
		return fmt.Sprintf("%s(split=%s, sep=%q, enum=%t, exclusions=%q)",
			r.kind, r.str.Split, r.str.Separator, r.str.AsEnum, r.str.ExclusionSource)
	case KindDateFeature:
		if r.portion != 0 {
			return fmt.Sprintf("%s(portion=%s)", r.kind, r.portion)
		}
		return fmt.Sprintf("%s(features=%s)", r.kind, r.features)
	case KindEnumerableFeature:
		return fmt.Sprintf("%s(%d)", r.kind, r.length)
	default:
		return r.kind.String()
	}
}
