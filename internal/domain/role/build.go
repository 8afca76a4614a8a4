package role

import (
	"context"
	"errors"
	"fmt"

	"github.com/jessebenson/numl/internal/domain/model"
	"github.com/jessebenson/numl/internal/domain/property"
)

// ExclusionImporter resolves an exclusion source into the tokens it lists.
// An empty or absent source yields no tokens and no error.
type ExclusionImporter interface {
	Import(ctx context.Context, source string) ([]string, error)
}

// Build validates the role against the declared field and returns the
// descriptor it requests. Errors are always *FieldError values naming the
// field. The importer is only consulted by string roles with an exclusion
// source and may be nil otherwise.
func (r Role) Build(ctx context.Context, f model.Field, imp ExclusionImporter) (property.Property, error) {
	if r.kind == KindNone {
		return nil, fieldErrorf(f.Name, r.kind, ErrRoleMismatch, "field has no role")
	}
	if err := r.checkType(f); err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, &FieldError{Field: f.Name, Role: r.kind, Err: err}
	}
	if !f.Type.Valid() {
		return nil, fieldErrorf(f.Name, r.kind, ErrTypeMismatch, "unsupported declared type %s", f.Type)
	}

	h := property.Header{Name: f.Name, Type: f.Type, Label: r.kind.IsLabel()}

	switch r.kind {
	case KindFeature:
		return r.classify(f, h, false)

	case KindLabel:
		// a label is a closed set of classes, never free-form tokens
		return r.classify(f, h, true)

	case KindStringFeature, KindStringLabel:
		cfg := r.str
		if r.kind == KindStringLabel {
			cfg.AsEnum = true
		}
		exclusions, err := importExclusions(ctx, imp, cfg.ExclusionSource)
		if err != nil {
			return nil, &FieldError{
				Field:  f.Name,
				Role:   r.kind,
				Reason: fmt.Sprintf("import exclusions from %q", cfg.ExclusionSource),
				Err:    fmt.Errorf("%w: %w", ErrInvalidConfiguration, err),
			}
		}
		return property.NewString(h, cfg, exclusions), nil

	case KindDateFeature:
		if r.portion != 0 {
			return property.NewDatePortion(h, r.portion), nil
		}
		return property.NewDateTime(h, r.features), nil

	case KindEnumerableFeature:
		if !f.Type.Iterable() {
			return nil, fieldErrorf(f.Name, r.kind, ErrTypeMismatch, "must use a sequence field, got %s", f.Type)
		}
		ep, err := property.NewEnumerable(h, r.length)
		if err != nil {
			return nil, &FieldError{Field: f.Name, Role: r.kind, Err: fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)}
		}
		return ep, nil
	}

	return nil, fieldErrorf(f.Name, r.kind, ErrInvalidConfiguration, "unknown role")
}

// checkType rejects string and date roles on fields of another type. It runs
// before Validate; enumerable roles are left to Validate.
func (r Role) checkType(f model.Field) error {
	switch r.kind {
	case KindStringFeature, KindStringLabel:
		if f.Type.Kind != model.KindString {
			return fieldErrorf(f.Name, r.kind, ErrTypeMismatch, "must use a string field, got %s", f.Type)
		}
	case KindDateFeature:
		if f.Type.Kind != model.KindDateTime {
			return fieldErrorf(f.Name, r.kind, ErrTypeMismatch, "must use a datetime field, got %s", f.Type)
		}
	}
	return nil
}

// classify is the default path shared by Feature and Label: the descriptor
// variant follows the declared type.
func (r Role) classify(f model.Field, h property.Header, asEnum bool) (property.Property, error) {
	switch {
	case f.Type.Kind == model.KindString:
		cfg := property.DefaultStringConfig()
		cfg.AsEnum = asEnum
		return property.NewString(h, cfg, nil), nil
	case f.Type.Kind == model.KindDateTime:
		return property.NewDateTime(h, property.AllFeatures), nil
	case f.Type.Iterable():
		// guessing a length would pad or truncate differently between
		// training and inference
		return nil, fieldErrorf(f.Name, r.kind, ErrRoleMismatch, "sequence field needs to be marked as %s", KindEnumerableFeature)
	default:
		return property.NewNumeric(h), nil
	}
}

func importExclusions(ctx context.Context, imp ExclusionImporter, source string) ([]string, error) {
	if source == "" {
		return nil, nil
	}
	if imp == nil {
		return nil, errors.New("no exclusion importer configured")
	}
	return imp.Import(ctx, source)
}
