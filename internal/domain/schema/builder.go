package schema

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jessebenson/numl/internal/domain/property"
	"github.com/jessebenson/numl/internal/domain/role"
	"github.com/jessebenson/numl/pkg/logger"
	"github.com/jessebenson/numl/pkg/metrics"
)

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithImporter sets the source of exclusion lists for string roles.
func WithImporter(imp role.ExclusionImporter) Option {
	return func(b *Builder) {
		if imp != nil {
			b.importer = imp
		}
	}
}

// WithLogger sets a custom logger for the builder.
func WithLogger(l logger.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// Builder derives schemas from field declarations. It holds no per-build
// state and may be reused.
type Builder struct {
	importer role.ExclusionImporter
	logger   logger.Logger
}

// NewBuilder creates a Builder with configuration options.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		logger: logger.Discard(),
	}

	// Apply all options
	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Build walks fields in declaration order, skips those without a role and
// derives one descriptor per roled field. Every field is checked; if any
// fails the result is a *Error listing all failures and no schema.
func (b *Builder) Build(ctx context.Context, name string, fields []Field) (*Schema, error) {
	start := time.Now()

	var (
		props []property.Property
		errs  []*role.FieldError
		seen  = make(map[string]struct{}, len(fields))
	)

	for _, f := range fields {
		if f.Role.IsZero() {
			continue
		}
		if fe := checkName(f, seen); fe != nil {
			errs = append(errs, fe)
			continue
		}

		p, err := f.Role.Build(ctx, f.Decl(), b.importer)
		if err != nil {
			var fe *role.FieldError
			if !errors.As(err, &fe) {
				fe = &role.FieldError{Field: f.Name, Role: f.Role.Kind(), Err: err}
			}
			errs = append(errs, fe)
			continue
		}

		b.logger.Debug(ctx, "descriptor built",
			logger.String("schema", name),
			logger.String("field", p.Name()),
			logger.String("kind", p.Kind().String()),
			logger.String("role", f.Role.String()),
		)
		props = append(props, p)
	}

	elapsed := time.Since(start)
	if len(errs) > 0 {
		for _, fe := range errs {
			metrics.RecordFieldError(errorType(fe))
		}
		metrics.RecordSchemaBuild(metrics.OutcomeFailure, durationMs(elapsed))
		serr := &Error{Schema: name, Fields: errs}
		b.logger.Warn(ctx, "schema build failed",
			logger.String("schema", name),
			logger.Strings("fields", serr.FieldNames()),
			logger.Error(serr),
		)
		return nil, serr
	}

	for _, p := range props {
		metrics.RecordDescriptorBuilt(p.Kind().String())
	}
	metrics.RecordSchemaBuild(metrics.OutcomeSuccess, durationMs(elapsed))

	s := newSchema(name, props)
	b.logger.Info(ctx, "schema built",
		logger.String("schema", name),
		logger.Int("descriptors", s.Len()),
		logger.Int("labels", len(s.Labels())),
		logger.Duration("elapsed", elapsed),
	)
	return s, nil
}

// checkName rejects empty and repeated names; descriptor names key the
// feature-vector columns and must be unique.
func checkName(f Field, seen map[string]struct{}) *role.FieldError {
	if strings.TrimSpace(f.Name) == "" {
		return &role.FieldError{Field: f.Name, Role: f.Role.Kind(), Err: role.ErrInvalidConfiguration, Reason: "empty field name"}
	}
	if _, dup := seen[f.Name]; dup {
		return &role.FieldError{Field: f.Name, Role: f.Role.Kind(), Err: role.ErrInvalidConfiguration, Reason: "duplicate field name"}
	}
	seen[f.Name] = struct{}{}
	return nil
}

func errorType(err error) string {
	switch {
	case errors.Is(err, role.ErrTypeMismatch):
		return "type_mismatch"
	case errors.Is(err, role.ErrInvalidConfiguration):
		return "invalid_configuration"
	case errors.Is(err, role.ErrRoleMismatch):
		return "role_mismatch"
	default:
		return "unknown"
	}
}

func durationMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
