// Package service wires the schema builder, exclusion importer and registry
// and implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/jessebenson/numl/internal/adapters/exclusion"
	"github.com/jessebenson/numl/internal/adapters/repository"
	"github.com/jessebenson/numl/internal/adapters/schemafile"
	"github.com/jessebenson/numl/internal/domain/role"
	"github.com/jessebenson/numl/internal/domain/schema"
	"github.com/jessebenson/numl/internal/domain/types"
	"github.com/jessebenson/numl/pkg/logger"
)

// Service registers schemas and serves their descriptors.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    repository.Store
	importer role.ExclusionImporter
	builder  *schema.Builder

	// Configuration
	schemaPaths         []string
	exclusionDir        string
	exclusionDelimiters string
	maxExclusionBytes   int64
	replace             bool

	// State
	started bool

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		exclusionDelimiters: ",;",
		maxExclusionBytes:   exclusion.DefaultMaxBytes,
		logger:              nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the components and registers every record of the
// configured definition files. Registration is all or nothing: every record
// of every file is built and its name checked before any is registered, and
// if any step fails nothing stays registered and Start fails.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting schema service...")

	if s.importer == nil {
		s.importer = exclusion.NewFileImporter(
			exclusion.WithBaseDir(s.exclusionDir),
			exclusion.WithDelimiters(s.exclusionDelimiters),
			exclusion.WithMaxBytes(s.maxExclusionBytes),
			exclusion.WithLogger(s.logger.Named("exclusion")),
		)
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore(repository.WithReplace(s.replace))
	}
	s.builder = schema.NewBuilder(
		schema.WithImporter(s.importer),
		schema.WithLogger(s.logger.Named("schema")),
	)

	batch, err := s.loadFiles(ctx)
	if err == nil {
		err = s.registerAll(ctx, batch)
	}
	if err != nil {
		s.logger.Error(ctx, "schema files rejected", logger.Strings("paths", s.schemaPaths), logger.Error(err))
		return err
	}

	s.started = true
	s.logger.Info(ctx, "schema service started",
		logger.Int("files", len(s.schemaPaths)),
		logger.Int("schemas", s.store.Count(ctx)),
		logger.Bool("replace", s.replace),
	)

	return nil
}

// pending is a built schema waiting to be registered.
type pending struct {
	path   string
	schema *schema.Schema
}

// loadFiles builds every record of every definition file without
// registering anything (assumes the lock is held). Unless replacement is on,
// a name declared twice or already in the store is rejected here.
func (s *Service) loadFiles(ctx context.Context) ([]pending, error) {
	var batch []pending
	origin := make(map[string]string)

	for _, path := range s.schemaPaths {
		doc, err := schemafile.Load(path)
		if err != nil {
			return nil, err
		}

		for _, rec := range doc.Records {
			fields, err := rec.Declarations()
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			sc, err := s.builder.Build(ctx, rec.Name, fields)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			if !s.replace {
				if prev, dup := origin[rec.Name]; dup {
					return nil, fmt.Errorf("%s: %w: %q also declared in %s", path, repository.ErrAlreadyRegistered, rec.Name, prev)
				}
				if _, err := s.store.Get(ctx, rec.Name); err == nil {
					return nil, fmt.Errorf("%s: %w: %q", path, repository.ErrAlreadyRegistered, rec.Name)
				}
			}
			origin[rec.Name] = path
			batch = append(batch, pending{path: path, schema: sc})
		}

		s.logger.Info(ctx, "schema file loaded",
			logger.String("path", path),
			logger.Int("records", len(doc.Records)),
		)
	}
	return batch, nil
}

// undo restores one name to its state before registerAll touched it.
type undo struct {
	name  string
	prior *repository.Entry
}

// registerAll puts the batch into the store. If a put fails, every put made
// so far is reverted in reverse order.
func (s *Service) registerAll(ctx context.Context, batch []pending) error {
	done := make([]undo, 0, len(batch))
	for _, p := range batch {
		u := undo{name: p.schema.Name()}
		if prev, err := s.store.Get(ctx, u.name); err == nil {
			u.prior = &prev
		}
		if _, err := s.store.Put(ctx, p.schema, p.path); err != nil {
			s.rollback(ctx, done)
			return fmt.Errorf("%s: %w", p.path, err)
		}
		done = append(done, u)
	}
	return nil
}

func (s *Service) rollback(ctx context.Context, done []undo) {
	for i := len(done) - 1; i >= 0; i-- {
		u := done[i]
		if err := s.store.Delete(ctx, u.name); err != nil {
			s.logger.Warn(ctx, "rollback delete failed", logger.String("schema", u.name), logger.Error(err))
		}
		if u.prior == nil {
			continue
		}
		if _, err := s.store.Put(ctx, u.prior.Schema, u.prior.Source); err != nil {
			s.logger.Warn(ctx, "rollback restore failed", logger.String("schema", u.name), logger.Error(err))
		}
	}
	if len(done) > 0 {
		s.logger.Warn(ctx, "schema registration rolled back", logger.Int("schemas", len(done)))
	}
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping schema service...")

	// Close registry if it holds resources
	if closer, ok := s.store.(interface{ Close() error }); ok {
		_ = closer.Close()
	}

	s.started = false
	s.logger.Info(context.Background(), "schema service stopped")
}

func (s *Service) components() (*schema.Builder, repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, ErrNotStarted
	}
	return s.builder, s.store, nil
}

// Register builds a schema from field declarations and registers it.
func (s *Service) Register(ctx context.Context, name string, fields []schema.Field) (types.Schema, error) {
	b, store, err := s.components()
	if err != nil {
		return types.Schema{}, err
	}
	sc, err := b.Build(ctx, name, fields)
	if err != nil {
		return types.Schema{}, err
	}
	e, err := store.Put(ctx, sc, "api")
	if err != nil {
		return types.Schema{}, err
	}
	return toSchema(e), nil
}

// RegisterStruct registers the numl-tagged struct v. An empty name uses the
// struct's type name.
func (s *Service) RegisterStruct(ctx context.Context, name string, v any) (types.Schema, error) {
	fields, err := schema.FromStruct(v)
	if err != nil {
		return types.Schema{}, err
	}
	if name == "" {
		t := reflect.TypeOf(v)
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		name = t.Name()
	}
	return s.Register(ctx, name, fields)
}

// Describe returns the built schema registered under name.
func (s *Service) Describe(ctx context.Context, name string) (*schema.Schema, error) {
	_, store, err := s.components()
	if err != nil {
		return nil, err
	}
	e, err := store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return e.Schema, nil
}

// Lookup returns the wire form of the schema registered under name.
func (s *Service) Lookup(ctx context.Context, name string) (types.Schema, error) {
	_, store, err := s.components()
	if err != nil {
		return types.Schema{}, err
	}
	e, err := store.Get(ctx, name)
	if err != nil {
		return types.Schema{}, err
	}
	return toSchema(e), nil
}

// Schemas lists every registered schema ordered by name.
func (s *Service) Schemas(ctx context.Context) ([]types.SchemaSummary, error) {
	_, store, err := s.components()
	if err != nil {
		return nil, err
	}
	entries, err := store.List(ctx)
	if err != nil {
		return nil, err
	}

	// Convert to API format
	out := make([]types.SchemaSummary, len(entries))
	for i, e := range entries {
		out[i] = types.SchemaSummary{
			ID:           e.ID,
			Name:         e.Name,
			Descriptors:  e.Schema.Len(),
			Labels:       types.LabelNames(e.Schema),
			RegisteredAt: e.RegisteredAt,
		}
	}
	return out, nil
}

// Unregister removes the schema registered under name.
func (s *Service) Unregister(ctx context.Context, name string) error {
	_, store, err := s.components()
	if err != nil {
		return err
	}
	return store.Delete(ctx, name)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"schemaFiles": len(s.schemaPaths),
		"replace":     s.replace,
	}

	if s.started {
		stats["schemas"] = s.store.Count(context.Background())
	}

	return stats
}

func toSchema(e repository.Entry) types.Schema {
	return types.Schema{
		ID:           e.ID,
		Name:         e.Name,
		Source:       e.Source,
		RegisteredAt: e.RegisteredAt,
		Descriptors:  types.NewDescriptors(e.Schema),
	}
}
