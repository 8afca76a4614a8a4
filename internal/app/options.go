package service

import (
	"github.com/jessebenson/numl/internal/adapters/repository"
	"github.com/jessebenson/numl/internal/domain/role"
	"github.com/jessebenson/numl/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSchemaPaths sets the record definition files built at Start.
func WithSchemaPaths(paths ...string) Option {
	return func(s *Service) {
		s.schemaPaths = append([]string(nil), paths...)
	}
}

// WithExclusionDir resolves relative exclusion sources against dir.
func WithExclusionDir(dir string) Option {
	return func(s *Service) {
		s.exclusionDir = dir
	}
}

// WithExclusionDelimiters sets the token delimiters of exclusion files.
func WithExclusionDelimiters(delims string) Option {
	return func(s *Service) {
		if delims != "" {
			s.exclusionDelimiters = delims
		}
	}
}

// WithMaxExclusionBytes caps the size of one exclusion file.
func WithMaxExclusionBytes(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxExclusionBytes = n
		}
	}
}

// WithReplace lets a registration overwrite an existing schema name.
func WithReplace(replace bool) Option {
	return func(s *Service) {
		s.replace = replace
	}
}

// WithImporter replaces the file-based exclusion importer.
func WithImporter(imp role.ExclusionImporter) Option {
	return func(s *Service) {
		if imp != nil {
			s.importer = imp
		}
	}
}

// WithStore replaces the in-memory schema registry.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}
