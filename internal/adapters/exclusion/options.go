package exclusion

import "github.com/jessebenson/numl/pkg/logger"

// Option applies a configuration option to the FileImporter.
type Option func(*FileImporter)

// WithBaseDir resolves relative sources against dir.
func WithBaseDir(dir string) Option {
	return func(f *FileImporter) {
		f.baseDir = dir
	}
}

// WithDelimiters sets the characters that separate tokens in addition to
// newlines.
func WithDelimiters(delims string) Option {
	return func(f *FileImporter) {
		f.delimiters = delims
	}
}

// WithMaxBytes caps the size of a single source file.
func WithMaxBytes(n int64) Option {
	return func(f *FileImporter) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// WithLogger sets a custom logger for the importer.
func WithLogger(l logger.Logger) Option {
	return func(f *FileImporter) {
		if l != nil {
			f.logger = l
		}
	}
}
