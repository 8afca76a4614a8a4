// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and NUML_ environment variables.
// - Errors wrap ErrInvalidConfig or ErrLoadConfig.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// SchemaPaths lists record definition files registered at startup.
	SchemaPaths []string `koanf:"schema_paths"`

	// ExclusionDir resolves relative exclusion sources.
	ExclusionDir string `koanf:"exclusion_dir"`

	// ExclusionDelimiters separate tokens in exclusion files, besides newlines.
	ExclusionDelimiters string `koanf:"exclusion_delimiters"`

	// MaxExclusionBytes caps the size of one exclusion file.
	MaxExclusionBytes int64 `koanf:"max_exclusion_bytes"`

	// ReplaceOnRegister lets a registration overwrite an existing schema name.
	ReplaceOnRegister bool `koanf:"replace_on_register"`

	// MetricsNamespace prefixes every exported metric.
	MetricsNamespace string `koanf:"metrics_namespace"`
}

// New creates a Config populated with defaults.
func New() *Config {
	c := &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		ExclusionDelimiters: ",;",
		MaxExclusionBytes:   4 << 20,
		MetricsNamespace:    "numl",
	}
	return c
}
