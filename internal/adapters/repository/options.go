package repository

import "time"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithReplace lets Put overwrite an existing name instead of failing.
func WithReplace(replace bool) Option {
	return func(s *MemoryStore) {
		s.replace = replace
	}
}

// WithClock sets the time source for registration timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}
