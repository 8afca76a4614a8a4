// Package repository defines the schema registry interface and errors.
package repository

import (
	"context"
	"time"

	"github.com/jessebenson/numl/internal/domain/schema"
)

// Entry is one registered schema.
type Entry struct {
	ID           string
	Name         string
	Source       string
	RegisteredAt time.Time
	Schema       *schema.Schema
}

// Store provides read/write access to registered schemas.
type Store interface {
	// Put registers a built schema under its name. Returns
	// ErrAlreadyRegistered if the name is taken and replacement is off.
	Put(ctx context.Context, s *schema.Schema, source string) (Entry, error)

	// Get returns the entry registered under name.
	// Returns ErrNotFound if the name is unknown.
	Get(ctx context.Context, name string) (Entry, error)

	// List returns every entry ordered by name.
	List(ctx context.Context) ([]Entry, error)

	// Delete removes the entry registered under name.
	Delete(ctx context.Context, name string) error

	// Count returns the number of registered schemas.
	Count(ctx context.Context) int
}
