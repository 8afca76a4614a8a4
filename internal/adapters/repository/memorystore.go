package repository

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jessebenson/numl/internal/domain/schema"
	"github.com/jessebenson/numl/pkg/metrics"
)

// In-memory Store implementation.
//
// Schemas are immutable once built, so entries are shared with readers.
// Writes rebuild a name-ordered snapshot that List serves without locking.

// snapshot is the name-ordered view published after every write.
type snapshot struct {
	entries []Entry
}

// MemoryStore keeps registered schemas in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	byName  map[string]Entry
	replace bool
	now     func() time.Time

	snapshot atomic.Pointer[snapshot]
}

// NewMemoryStore constructs an empty registry with configuration options.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		byName: make(map[string]Entry),
		now:    time.Now,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	s.snapshot.Store(&snapshot{})
	metrics.UpdateRegisteredSchemas(0)
	return s
}

// Put implements Store.Put.
func (s *MemoryStore) Put(ctx context.Context, sc *schema.Schema, source string) (Entry, error) {
	if sc == nil || strings.TrimSpace(sc.Name()) == "" {
		return Entry{}, ErrInvalidSchema
	}
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}

	e := Entry{
		ID:           uuid.NewString(),
		Name:         sc.Name(),
		Source:       source,
		RegisteredAt: s.now().UTC(),
		Schema:       sc,
	}

	s.mu.Lock()
	if _, ok := s.byName[e.Name]; ok && !s.replace {
		s.mu.Unlock()
		return Entry{}, fmt.Errorf("%w: %q", ErrAlreadyRegistered, e.Name)
	}
	s.byName[e.Name] = e
	s.publishSnapshotLocked()
	n := len(s.byName)
	s.mu.Unlock()

	// Update metrics outside lock
	metrics.UpdateRegisteredSchemas(n)
	return e, nil
}

// Get implements Store.Get.
func (s *MemoryStore) Get(_ context.Context, name string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.byName[name]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return e, nil
}

// List implements Store.List from the last published snapshot.
func (s *MemoryStore) List(_ context.Context) ([]Entry, error) {
	return slices.Clone(s.snapshot.Load().entries), nil
}

// Delete implements Store.Delete.
func (s *MemoryStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	if _, ok := s.byName[name]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	delete(s.byName, name)
	s.publishSnapshotLocked()
	n := len(s.byName)
	s.mu.Unlock()

	metrics.UpdateRegisteredSchemas(n)
	return nil
}

// Count implements Store.Count.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byName)
}

// publishSnapshotLocked rebuilds the ordered view (assumes the write lock is held).
func (s *MemoryStore) publishSnapshotLocked() {
	entries := make([]Entry, 0, len(s.byName))
	for _, e := range s.byName {
		entries = append(entries, e)
	}
	slices.SortFunc(entries, func(a, b Entry) int { return strings.Compare(a.Name, b.Name) })
	s.snapshot.Store(&snapshot{entries: entries})
}
