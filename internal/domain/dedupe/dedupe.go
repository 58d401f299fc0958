// Package dedupe tracks which records were already seen so that repeated
// submissions are counted once.
package dedupe

import (
	"context"
	"sync"
)

// Deduper records seen keys to ensure at-most-once processing.
type Deduper[K comparable] interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, key K) bool

	// Seen reports whether key was recorded, without recording it.
	Seen(ctx context.Context, key K) bool

	// Size returns the number of distinct keys recorded.
	Size() int
}

// inMemoryDeduper implements Deduper with a map. It never evicts: a ledger
// must reject every repeat of a capture, however old.
type inMemoryDeduper[K comparable] struct {
	mu   sync.RWMutex
	seen map[K]struct{}
}

// NewInMemoryDeduper creates a new in-memory deduper.
func NewInMemoryDeduper[K comparable](opts ...Option) Deduper[K] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &inMemoryDeduper[K]{seen: make(map[K]struct{}, o.capacity)}
}

func (d *inMemoryDeduper[K]) SeenAndRecord(_ context.Context, key K) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[key]; exists {
		return true
	}
	d.seen[key] = struct{}{}
	return false
}

func (d *inMemoryDeduper[K]) Seen(_ context.Context, key K) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	_, exists := d.seen[key]
	return exists
}

func (d *inMemoryDeduper[K]) Size() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.seen)
}
