package sequence

import (
	"context"
	"fmt"
	"sync"
)

// Store persists the next counter value for a prefix.
type Store interface {
	// Load returns the stored next value; found is false when nothing was saved yet.
	Load(ctx context.Context, prefix string) (next int64, found bool, err error)
	Save(ctx context.Context, prefix string, next int64) error
}

// Allocator is the single owner of a Generator. All invoice numbers are issued
// through it, one at a time, and the counter is persisted before a number is
// handed out so a restart never reissues it.
type Allocator struct {
	mu    sync.Mutex
	gen   *Generator
	store Store
}

// NewAllocator wraps gen. When store already holds a counter for the prefix it
// takes precedence over the generator's configured start.
func NewAllocator(ctx context.Context, gen *Generator, store Store) (*Allocator, error) {
	a := &Allocator{gen: gen, store: store}
	if store == nil {
		return a, nil
	}

	next, found, err := store.Load(ctx, gen.Prefix())
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice sequence: %w", err)
	}
	if found {
		gen.Reset(next)
	}
	return a, nil
}

// Next issues a new invoice number. If persisting fails the counter is not advanced.
func (a *Allocator) Next(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	current := a.gen.Current()
	if a.store != nil {
		if err := a.store.Save(ctx, a.gen.Prefix(), current+1); err != nil {
			return "", fmt.Errorf("failed to persist invoice sequence: %w", err)
		}
	}
	return a.gen.Next(), nil
}

// Peek returns the number the next allocation would produce.
func (a *Allocator) Peek() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gen.Peek()
}

// Reset is an administrative override of the counter.
func (a *Allocator) Reset(ctx context.Context, value int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.store != nil {
		if err := a.store.Save(ctx, a.gen.Prefix(), value); err != nil {
			return fmt.Errorf("failed to persist invoice sequence: %w", err)
		}
	}
	a.gen.Reset(value)
	return nil
}
