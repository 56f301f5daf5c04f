package sequence

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestGeneratorNextSequence(t *testing.T) {
	g := NewGenerator("INV-", 10001, 5)
	want := []string{"INV-10001", "INV-10002", "INV-10003"}
	for i, w := range want {
		if got := g.Next(); got != w {
			t.Fatalf("call %d: got %q, want %q", i, got, w)
		}
	}
}

func TestGeneratorPadding(t *testing.T) {
	g := NewGenerator("A/", 7, 4)
	if got := g.Peek(); got != "A/0007" {
		t.Fatalf("Peek = %q", got)
	}
	if got := g.Peek(); got != "A/0007" {
		t.Fatalf("Peek must not advance, got %q", got)
	}
	if got := g.Next(); got != "A/0007" {
		t.Fatalf("Next = %q", got)
	}

	// Wider numbers are not truncated.
	g.Reset(123456)
	if got := g.Next(); got != "A/123456" {
		t.Fatalf("Next after reset = %q", got)
	}
}

func TestGeneratorNoDuplicates(t *testing.T) {
	g := NewGenerator("", 1, 3)
	seen := make(map[string]bool)
	for i := 0; i < 2000; i++ {
		n := g.Next()
		if seen[n] {
			t.Fatalf("duplicate number %q", n)
		}
		seen[n] = true
	}
	if g.Current() != 2001 {
		t.Fatalf("Current = %d", g.Current())
	}
}

type memStore struct {
	mu      sync.Mutex
	values  map[string]int64
	failing bool
}

func newMemStore() *memStore { return &memStore{values: map[string]int64{}} }

func (m *memStore) Load(_ context.Context, prefix string) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[prefix]
	return v, ok, nil
}

func (m *memStore) Save(_ context.Context, prefix string, next int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errors.New("disk full")
	}
	m.values[prefix] = next
	return nil
}

func TestAllocatorResumesFromStore(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()

	a, err := NewAllocator(ctx, NewGenerator("INV-", 10001, 5), store)
	if err != nil {
		t.Fatalf("NewAllocator: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := a.Next(ctx); err != nil {
			t.Fatalf("Next: %v", err)
		}
	}

	// Simulated restart with the same configured start.
	b, err := NewAllocator(ctx, NewGenerator("INV-", 10001, 5), store)
	if err != nil {
		t.Fatalf("NewAllocator after restart: %v", err)
	}
	got, err := b.Next(ctx)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got != "INV-10004" {
		t.Fatalf("after restart got %q, want INV-10004", got)
	}
}

func TestAllocatorDoesNotAdvanceOnPersistFailure(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	a, _ := NewAllocator(ctx, NewGenerator("INV-", 1, 1), store)

	store.failing = true
	if _, err := a.Next(ctx); err == nil {
		t.Fatalf("expected persistence error")
	}
	store.failing = false

	got, err := a.Next(ctx)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got != "INV-1" {
		t.Fatalf("got %q, want INV-1", got)
	}
}

func TestAllocatorConcurrentIssuanceIsUnique(t *testing.T) {
	ctx := context.Background()
	a, _ := NewAllocator(ctx, NewGenerator("INV-", 10001, 5), newMemStore())

	const workers, perWorker = 16, 50
	results := make(chan string, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				n, err := a.Next(ctx)
				if err != nil {
					t.Error(err)
					return
				}
				results <- n
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool)
	for n := range results {
		if seen[n] {
			t.Fatalf("duplicate number %q", n)
		}
		seen[n] = true
	}
	if len(seen) != workers*perWorker {
		t.Fatalf("issued %d numbers, want %d", len(seen), workers*perWorker)
	}
	if got, want := a.Peek(), fmt.Sprintf("INV-%05d", 10001+workers*perWorker); got != want {
		t.Fatalf("Peek = %q, want %q", got, want)
	}
}

func TestAllocatorReset(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	a, _ := NewAllocator(ctx, NewGenerator("INV-", 10001, 5), store)

	if err := a.Reset(ctx, 20000); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if got := a.Peek(); got != "INV-20000" {
		t.Fatalf("Peek = %q", got)
	}
	if v, _, _ := store.Load(ctx, "INV-"); v != 20000 {
		t.Fatalf("stored value = %d", v)
	}
}
