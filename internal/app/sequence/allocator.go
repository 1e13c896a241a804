// Package sequence allocates globally unique, monotonically increasing
// counter values from the cache tier. The counter is the single source of
// uniqueness for short-code generation; correctness rests entirely on the
// atomicity of the tier's increment primitive.
package sequence

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jianyuhu/TinyLink/internal/app/kv"
)

const (
	// CounterKey names the shared counter in the cache tier.
	CounterKey = "sequence:links"

	// StartValue is where a fresh counter begins. It sits between 62^5 and
	// 62^6-1, so every allocated value encodes to exactly six symbols until
	// the counter outgrows the six-character range.
	StartValue int64 = 1_000_000_000
)

// ErrNotInitialized is returned by Next when the counter is absent.
// Callers must run Initialize first; increments never create the counter.
var ErrNotInitialized = errors.New("sequence: counter not initialized")

// Allocator hands out counter values. It holds no state of its own: the
// counter lives in the cache tier and is shared by every process.
type Allocator struct {
	store kv.Store
}

// NewAllocator returns an allocator backed by the given store.
func NewAllocator(store kv.Store) *Allocator {
	return &Allocator{store: store}
}

// Initialize writes StartValue only when the counter does not exist yet.
// It is idempotent and race-safe: of N concurrent calls at most one write
// wins, the rest observe the existing counter and leave it untouched.
func (a *Allocator) Initialize(ctx context.Context) error {
	_, err := a.store.WriteIfAbsent(ctx, CounterKey, strconv.FormatInt(StartValue, 10))
	if err != nil {
		return fmt.Errorf("sequence: initialize: %w", err)
	}
	return nil
}

// Next atomically increments the counter and returns the new value.
// Two concurrent calls never observe the same value.
func (a *Allocator) Next(ctx context.Context) (int64, error) {
	n, err := a.store.IncrExisting(ctx, CounterKey)
	if errors.Is(err, kv.ErrKeyMissing) {
		return 0, ErrNotInitialized
	}
	if err != nil {
		return 0, fmt.Errorf("sequence: next: %w", err)
	}
	return n, nil
}
