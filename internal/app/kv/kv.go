// Package kv defines the cache-tier contract the core depends on and its
// Redis and in-memory implementations.
//
// Both the sequence allocator and the resolution cache take a Store handle
// instead of talking to Redis directly, so tests can substitute the Memory
// implementation with real atomicity.
package kv

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrKeyMissing signals that the requested key does not exist.
	ErrKeyMissing = errors.New("kv: key does not exist")
)

// Store is the fast shared key-value tier.
//
// IncrExisting must be linearizable across all callers and processes: no
// two calls ever observe the same returned value. WriteIfAbsent must be
// atomic so that concurrent initializers race safely.
type Store interface {
	// Exists reports whether key is present and unexpired.
	Exists(ctx context.Context, key string) (bool, error)

	// WriteIfAbsent stores value under key only when the key is missing.
	// It reports whether this call performed the write.
	WriteIfAbsent(ctx context.Context, key, value string) (bool, error)

	// Write stores value under key. A positive ttl bounds its lifetime;
	// zero means no expiry.
	Write(ctx context.Context, key, value string, ttl time.Duration) error

	// Read returns the value under key, or ErrKeyMissing.
	Read(ctx context.Context, key string) (string, error)

	// IncrExisting atomically increments the integer under key by one and
	// returns the new value. Incrementing a missing key is ErrKeyMissing,
	// never an implicit creation.
	IncrExisting(ctx context.Context, key string) (int64, error)

	// Clear drops every key. Administrative and test use only.
	Clear(ctx context.Context) error
}
