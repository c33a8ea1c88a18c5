package port

import (
	"context"
	"time"
)

// Cache is the minimal key-value contract the service needs. The only
// consumer today is the presence roster mirror, so the port stays small:
// string values, caller-driven timeouts, concurrency-safe implementations.
type Cache interface {
	// Get fetches the value for key, returning ErrMiss when the key is
	// absent. Non-nil errors other than ErrMiss indicate transport or
	// server failures.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value at key. Zero or negative TTL means no expiration.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Del removes keys and returns how many existed.
	Del(ctx context.Context, keys ...string) (int64, error)

	// Ping verifies connectivity with the backend.
	Ping(ctx context.Context) error

	// Close releases resources held by the adapter.
	Close() error
}

// ErrMiss signals a cache miss in a typed way so callers can tell misses
// apart from transport errors.
var ErrMiss = errMiss{}

type errMiss struct{}

func (e errMiss) Error() string { return "cache: miss" }
