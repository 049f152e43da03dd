package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key is not found or has expired.
var ErrNotFound = errors.New("not found")

// ErrBackendUnavailable is returned when the backend storage is unavailable.
var ErrBackendUnavailable = errors.New("backend unavailable")

// Store defines a minimal Redis-like key-value store with TTL support.
// It backs the rendered-page cache and the session store.
type Store interface {
	// String operations
	Set(ctx context.Context, key string, value []byte, ttl ...time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	SetString(ctx context.Context, key string, value string, ttl ...time.Duration) error
	GetString(ctx context.Context, key string) (string, error)

	// Key operations
	Del(ctx context.Context, keys ...string) (int64, error)
	Exists(ctx context.Context, keys ...string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	TTL(ctx context.Context, key string) (time.Duration, error)

	// Counter operations
	IncrBy(ctx context.Context, key string, n int64) (int64, error)

	// FlushAll removes every key. It is the only bulk-invalidation hook
	// the page cache exposes.
	FlushAll(ctx context.Context) error

	// Health check
	Ping(ctx context.Context) error

	// Cleanup
	Close() error
}
