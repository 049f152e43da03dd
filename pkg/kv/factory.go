package kv

import (
	"context"
	"fmt"
	"time"
)

// Backend identifies a storage backend.
type Backend string

const (
	// BackendMemory uses the in-memory store.
	BackendMemory Backend = "memory"
	// BackendRedis uses Redis as the backend.
	BackendRedis Backend = "redis"
)

// LogFunc receives factory log events as a message plus key/value pairs.
type LogFunc func(msg string, keysAndValues ...any)

// Config holds configuration for creating a Store instance.
type Config struct {
	// Backend specifies which storage backend to use.
	Backend Backend

	// RedisURL is the connection string for Redis (required when Backend
	// is "redis"). Plain "host:port" addresses are accepted too.
	RedisURL string

	// JanitorInterval controls how often the in-memory store cleans up
	// expired keys. Default: 30 seconds.
	JanitorInterval time.Duration

	// StartupProbeTimeout controls how long to wait for Redis at startup.
	// Default: 1 second.
	StartupProbeTimeout time.Duration

	// Logger is used for factory events. If nil, no logging occurs.
	Logger LogFunc
}

// StoreFactory creates a Store instance.
type StoreFactory func(cfg Config) (Store, error)

var factories = make(map[Backend]StoreFactory)

// RegisterBackend registers a store factory for a given backend.
// Backend packages call this from init.
func RegisterBackend(backend Backend, factory StoreFactory) {
	factories[backend] = factory
}

// NewStoreFromConfig creates a Store based on the provided configuration.
// When the Redis backend is requested but unreachable, the in-memory
// store is returned instead so the application can keep serving.
func NewStoreFromConfig(cfg Config) (Store, error) {
	if cfg.JanitorInterval == 0 {
		cfg.JanitorInterval = 30 * time.Second
	}
	if cfg.StartupProbeTimeout == 0 {
		cfg.StartupProbeTimeout = time.Second
	}

	switch cfg.Backend {
	case BackendMemory:
		factory, ok := factories[BackendMemory]
		if !ok {
			return nil, fmt.Errorf("memory backend not registered")
		}
		return factory(cfg)

	case BackendRedis:
		return newRedisOrFallback(cfg)

	default:
		return nil, fmt.Errorf("unsupported backend: %s (supported: %s, %s)",
			cfg.Backend, BackendMemory, BackendRedis)
	}
}

func newRedisOrFallback(cfg Config) (Store, error) {
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("redis URL is required when backend is %q", BackendRedis)
	}

	redisFactory, ok := factories[BackendRedis]
	if !ok {
		return nil, fmt.Errorf("redis backend not registered")
	}
	memoryFactory, ok := factories[BackendMemory]
	if !ok {
		return nil, fmt.Errorf("memory backend not registered")
	}

	fallback := func(reason error) (Store, error) {
		if cfg.Logger != nil {
			cfg.Logger("Redis unavailable; using in-memory store", "error", reason.Error())
		}
		return memoryFactory(cfg)
	}

	store, err := redisFactory(cfg)
	if err != nil {
		return fallback(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.StartupProbeTimeout)
	defer cancel()

	if err := store.Ping(ctx); err != nil {
		store.Close()
		return fallback(err)
	}

	return store, nil
}
