// Package kv provides a Redis-like key-value store abstraction with
// in-memory and Redis-backed implementations.
//
// The Store interface covers the string, counter and key-expiry
// operations the application needs for caching rendered pages and
// holding session tokens. Backends self-register via RegisterBackend;
// NewStoreFromConfig picks one and, for the Redis backend, falls back
// to the in-memory store when Redis is unreachable at startup.
//
// Example:
//
//	store, err := kv.NewStoreFromConfig(kv.Config{Backend: kv.BackendMemory})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close()
//
//	err = store.Set(ctx, "key", []byte("value"), 10*time.Second)
//	value, err := store.Get(ctx, "key")
//	if errors.Is(err, kv.ErrNotFound) {
//		// key missing or expired
//	}
//
// The in-memory implementation supports full TTL semantics with a
// background janitor, which makes it usable in tests and in dev
// environments without a Redis instance.
package kv
