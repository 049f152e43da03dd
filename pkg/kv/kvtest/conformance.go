// Package kvtest provides conformance tests for kv.Store implementations.
package kvtest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yatube/yatube-backend/pkg/kv"
)

// StoreFactory creates a fresh Store instance for testing.
type StoreFactory func(t *testing.T) kv.Store

// RunConformanceTests runs all conformance tests against a Store implementation.
func RunConformanceTests(t *testing.T, factory StoreFactory) {
	t.Run("StringOperations", func(t *testing.T) {
		testStringOperations(t, factory)
	})
	t.Run("KeyOperations", func(t *testing.T) {
		testKeyOperations(t, factory)
	})
	t.Run("TTLOperations", func(t *testing.T) {
		testTTLOperations(t, factory)
	})
	t.Run("CounterOperations", func(t *testing.T) {
		testCounterOperations(t, factory)
	})
	t.Run("FlushAll", func(t *testing.T) {
		testFlushAll(t, factory)
	})
	t.Run("HealthCheck", func(t *testing.T) {
		testHealthCheck(t, factory)
	})
}

func runWithStore(t *testing.T, factory StoreFactory, name string, test func(t *testing.T, store kv.Store)) {
	t.Run(name, func(t *testing.T) {
		store := factory(t)
		defer store.Close()
		test(t, store)
	})
}

func testStringOperations(t *testing.T, factory StoreFactory) {
	runWithStore(t, factory, "SetGet", func(t *testing.T, store kv.Store) {
		ctx := context.Background()

		if err := store.Set(ctx, "k", []byte("v")); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		got, err := store.Get(ctx, "k")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(got) != "v" {
			t.Errorf("Get = %q, want %q", got, "v")
		}
	})

	runWithStore(t, factory, "GetNonExistent", func(t *testing.T, store kv.Store) {
		_, err := store.Get(context.Background(), "missing")
		if !errors.Is(err, kv.ErrNotFound) {
			t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
		}
	})

	runWithStore(t, factory, "StringHelpers", func(t *testing.T, store kv.Store) {
		ctx := context.Background()

		if err := store.SetString(ctx, "k", "hello"); err != nil {
			t.Fatalf("SetString failed: %v", err)
		}
		got, err := store.GetString(ctx, "k")
		if err != nil {
			t.Fatalf("GetString failed: %v", err)
		}
		if got != "hello" {
			t.Errorf("GetString = %q, want %q", got, "hello")
		}
	})

	runWithStore(t, factory, "Overwrite", func(t *testing.T, store kv.Store) {
		ctx := context.Background()

		if err := store.Set(ctx, "k", []byte("one")); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		if err := store.Set(ctx, "k", []byte("two")); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		got, err := store.Get(ctx, "k")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(got) != "two" {
			t.Errorf("Get = %q, want %q", got, "two")
		}
	})
}

func testKeyOperations(t *testing.T, factory StoreFactory) {
	runWithStore(t, factory, "Del", func(t *testing.T, store kv.Store) {
		ctx := context.Background()

		store.Set(ctx, "a", []byte("1"))
		store.Set(ctx, "b", []byte("2"))

		n, err := store.Del(ctx, "a", "b", "missing")
		if err != nil {
			t.Fatalf("Del failed: %v", err)
		}
		if n != 2 {
			t.Errorf("Del = %d, want 2", n)
		}
		if _, err := store.Get(ctx, "a"); !errors.Is(err, kv.ErrNotFound) {
			t.Errorf("Get after Del error = %v, want ErrNotFound", err)
		}
	})

	runWithStore(t, factory, "Exists", func(t *testing.T, store kv.Store) {
		ctx := context.Background()

		store.Set(ctx, "a", []byte("1"))

		n, err := store.Exists(ctx, "a", "missing")
		if err != nil {
			t.Fatalf("Exists failed: %v", err)
		}
		if n != 1 {
			t.Errorf("Exists = %d, want 1", n)
		}
	})
}

func testTTLOperations(t *testing.T, factory StoreFactory) {
	runWithStore(t, factory, "SetWithTTL", func(t *testing.T, store kv.Store) {
		ctx := context.Background()

		if err := store.Set(ctx, "k", []byte("v"), 50*time.Millisecond); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		if _, err := store.Get(ctx, "k"); err != nil {
			t.Fatalf("Get before expiry failed: %v", err)
		}

		time.Sleep(80 * time.Millisecond)

		if _, err := store.Get(ctx, "k"); !errors.Is(err, kv.ErrNotFound) {
			t.Errorf("Get after expiry error = %v, want ErrNotFound", err)
		}
	})

	runWithStore(t, factory, "Expire", func(t *testing.T, store kv.Store) {
		ctx := context.Background()

		store.Set(ctx, "k", []byte("v"))

		ok, err := store.Expire(ctx, "k", 50*time.Millisecond)
		if err != nil {
			t.Fatalf("Expire failed: %v", err)
		}
		if !ok {
			t.Error("Expire = false, want true")
		}

		ok, err = store.Expire(ctx, "missing", time.Second)
		if err != nil {
			t.Fatalf("Expire failed: %v", err)
		}
		if ok {
			t.Error("Expire(missing) = true, want false")
		}

		time.Sleep(80 * time.Millisecond)
		if _, err := store.Get(ctx, "k"); !errors.Is(err, kv.ErrNotFound) {
			t.Errorf("Get after Expire error = %v, want ErrNotFound", err)
		}
	})

	runWithStore(t, factory, "TTL", func(t *testing.T, store kv.Store) {
		ctx := context.Background()

		store.Set(ctx, "forever", []byte("v"))
		store.Set(ctx, "bounded", []byte("v"), time.Minute)

		d, err := store.TTL(ctx, "forever")
		if err != nil {
			t.Fatalf("TTL failed: %v", err)
		}
		if d >= 0 {
			t.Errorf("TTL(forever) = %v, want negative (no expiry)", d)
		}

		d, err = store.TTL(ctx, "bounded")
		if err != nil {
			t.Fatalf("TTL failed: %v", err)
		}
		if d <= 0 || d > time.Minute {
			t.Errorf("TTL(bounded) = %v, want in (0, 1m]", d)
		}
	})
}

func testCounterOperations(t *testing.T, factory StoreFactory) {
	runWithStore(t, factory, "IncrBy", func(t *testing.T, store kv.Store) {
		ctx := context.Background()

		n, err := store.IncrBy(ctx, "counter", 5)
		if err != nil {
			t.Fatalf("IncrBy failed: %v", err)
		}
		if n != 5 {
			t.Errorf("IncrBy = %d, want 5", n)
		}

		n, err = store.IncrBy(ctx, "counter", -2)
		if err != nil {
			t.Fatalf("IncrBy failed: %v", err)
		}
		if n != 3 {
			t.Errorf("IncrBy = %d, want 3", n)
		}
	})

	runWithStore(t, factory, "IncrByInvalidValue", func(t *testing.T, store kv.Store) {
		ctx := context.Background()

		store.Set(ctx, "notanumber", []byte("abc"))
		if _, err := store.IncrBy(ctx, "notanumber", 1); err == nil {
			t.Error("IncrBy on non-numeric value succeeded, want error")
		}
	})
}

func testFlushAll(t *testing.T, factory StoreFactory) {
	runWithStore(t, factory, "RemovesEverything", func(t *testing.T, store kv.Store) {
		ctx := context.Background()

		store.Set(ctx, "a", []byte("1"))
		store.Set(ctx, "b", []byte("2"), time.Minute)

		if err := store.FlushAll(ctx); err != nil {
			t.Fatalf("FlushAll failed: %v", err)
		}

		n, err := store.Exists(ctx, "a", "b")
		if err != nil {
			t.Fatalf("Exists failed: %v", err)
		}
		if n != 0 {
			t.Errorf("Exists after FlushAll = %d, want 0", n)
		}
	})
}

func testHealthCheck(t *testing.T, factory StoreFactory) {
	runWithStore(t, factory, "Ping", func(t *testing.T, store kv.Store) {
		if err := store.Ping(context.Background()); err != nil {
			t.Errorf("Ping failed: %v", err)
		}
	})
}
