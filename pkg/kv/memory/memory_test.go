package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/yatube/yatube-backend/pkg/kv"
	"github.com/yatube/yatube-backend/pkg/kv/kvtest"
)

func TestConformance(t *testing.T) {
	kvtest.RunConformanceTests(t, func(t *testing.T) kv.Store {
		return New(0) // lazy expiry only, no janitor goroutine in tests
	})
}

func TestJanitorEvictsExpiredKeys(t *testing.T) {
	store := New(20 * time.Millisecond)
	defer store.Close()

	ctx := context.Background()
	if err := store.Set(ctx, "k", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	time.Sleep(60 * time.Millisecond)

	// The janitor should have removed the key without any access.
	store.mu.RLock()
	_, exists := store.values["k"]
	store.mu.RUnlock()
	if exists {
		t.Error("expired key still present after janitor run")
	}
}

func TestGetReturnsCopy(t *testing.T) {
	store := New(0)
	defer store.Close()

	ctx := context.Background()
	store.Set(ctx, "k", []byte("abc"))

	got, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	got[0] = 'X'

	again, _ := store.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("stored value mutated through returned slice: %q", again)
	}
}

func TestConcurrentAccess(t *testing.T) {
	store := New(0)
	defer store.Close()

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				store.Set(ctx, "shared", []byte("v"))
				store.Get(ctx, "shared")
				store.IncrBy(ctx, "counter", 1)
			}
		}()
	}
	wg.Wait()

	n, err := store.IncrBy(ctx, "counter", 0)
	if err != nil {
		t.Fatalf("IncrBy failed: %v", err)
	}
	if n != 1600 {
		t.Errorf("counter = %d, want 1600", n)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	store := New(10 * time.Millisecond)
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	// Closed store still serves lazy reads.
	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, kv.ErrNotFound) {
		t.Errorf("Get after Close error = %v, want ErrNotFound", err)
	}
}
