package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/yatube/yatube-backend/pkg/kv"
)

// Store is an in-memory implementation of the kv.Store interface.
type Store struct {
	mu          sync.RWMutex
	values      map[string][]byte
	expirations map[string]time.Time

	janitorInterval time.Duration
	janitorStop     chan struct{}
	janitorDone     chan struct{}
	closeOnce       sync.Once
}

// New creates a new in-memory store. A positive janitorInterval starts a
// background goroutine that evicts expired keys; expired keys are also
// dropped lazily on access either way.
func New(janitorInterval time.Duration) *Store {
	s := &Store{
		values:          make(map[string][]byte),
		expirations:     make(map[string]time.Time),
		janitorInterval: janitorInterval,
		janitorStop:     make(chan struct{}),
		janitorDone:     make(chan struct{}),
	}

	if janitorInterval > 0 {
		go s.janitor()
	} else {
		close(s.janitorDone)
	}

	return s
}

func (s *Store) janitor() {
	defer close(s.janitorDone)
	ticker := time.NewTicker(s.janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.evictExpired()
		case <-s.janitorStop:
			return
		}
	}
}

func (s *Store) evictExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, expiry := range s.expirations {
		if now.After(expiry) {
			delete(s.values, key)
			delete(s.expirations, key)
		}
	}
}

// isExpired reports whether key has expired. Caller must hold the lock.
func (s *Store) isExpired(key string) bool {
	expiry, ok := s.expirations[key]
	return ok && time.Now().After(expiry)
}

// deleteUnsafe removes key. Caller must hold the write lock.
func (s *Store) deleteUnsafe(key string) {
	delete(s.values, key)
	delete(s.expirations, key)
}

func (s *Store) Set(ctx context.Context, key string, value []byte, ttl ...time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make([]byte, len(value))
	copy(cp, value)
	s.values[key] = cp

	delete(s.expirations, key)
	if len(ttl) > 0 && ttl[0] > 0 {
		s.expirations[key] = time.Now().Add(ttl[0])
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isExpired(key) {
		s.deleteUnsafe(key)
		return nil, kv.ErrNotFound
	}

	value, ok := s.values[key]
	if !ok {
		return nil, kv.ErrNotFound
	}

	cp := make([]byte, len(value))
	copy(cp, value)
	return cp, nil
}

func (s *Store) SetString(ctx context.Context, key string, value string, ttl ...time.Duration) error {
	return s.Set(ctx, key, []byte(value), ttl...)
}

func (s *Store) GetString(ctx context.Context, key string) (string, error) {
	value, err := s.Get(ctx, key)
	if err != nil {
		return "", err
	}
	return string(value), nil
}

func (s *Store) Del(ctx context.Context, keys ...string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for _, key := range keys {
		if s.isExpired(key) {
			s.deleteUnsafe(key)
			continue
		}
		if _, ok := s.values[key]; ok {
			s.deleteUnsafe(key)
			deleted++
		}
	}
	return deleted, nil
}

func (s *Store) Exists(ctx context.Context, keys ...string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, key := range keys {
		if s.isExpired(key) {
			s.deleteUnsafe(key)
			continue
		}
		if _, ok := s.values[key]; ok {
			count++
		}
	}
	return count, nil
}

func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isExpired(key) {
		s.deleteUnsafe(key)
		return false, nil
	}
	if _, ok := s.values[key]; !ok {
		return false, nil
	}

	if ttl <= 0 {
		s.deleteUnsafe(key)
		return true, nil
	}
	s.expirations[key] = time.Now().Add(ttl)
	return true, nil
}

func (s *Store) TTL(ctx context.Context, key string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isExpired(key) {
		s.deleteUnsafe(key)
		return -2 * time.Second, nil
	}
	if _, ok := s.values[key]; !ok {
		return -2 * time.Second, nil
	}

	expiry, ok := s.expirations[key]
	if !ok {
		return -1 * time.Second, nil
	}
	return time.Until(expiry), nil
}

func (s *Store) IncrBy(ctx context.Context, key string, n int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isExpired(key) {
		s.deleteUnsafe(key)
	}

	var current int64
	if raw, ok := s.values[key]; ok {
		parsed, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return 0, err
		}
		current = parsed
	}

	current += n
	s.values[key] = []byte(strconv.FormatInt(current, 10))
	return current, nil
}

func (s *Store) FlushAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values = make(map[string][]byte)
	s.expirations = make(map[string]time.Time)
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return nil
}

func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		close(s.janitorStop)
	})
	<-s.janitorDone
	return nil
}

var _ kv.Store = (*Store)(nil)
