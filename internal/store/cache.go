package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yatube/yatube-backend/internal/metrics"
	"github.com/yatube/yatube-backend/pkg/kv"
	_ "github.com/yatube/yatube-backend/pkg/kv/memory" // register fallback backend
	_ "github.com/yatube/yatube-backend/pkg/kv/redis"  // register redis backend
)

// ErrCacheMiss is returned when a key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Cache key prefixes.
const (
	// KeyIndexPage holds the rendered index page HTML. The page is
	// served from here until the TTL elapses or Flush is called, even
	// when the underlying posts change. That staleness window is a
	// deliberate trade-off, not a bug.
	KeyIndexPage = "yt:pages:index"

	keySessionPrefix = "yt:sessions:"
)

// Cache wraps a kv.Store with the application's typed accessors. When
// Redis is unreachable at startup it transparently runs on the
// in-memory backend.
type Cache struct {
	store   kv.Store
	logger  *zap.SugaredLogger
	metrics *metrics.Metrics
}

func NewCache(redisAddr string, logger *zap.SugaredLogger, m *metrics.Metrics) (*Cache, error) {
	var logFn kv.LogFunc
	if logger != nil {
		logFn = func(msg string, keysAndValues ...any) {
			logger.Warnw(msg, keysAndValues...)
		}
	}

	store, err := kv.NewStoreFromConfig(kv.Config{
		Backend:  kv.BackendRedis,
		RedisURL: redisAddr,
		Logger:   logFn,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create cache store: %w", err)
	}

	return &Cache{store: store, logger: logger, metrics: m}, nil
}

// NewCacheWithStore builds a Cache over an existing kv.Store. Used by
// tests and by callers that manage the store themselves.
func NewCacheWithStore(store kv.Store, logger *zap.SugaredLogger, m *metrics.Metrics) *Cache {
	return &Cache{store: store, logger: logger, metrics: m}
}

// GetPage returns previously rendered page bytes.
func (c *Cache) GetPage(ctx context.Context, key string) ([]byte, error) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			if c.metrics != nil {
				c.metrics.RecordCacheMiss(ctx, key)
			}
			return nil, ErrCacheMiss
		}
		if c.logger != nil {
			c.logger.Errorw("Cache get error", "key", key, "error", err)
		}
		return nil, fmt.Errorf("cache get error: %w", err)
	}
	if c.metrics != nil {
		c.metrics.RecordCacheHit(ctx, key)
	}
	return data, nil
}

// SetPage stores rendered page bytes for ttl.
func (c *Cache) SetPage(ctx context.Context, key string, body []byte, ttl time.Duration) error {
	if err := c.store.Set(ctx, key, body, ttl); err != nil {
		if c.logger != nil {
			c.logger.Errorw("Cache set error", "key", key, "error", err)
		}
		return fmt.Errorf("cache set error: %w", err)
	}
	return nil
}

// Get unmarshals a JSON value into dest.
func (c *Cache) Get(ctx context.Context, key string, dest any) error {
	data, err := c.GetPage(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("cache unmarshal error: %w", err)
	}
	return nil
}

// Set marshals value as JSON and stores it for ttl.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}
	return c.SetPage(ctx, key, data, ttl)
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if _, err := c.store.Del(ctx, keys...); err != nil {
		if c.logger != nil {
			c.logger.Errorw("Cache delete error", "keys", keys, "error", err)
		}
		return fmt.Errorf("cache delete error: %w", err)
	}
	return nil
}

func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	count, err := c.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("cache exists error: %w", err)
	}
	return count > 0, nil
}

// Flush drops every cached entry. It is the only way to invalidate the
// index page before its TTL elapses. Sessions live in the same store,
// so a flush also logs everyone out.
func (c *Cache) Flush(ctx context.Context) error {
	if err := c.store.FlushAll(ctx); err != nil {
		return fmt.Errorf("cache flush error: %w", err)
	}
	return nil
}

// Session helpers. Sessions are opaque tokens mapping to a user ID.

func SessionKey(token string) string {
	return keySessionPrefix + token
}

func (c *Cache) GetSession(ctx context.Context, token string) (int64, error) {
	var userID int64
	if err := c.Get(ctx, SessionKey(token), &userID); err != nil {
		return 0, err
	}
	return userID, nil
}

func (c *Cache) SetSession(ctx context.Context, token string, userID int64, ttl time.Duration) error {
	return c.Set(ctx, SessionKey(token), userID, ttl)
}

func (c *Cache) DeleteSession(ctx context.Context, token string) error {
	return c.Delete(ctx, SessionKey(token))
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}

func (c *Cache) Close() error {
	return c.store.Close()
}
