package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yatube/yatube-backend/pkg/kv"
)

// Store is a Redis-backed implementation of the kv.Store interface.
type Store struct {
	client *redis.Client
}

// New creates a new Redis-backed store. addr may be a redis:// URL or a
// plain "host:port" address.
func New(addr string) (*Store, error) {
	opt, err := redis.ParseURL(addr)
	if err != nil {
		// Plain address form
		opt = &redis.Options{Addr: addr}
	}

	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second

	return &Store{client: redis.NewClient(opt)}, nil
}

// IsConnectionError reports whether err is a network-level failure, as
// opposed to a semantic reply like redis.Nil.
func IsConnectionError(err error) bool {
	if err == nil || err == redis.Nil || errors.Is(err, context.Canceled) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, fragment := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"no such host",
		"network is unreachable",
		"timeout",
		"connection closed",
		"eof",
	} {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

func wrapConnectionError(err error) error {
	if err == nil {
		return nil
	}
	if IsConnectionError(err) {
		return fmt.Errorf("%w: %v", kv.ErrBackendUnavailable, err)
	}
	return err
}

func (s *Store) Set(ctx context.Context, key string, value []byte, ttl ...time.Duration) error {
	var expiry time.Duration
	if len(ttl) > 0 {
		expiry = ttl[0]
	}
	return wrapConnectionError(s.client.Set(ctx, key, value, expiry).Err())
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, kv.ErrNotFound
	}
	if err != nil {
		return nil, wrapConnectionError(err)
	}
	return value, nil
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
	n, err := s.client.Del(ctx, keys...).Result()
	return n, wrapConnectionError(err)
}

func (s *Store) Exists(ctx context.Context, keys ...string) (int64, error) {
	n, err := s.client.Exists(ctx, keys...).Result()
	return n, wrapConnectionError(err)
}

func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.Expire(ctx, key, ttl).Result()
	return ok, wrapConnectionError(err)
}

func (s *Store) TTL(ctx context.Context, key string) (time.Duration, error) {
	d, err := s.client.TTL(ctx, key).Result()
	return d, wrapConnectionError(err)
}

func (s *Store) IncrBy(ctx context.Context, key string, n int64) (int64, error) {
	v, err := s.client.IncrBy(ctx, key, n).Result()
	return v, wrapConnectionError(err)
}

func (s *Store) FlushAll(ctx context.Context) error {
	return wrapConnectionError(s.client.FlushAll(ctx).Err())
}

func (s *Store) Ping(ctx context.Context) error {
	return wrapConnectionError(s.client.Ping(ctx).Err())
}

func (s *Store) Close() error {
	return s.client.Close()
}

var _ kv.Store = (*Store)(nil)
