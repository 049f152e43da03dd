package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yatube/yatube-backend/internal/store"
)

// ErrNoSession is returned when a token is unknown or expired.
var ErrNoSession = errors.New("no such session")

// SessionManager issues opaque session tokens and maps them to user IDs
// in the cache store.
type SessionManager struct {
	cache *store.Cache
	ttl   time.Duration
}

func NewSessionManager(cache *store.Cache, ttl time.Duration) *SessionManager {
	return &SessionManager{cache: cache, ttl: ttl}
}

// Create issues a fresh token for the user.
func (m *SessionManager) Create(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	if err := m.cache.SetSession(ctx, token, userID, m.ttl); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return token, nil
}

// Resolve returns the user ID a token belongs to.
func (m *SessionManager) Resolve(ctx context.Context, token string) (int64, error) {
	userID, err := m.cache.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrCacheMiss) {
			return 0, ErrNoSession
		}
		return 0, fmt.Errorf("failed to resolve session: %w", err)
	}
	return userID, nil
}

// Destroy invalidates a token. Destroying an unknown token is a no-op.
func (m *SessionManager) Destroy(ctx context.Context, token string) error {
	return m.cache.DeleteSession(ctx, token)
}
