package memory

import (
	"context"
	"time"

	"github.com/yatube/yatube-backend/internal/models"
	"github.com/yatube/yatube-backend/internal/storage"
)

type userStore struct {
	s *Store
}

func (u *userStore) Create(ctx context.Context, user *models.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	if _, taken := u.s.usersByName[user.Username]; taken {
		return storage.ErrAlreadyExists
	}
	for _, existing := range u.s.users {
		if existing.Email == user.Email {
			return storage.ErrAlreadyExists
		}
	}

	u.s.nextUserID++
	user.ID = u.s.nextUserID
	if user.JoinedAt.IsZero() {
		user.JoinedAt = time.Now().UTC()
	}

	stored := *user
	u.s.users[user.ID] = &stored
	u.s.usersByName[user.Username] = user.ID
	return nil
}

func (u *userStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	return u.s.userCopy(id)
}

func (u *userStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	id, ok := u.s.usersByName[username]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return u.s.userCopy(id)
}

func (u *userStore) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	user, ok := u.s.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

// userCopy returns a defensive copy. Caller must hold the lock.
func (s *Store) userCopy(id int64) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *user
	return &cp, nil
}
