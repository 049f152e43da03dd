package memory

import (
	"context"

	"github.com/yatube/yatube-backend/internal/storage"
)

type followStore struct {
	s *Store
}

func (f *followStore) Create(ctx context.Context, userID, authorID int64) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	if _, ok := f.s.users[userID]; !ok {
		return storage.ErrNotFound
	}
	if _, ok := f.s.users[authorID]; !ok {
		return storage.ErrNotFound
	}

	// Repeated follows are no-ops.
	f.s.follows[followKey{userID: userID, authorID: authorID}] = struct{}{}
	return nil
}

func (f *followStore) Delete(ctx context.Context, userID, authorID int64) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	key := followKey{userID: userID, authorID: authorID}
	if _, ok := f.s.follows[key]; !ok {
		return storage.ErrNotFound
	}
	delete(f.s.follows, key)
	return nil
}

func (f *followStore) Exists(ctx context.Context, userID, authorID int64) (bool, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()

	_, ok := f.s.follows[followKey{userID: userID, authorID: authorID}]
	return ok, nil
}
