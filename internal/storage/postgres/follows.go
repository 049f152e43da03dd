package postgres

import (
	"context"
	"fmt"

	"github.com/yatube/yatube-backend/internal/storage"
)

type followStore struct {
	s *Store
}

func (f *followStore) Create(ctx context.Context, userID, authorID int64) error {
	// Get-or-create: a repeated follow is a no-op.
	query := `
		INSERT INTO follows (user_id, author_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, author_id) DO NOTHING
	`

	if _, err := f.s.pool.Exec(ctx, query, userID, authorID); err != nil {
		if mapped := mapError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to create follow: %w", err)
	}
	return nil
}

func (f *followStore) Delete(ctx context.Context, userID, authorID int64) error {
	tag, err := f.s.pool.Exec(ctx,
		`DELETE FROM follows WHERE user_id = $1 AND author_id = $2`, userID, authorID)
	if err != nil {
		return fmt.Errorf("failed to delete follow: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (f *followStore) Exists(ctx context.Context, userID, authorID int64) (bool, error) {
	var exists bool
	err := f.s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM follows WHERE user_id = $1 AND author_id = $2)`,
		userID, authorID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}
	return exists, nil
}
