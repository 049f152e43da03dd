package postgres

import (
	"context"
	"fmt"

	"github.com/yatube/yatube-backend/internal/models"
	"github.com/yatube/yatube-backend/internal/storage"
)

type userStore struct {
	s *Store
}

func (u *userStore) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, joined_at
	`

	err := u.s.pool.QueryRow(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
	).Scan(&user.ID, &user.JoinedAt)
	if err != nil {
		if mapped := mapError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (u *userStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return u.getOne(ctx, `WHERE id = $1`, id)
}

func (u *userStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return u.getOne(ctx, `WHERE username = $1`, username)
}

func (u *userStore) getOne(ctx context.Context, where string, arg any) (*models.User, error) {
	query := `SELECT id, username, email, password_hash, joined_at FROM users ` + where

	var user models.User
	err := u.s.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.JoinedAt,
	)
	if err != nil {
		if mapped := mapError(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

func (u *userStore) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := u.s.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
