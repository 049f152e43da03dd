// Package postgres implements the storage interfaces over pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/yatube/yatube-backend/internal/storage"
)

func init() {
	storage.RegisterBackend("postgres", func(ctx context.Context, dsn string, logger *zap.SugaredLogger) (storage.Storage, error) {
		return New(ctx, dsn, logger)
	})
}

type Store struct {
	pool   *pgxpool.Pool
	logger *zap.SugaredLogger
}

func New(ctx context.Context, dsn string, logger *zap.SugaredLogger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return &Store{pool: pool, logger: logger}, nil
}

func (s *Store) Users() storage.UserStore       { return &userStore{s} }
func (s *Store) Groups() storage.GroupStore     { return &groupStore{s} }
func (s *Store) Posts() storage.PostStore       { return &postStore{s} }
func (s *Store) Comments() storage.CommentStore { return &commentStore{s} }
func (s *Store) Follows() storage.FollowStore   { return &followStore{s} }

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() {
	s.pool.Close()
}

// uniqueViolation is the Postgres error code for duplicate keys.
const uniqueViolation = "23505"

// mapError translates pgx errors into the storage sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return storage.ErrAlreadyExists
	}
	return err
}

var _ storage.Storage = (*Store)(nil)
