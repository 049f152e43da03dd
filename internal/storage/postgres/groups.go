package postgres

import (
	"context"
	"fmt"

	"github.com/yatube/yatube-backend/internal/models"
)

type groupStore struct {
	s *Store
}

func (g *groupStore) Create(ctx context.Context, group *models.Group) error {
	query := `
		INSERT INTO groups (title, slug, description)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := g.s.pool.QueryRow(ctx, query,
		group.Title,
		group.Slug,
		group.Description,
	).Scan(&group.ID)
	if err != nil {
		if mapped := mapError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to create group: %w", err)
	}

	return nil
}

func (g *groupStore) GetByID(ctx context.Context, id int64) (*models.Group, error) {
	return g.getOne(ctx, `WHERE id = $1`, id)
}

func (g *groupStore) GetBySlug(ctx context.Context, slug string) (*models.Group, error) {
	return g.getOne(ctx, `WHERE slug = $1`, slug)
}

func (g *groupStore) getOne(ctx context.Context, where string, arg any) (*models.Group, error) {
	query := `SELECT id, title, slug, description FROM groups ` + where

	var group models.Group
	err := g.s.pool.QueryRow(ctx, query, arg).Scan(
		&group.ID,
		&group.Title,
		&group.Slug,
		&group.Description,
	)
	if err != nil {
		if mapped := mapError(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	return &group, nil
}

func (g *groupStore) List(ctx context.Context) ([]*models.Group, error) {
	rows, err := g.s.pool.Query(ctx,
		`SELECT id, title, slug, description FROM groups ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		var group models.Group
		if err := rows.Scan(&group.ID, &group.Title, &group.Slug, &group.Description); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, &group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return groups, nil
}
