package postgres

import (
	"context"
	"fmt"

	"github.com/yatube/yatube-backend/internal/models"
)

type commentStore struct {
	s *Store
}

func (c *commentStore) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (post_id, author_id, text)
		VALUES ($1, $2, $3)
		RETURNING id, created
	`

	err := c.s.pool.QueryRow(ctx, query,
		comment.PostID,
		comment.AuthorID,
		comment.Text,
	).Scan(&comment.ID, &comment.Created)
	if err != nil {
		if mapped := mapError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to create comment: %w", err)
	}

	return nil
}

func (c *commentStore) ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error) {
	query := `
		SELECT c.id, c.post_id, c.author_id, c.text, c.created,
		       u.username, u.email, u.joined_at
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.post_id = $1
		ORDER BY c.created, c.id
	`

	rows, err := c.s.pool.Query(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		var (
			comment models.Comment
			author  models.User
		)
		err := rows.Scan(
			&comment.ID, &comment.PostID, &comment.AuthorID, &comment.Text, &comment.Created,
			&author.Username, &author.Email, &author.JoinedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		author.ID = comment.AuthorID
		comment.Author = &author
		comments = append(comments, &comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return comments, nil
}
