package postgres

import (
	"context"
	"fmt"

	"github.com/yatube/yatube-backend/internal/models"
	"github.com/yatube/yatube-backend/internal/storage"
)

type postStore struct {
	s *Store
}

// postColumns joins author unconditionally and group when tagged,
// mirroring what every listing screen renders.
const postColumns = `
	p.id, p.text, p.pub_date, p.author_id, p.group_id, p.image,
	u.username, u.email, u.joined_at,
	g.title, g.slug, g.description
`

const postFrom = `
	FROM posts p
	JOIN users u ON u.id = p.author_id
	LEFT JOIN groups g ON g.id = p.group_id
`

func (p *postStore) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (text, author_id, group_id, image)
		VALUES ($1, $2, $3, $4)
		RETURNING id, pub_date
	`

	err := p.s.pool.QueryRow(ctx, query,
		post.Text,
		post.AuthorID,
		post.GroupID,
		post.Image,
	).Scan(&post.ID, &post.PubDate)
	if err != nil {
		if mapped := mapError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to create post: %w", err)
	}

	return nil
}

func (p *postStore) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	query := `SELECT ` + postColumns + postFrom + ` WHERE p.id = $1`

	post, err := scanPost(p.s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if mapped := mapError(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return post, nil
}

func (p *postStore) Update(ctx context.Context, post *models.Post) error {
	tag, err := p.s.pool.Exec(ctx, `
		UPDATE posts SET text = $2, group_id = $3, image = $4 WHERE id = $1
	`, post.ID, post.Text, post.GroupID, post.Image)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (p *postStore) Delete(ctx context.Context, id int64) error {
	tag, err := p.s.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (p *postStore) List(ctx context.Context, filter storage.PostFilter, offset, limit int) ([]*models.Post, error) {
	where, args := buildPostFilter(filter)
	args = append(args, limit, offset)

	query := fmt.Sprintf(`SELECT %s %s %s ORDER BY p.pub_date DESC, p.id DESC LIMIT $%d OFFSET $%d`,
		postColumns, postFrom, where, len(args)-1, len(args))

	rows, err := p.s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return posts, nil
}

func (p *postStore) Count(ctx context.Context, filter storage.PostFilter) (int64, error) {
	where, args := buildPostFilter(filter)

	var total int64
	err := p.s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM posts p `+where, args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return total, nil
}

func buildPostFilter(filter storage.PostFilter) (string, []any) {
	var args []any
	switch {
	case filter.GroupID != nil:
		args = append(args, *filter.GroupID)
		return `WHERE p.group_id = $1`, args
	case filter.AuthorID != nil:
		args = append(args, *filter.AuthorID)
		return `WHERE p.author_id = $1`, args
	case filter.FollowedBy != nil:
		args = append(args, *filter.FollowedBy)
		return `WHERE p.author_id IN (SELECT author_id FROM follows WHERE user_id = $1)`, args
	default:
		return ``, args
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*models.Post, error) {
	var (
		post   models.Post
		author models.User
		gTitle *string
		gSlug  *string
		gDesc  *string
	)

	err := row.Scan(
		&post.ID, &post.Text, &post.PubDate, &post.AuthorID, &post.GroupID, &post.Image,
		&author.Username, &author.Email, &author.JoinedAt,
		&gTitle, &gSlug, &gDesc,
	)
	if err != nil {
		return nil, err
	}

	author.ID = post.AuthorID
	post.Author = &author

	if post.GroupID != nil {
		post.Group = &models.Group{
			ID:          *post.GroupID,
			Title:       deref(gTitle),
			Slug:        deref(gSlug),
			Description: deref(gDesc),
		}
	}

	return &post, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
