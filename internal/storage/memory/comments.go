package memory

import (
	"context"
	"sort"
	"time"

	"github.com/yatube/yatube-backend/internal/models"
	"github.com/yatube/yatube-backend/internal/storage"
)

type commentStore struct {
	s *Store
}

func (c *commentStore) Create(ctx context.Context, comment *models.Comment) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	// A comment must reference an existing post and author.
	if _, ok := c.s.posts[comment.PostID]; !ok {
		return storage.ErrNotFound
	}
	if _, ok := c.s.users[comment.AuthorID]; !ok {
		return storage.ErrNotFound
	}

	c.s.nextCommentID++
	comment.ID = c.s.nextCommentID
	if comment.Created.IsZero() {
		comment.Created = time.Now().UTC()
	}

	stored := *comment
	stored.Author = nil
	c.s.comments[comment.ID] = &stored
	return nil
}

func (c *commentStore) ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	var comments []*models.Comment
	for _, comment := range c.s.comments {
		if comment.PostID != postID {
			continue
		}
		cp := *comment
		if author, ok := c.s.users[comment.AuthorID]; ok {
			a := *author
			cp.Author = &a
		}
		comments = append(comments, &cp)
	}

	// Oldest first, ties broken by insertion order.
	sort.Slice(comments, func(i, j int) bool {
		if comments[i].Created.Equal(comments[j].Created) {
			return comments[i].ID < comments[j].ID
		}
		return comments[i].Created.Before(comments[j].Created)
	})
	return comments, nil
}
