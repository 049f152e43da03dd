package memory

import (
	"context"
	"sort"
	"time"

	"github.com/yatube/yatube-backend/internal/models"
	"github.com/yatube/yatube-backend/internal/storage"
)

type postStore struct {
	s *Store
}

func (p *postStore) Create(ctx context.Context, post *models.Post) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	if _, ok := p.s.users[post.AuthorID]; !ok {
		return storage.ErrNotFound
	}
	if post.GroupID != nil {
		if _, ok := p.s.groups[*post.GroupID]; !ok {
			return storage.ErrNotFound
		}
	}

	p.s.nextPostID++
	post.ID = p.s.nextPostID
	if post.PubDate.IsZero() {
		post.PubDate = time.Now().UTC()
	}

	stored := *post
	stored.Author = nil
	stored.Group = nil
	p.s.posts[post.ID] = &stored
	return nil
}

func (p *postStore) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()

	post, ok := p.s.posts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return p.s.postWithRelations(post), nil
}

func (p *postStore) Update(ctx context.Context, post *models.Post) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	stored, ok := p.s.posts[post.ID]
	if !ok {
		return storage.ErrNotFound
	}
	if post.GroupID != nil {
		if _, ok := p.s.groups[*post.GroupID]; !ok {
			return storage.ErrNotFound
		}
	}

	stored.Text = post.Text
	stored.GroupID = post.GroupID
	stored.Image = post.Image
	return nil
}

func (p *postStore) Delete(ctx context.Context, id int64) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	if _, ok := p.s.posts[id]; !ok {
		return storage.ErrNotFound
	}
	delete(p.s.posts, id)
	for cid, comment := range p.s.comments {
		if comment.PostID == id {
			delete(p.s.comments, cid)
		}
	}
	return nil
}

func (p *postStore) List(ctx context.Context, filter storage.PostFilter, offset, limit int) ([]*models.Post, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()

	matched := p.s.matchPosts(filter)

	// Newest first, ties broken by insertion order.
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].PubDate.Equal(matched[j].PubDate) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].PubDate.After(matched[j].PubDate)
	})

	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(matched) {
		end = len(matched)
	}

	window := make([]*models.Post, 0, end-offset)
	for _, post := range matched[offset:end] {
		window = append(window, p.s.postWithRelations(post))
	}
	return window, nil
}

func (p *postStore) Count(ctx context.Context, filter storage.PostFilter) (int64, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()
	return int64(len(p.s.matchPosts(filter))), nil
}

// matchPosts applies the filter. Caller must hold the lock.
func (s *Store) matchPosts(filter storage.PostFilter) []*models.Post {
	var matched []*models.Post
	for _, post := range s.posts {
		switch {
		case filter.GroupID != nil:
			if post.GroupID == nil || *post.GroupID != *filter.GroupID {
				continue
			}
		case filter.AuthorID != nil:
			if post.AuthorID != *filter.AuthorID {
				continue
			}
		case filter.FollowedBy != nil:
			if _, ok := s.follows[followKey{userID: *filter.FollowedBy, authorID: post.AuthorID}]; !ok {
				continue
			}
		}
		matched = append(matched, post)
	}
	return matched
}

// postWithRelations copies a post and attaches its author and group.
// Caller must hold the lock.
func (s *Store) postWithRelations(post *models.Post) *models.Post {
	cp := *post
	if author, ok := s.users[post.AuthorID]; ok {
		a := *author
		cp.Author = &a
	}
	if post.GroupID != nil {
		if group, ok := s.groups[*post.GroupID]; ok {
			g := *group
			cp.Group = &g
		}
	}
	return &cp
}
