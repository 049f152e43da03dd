package memory

import (
	"context"
	"sort"

	"github.com/yatube/yatube-backend/internal/models"
	"github.com/yatube/yatube-backend/internal/storage"
)

type groupStore struct {
	s *Store
}

func (g *groupStore) Create(ctx context.Context, group *models.Group) error {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()

	for _, existing := range g.s.groups {
		if existing.Slug == group.Slug {
			return storage.ErrAlreadyExists
		}
	}

	g.s.nextGroupID++
	group.ID = g.s.nextGroupID

	stored := *group
	g.s.groups[group.ID] = &stored
	return nil
}

func (g *groupStore) GetByID(ctx context.Context, id int64) (*models.Group, error) {
	g.s.mu.RLock()
	defer g.s.mu.RUnlock()
	return g.s.groupCopy(id)
}

func (g *groupStore) GetBySlug(ctx context.Context, slug string) (*models.Group, error) {
	g.s.mu.RLock()
	defer g.s.mu.RUnlock()

	for id, group := range g.s.groups {
		if group.Slug == slug {
			return g.s.groupCopy(id)
		}
	}
	return nil, storage.ErrNotFound
}

func (g *groupStore) List(ctx context.Context) ([]*models.Group, error) {
	g.s.mu.RLock()
	defer g.s.mu.RUnlock()

	groups := make([]*models.Group, 0, len(g.s.groups))
	for _, group := range g.s.groups {
		cp := *group
		groups = append(groups, &cp)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Title < groups[j].Title })
	return groups, nil
}

// groupCopy returns a defensive copy. Caller must hold the lock.
func (s *Store) groupCopy(id int64) (*models.Group, error) {
	group, ok := s.groups[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *group
	return &cp, nil
}
