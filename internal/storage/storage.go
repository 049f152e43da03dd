// Package storage defines the persistence interfaces for the blogging
// domain and the sentinel errors both backends map onto.
package storage

import (
	"context"
	"errors"

	"github.com/yatube/yatube-backend/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists is returned on unique-constraint conflicts.
	ErrAlreadyExists = errors.New("record already exists")
)

// PostFilter narrows post listings. At most one field is normally set;
// a zero filter selects all posts. Listings are always ordered by
// publish time descending.
type PostFilter struct {
	// GroupID limits to posts tagged with the group.
	GroupID *int64
	// AuthorID limits to posts by the author.
	AuthorID *int64
	// FollowedBy limits to posts by authors the given user follows.
	FollowedBy *int64
}

type UserStore interface {
	// Create inserts a user and assigns its ID. Returns
	// ErrAlreadyExists when the username or email is taken.
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

type GroupStore interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id int64) (*models.Group, error)
	GetBySlug(ctx context.Context, slug string) (*models.Group, error)
	// List returns every group ordered by title, for the post form's
	// group selector.
	List(ctx context.Context) ([]*models.Group, error)
}

type PostStore interface {
	// Create inserts a post and assigns its ID and publish time.
	Create(ctx context.Context, post *models.Post) error
	// GetByID returns the post with its author and group populated.
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	// Update rewrites text, group and image of an existing post.
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id int64) error
	// List returns a window of posts matching the filter, newest
	// first, with authors and groups populated.
	List(ctx context.Context, filter PostFilter, offset, limit int) ([]*models.Post, error)
	Count(ctx context.Context, filter PostFilter) (int64, error)
}

type CommentStore interface {
	Create(ctx context.Context, comment *models.Comment) error
	// ListByPost returns a post's comments oldest first, with authors
	// populated.
	ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error)
}

type FollowStore interface {
	// Create records that user follows author. Repeated calls are
	// no-ops (get-or-create semantics).
	Create(ctx context.Context, userID, authorID int64) error
	// Delete removes the relationship, returning ErrNotFound when it
	// does not exist.
	Delete(ctx context.Context, userID, authorID int64) error
	Exists(ctx context.Context, userID, authorID int64) (bool, error)
}

// Storage bundles the per-entity stores over one backend.
type Storage interface {
	Users() UserStore
	Groups() GroupStore
	Posts() PostStore
	Comments() CommentStore
	Follows() FollowStore

	Ping(ctx context.Context) error
	Close()
}
