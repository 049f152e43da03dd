// Package memory implements the storage interfaces in process memory.
// It backs handler tests and the YT_USE_IN_MEMORY dev mode.
package memory

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/yatube/yatube-backend/internal/models"
	"github.com/yatube/yatube-backend/internal/storage"
)

func init() {
	storage.RegisterBackend("memory", func(ctx context.Context, dsn string, logger *zap.SugaredLogger) (storage.Storage, error) {
		return New(), nil
	})
}

type followKey struct {
	userID   int64
	authorID int64
}

// Store holds every entity map behind one lock so cross-entity reads
// (post listings with joined authors) stay consistent.
type Store struct {
	mu sync.RWMutex

	users       map[int64]*models.User
	usersByName map[string]int64
	groups      map[int64]*models.Group
	posts       map[int64]*models.Post
	comments    map[int64]*models.Comment
	follows     map[followKey]struct{}

	nextUserID    int64
	nextGroupID   int64
	nextPostID    int64
	nextCommentID int64
}

func New() *Store {
	return &Store{
		users:       make(map[int64]*models.User),
		usersByName: make(map[string]int64),
		groups:      make(map[int64]*models.Group),
		posts:       make(map[int64]*models.Post),
		comments:    make(map[int64]*models.Comment),
		follows:     make(map[followKey]struct{}),
	}
}

func (s *Store) Users() storage.UserStore       { return &userStore{s} }
func (s *Store) Groups() storage.GroupStore     { return &groupStore{s} }
func (s *Store) Posts() storage.PostStore       { return &postStore{s} }
func (s *Store) Comments() storage.CommentStore { return &commentStore{s} }
func (s *Store) Follows() storage.FollowStore   { return &followStore{s} }

func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) Close() {}

var _ storage.Storage = (*Store)(nil)
