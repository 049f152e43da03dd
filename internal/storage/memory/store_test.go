package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yatube/yatube-backend/internal/models"
	"github.com/yatube/yatube-backend/internal/storage"
)

func TestUserUniqueness(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Users().Create(ctx, &models.User{Username: "leo", Email: "leo@example.com"}))

	err := s.Users().Create(ctx, &models.User{Username: "leo", Email: "other@example.com"})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	err = s.Users().Create(ctx, &models.User{Username: "leo2", Email: "leo@example.com"})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)
}

func TestUserLookupAndPasswordUpdate(t *testing.T) {
	s := New()
	ctx := context.Background()

	user := &models.User{Username: "leo", Email: "leo@example.com", PasswordHash: "old"}
	require.NoError(t, s.Users().Create(ctx, user))

	byName, err := s.Users().GetByUsername(ctx, "leo")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	_, err = s.Users().GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.Users().UpdatePassword(ctx, user.ID, "new"))
	byID, err := s.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", byID.PasswordHash)

	assert.ErrorIs(t, s.Users().UpdatePassword(ctx, 999, "x"), storage.ErrNotFound)
}

func TestGroupSlugUniqueAndLookup(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Groups().Create(ctx, &models.Group{Title: "B", Slug: "b"}))
	require.NoError(t, s.Groups().Create(ctx, &models.Group{Title: "A", Slug: "a"}))

	err := s.Groups().Create(ctx, &models.Group{Title: "Again", Slug: "a"})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	group, err := s.Groups().GetBySlug(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "A", group.Title)

	_, err = s.Groups().GetBySlug(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	all, err := s.Groups().List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "A", all[0].Title) // ordered by title
}

func TestCommentRequiresExistingPost(t *testing.T) {
	s := New()
	ctx := context.Background()
	author := newTestUser(t, s, "leo")

	err := s.Comments().Create(ctx, &models.Comment{PostID: 12, AuthorID: author.ID, Text: "hi"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCommentsOrderedOldestFirst(t *testing.T) {
	s := New()
	ctx := context.Background()
	author := newTestUser(t, s, "leo")

	post := &models.Post{Text: "p", AuthorID: author.ID}
	require.NoError(t, s.Posts().Create(ctx, post))

	require.NoError(t, s.Comments().Create(ctx, &models.Comment{PostID: post.ID, AuthorID: author.ID, Text: "first"}))
	require.NoError(t, s.Comments().Create(ctx, &models.Comment{PostID: post.ID, AuthorID: author.ID, Text: "second"}))

	comments, err := s.Comments().ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Text)
	assert.Equal(t, "second", comments[1].Text)
	require.NotNil(t, comments[0].Author)
	assert.Equal(t, "leo", comments[0].Author.Username)
}

func TestFollowLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()
	reader := newTestUser(t, s, "reader")
	author := newTestUser(t, s, "author")

	exists, err := s.Follows().Exists(ctx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.Follows().Create(ctx, reader.ID, author.ID))
	// Idempotent
	require.NoError(t, s.Follows().Create(ctx, reader.ID, author.ID))

	exists, err = s.Follows().Exists(ctx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, s.Follows().Delete(ctx, reader.ID, author.ID))
	assert.ErrorIs(t, s.Follows().Delete(ctx, reader.ID, author.ID), storage.ErrNotFound)
}
