package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	memkv "github.com/yatube/yatube-backend/pkg/kv/memory"
)

func newTestCache() *Cache {
	return NewCacheWithStore(memkv.NewStoreWithInterval(0), nil, nil)
}

func TestPageRoundTrip(t *testing.T) {
	cache := newTestCache()
	defer cache.Close()
	ctx := context.Background()

	_, err := cache.GetPage(ctx, KeyIndexPage)
	assert.ErrorIs(t, err, ErrCacheMiss)

	body := []byte("<html>rendered</html>")
	require.NoError(t, cache.SetPage(ctx, KeyIndexPage, body, time.Minute))

	got, err := cache.GetPage(ctx, KeyIndexPage)
	require.NoError(t, err)
	assert.Equal(t, body, got)
}

func TestPageExpires(t *testing.T) {
	cache := newTestCache()
	defer cache.Close()
	ctx := context.Background()

	require.NoError(t, cache.SetPage(ctx, KeyIndexPage, []byte("x"), 30*time.Millisecond))
	time.Sleep(60 * time.Millisecond)

	_, err := cache.GetPage(ctx, KeyIndexPage)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestFlushInvalidatesPages(t *testing.T) {
	cache := newTestCache()
	defer cache.Close()
	ctx := context.Background()

	require.NoError(t, cache.SetPage(ctx, KeyIndexPage, []byte("x"), time.Hour))
	require.NoError(t, cache.Flush(ctx))

	_, err := cache.GetPage(ctx, KeyIndexPage)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestJSONRoundTrip(t *testing.T) {
	cache := newTestCache()
	defer cache.Close()
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, cache.Set(ctx, "k", payload{Name: "a", Count: 3}, time.Minute))

	var got payload
	require.NoError(t, cache.Get(ctx, "k", &got))
	assert.Equal(t, payload{Name: "a", Count: 3}, got)
}

func TestSessionHelpers(t *testing.T) {
	cache := newTestCache()
	defer cache.Close()
	ctx := context.Background()

	_, err := cache.GetSession(ctx, "tok")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, cache.SetSession(ctx, "tok", 7, time.Minute))

	userID, err := cache.GetSession(ctx, "tok")
	require.NoError(t, err)
	assert.EqualValues(t, 7, userID)

	require.NoError(t, cache.DeleteSession(ctx, "tok"))
	_, err = cache.GetSession(ctx, "tok")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
