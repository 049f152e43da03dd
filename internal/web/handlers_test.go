package web

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yatube/yatube-backend/internal/auth"
	"github.com/yatube/yatube-backend/internal/config"
	"github.com/yatube/yatube-backend/internal/log"
	"github.com/yatube/yatube-backend/internal/models"
	"github.com/yatube/yatube-backend/internal/storage"
	memstorage "github.com/yatube/yatube-backend/internal/storage/memory"
	"github.com/yatube/yatube-backend/internal/store"
	kvmemory "github.com/yatube/yatube-backend/pkg/kv/memory"
)

type nopMetrics struct{}

func (nopMetrics) RecordHTTPRequest(context.Context, string, string, int, time.Duration) {}
func (nopMetrics) RecordCacheHit(context.Context, string)                                {}
func (nopMetrics) RecordCacheMiss(context.Context, string)                               {}
func (nopMetrics) RecordPostCreated(context.Context)                                     {}
func (nopMetrics) RecordCommentCreated(context.Context)                                  {}
func (nopMetrics) IncrementSessions(context.Context)                                     {}
func (nopMetrics) DecrementSessions(context.Context)                                     {}

type testApp struct {
	handler  *Handler
	mux      *chi.Mux
	db       *memstorage.Store
	cache    *store.Cache
	sessions *auth.SessionManager
	cfg      *config.Config
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	cfg := &config.Config{
		Env:      "test",
		HTTPAddr: ":0",
	}
	cfg.Posts.PageSize = 10
	cfg.Cache.IndexTTL = time.Minute
	cfg.Sessions = config.SessionConfig{TTL: time.Hour, CookieName: "yt_session"}
	cfg.Media = config.MediaConfig{Root: t.TempDir(), MaxUploadBytes: 5 << 20}

	logger := log.NewNop()
	db := memstorage.New()
	cache := store.NewCacheWithStore(kvmemory.NewStore(), logger, nil)
	sessions := auth.NewSessionManager(cache, cfg.Sessions.TTL)

	h, err := NewHandler(db, cache, sessions, cfg, logger, nopMetrics{})
	require.NoError(t, err)

	m := NewMiddleware(logger, nopMetrics{}, sessions, db.Users(), cfg.Sessions.CookieName)
	return &testApp{
		handler:  h,
		mux:      h.Routes(m, nil, 60000),
		db:       db,
		cache:    cache,
		sessions: sessions,
		cfg:      cfg,
	}
}

func (a *testApp) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	hash, err := auth.HashPassword("s3cret-pass")
	require.NoError(t, err)
	user := &models.User{Username: username, Email: username + "@example.com", PasswordHash: hash}
	require.NoError(t, a.db.Users().Create(context.Background(), user))
	return user
}

func (a *testApp) createGroup(t *testing.T, title, slug string) *models.Group {
	t.Helper()
	group := &models.Group{Title: title, Slug: slug, Description: title}
	require.NoError(t, a.db.Groups().Create(context.Background(), group))
	return group
}

func (a *testApp) createPost(t *testing.T, author *models.User, text string, groupID *int64) *models.Post {
	t.Helper()
	post := &models.Post{Text: text, AuthorID: author.ID, GroupID: groupID}
	require.NoError(t, a.db.Posts().Create(context.Background(), post))
	return post
}

// login opens a real session and returns the cookie a browser would
// carry afterwards.
func (a *testApp) login(t *testing.T, user *models.User) *http.Cookie {
	t.Helper()
	token, err := a.sessions.Create(context.Background(), user.ID)
	require.NoError(t, err)
	return &http.Cookie{Name: a.cfg.Sessions.CookieName, Value: token}
}

func (a *testApp) get(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.mux.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) postForm(path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.mux.ServeHTTP(rec, req)
	return rec
}


func (a *testApp) postMultipart(t *testing.T, path string, fields map[string]string, filename string, content []byte, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, value := range fields {
		require.NoError(t, mw.WriteField(name, value))
	}
	if filename != "" {
		part, err := mw.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.mux.ServeHTTP(rec, req)
	return rec
}

func countPosts(body string) int {
	return strings.Count(body, `<article class="post">`)
}

func TestIndexPagination(t *testing.T) {
	app := newTestApp(t)
	alice := app.createUser(t, "alice")
	for i := 0; i < 13; i++ {
		app.createPost(t, alice, "post text", nil)
	}

	rec := app.get("/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, countPosts(rec.Body.String()))

	rec = app.get("/?page=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, countPosts(rec.Body.String()))

	// Out-of-range and garbage page values clamp instead of failing.
	rec = app.get("/?page=99", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, countPosts(rec.Body.String()))

	rec = app.get("/?page=banana", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, countPosts(rec.Body.String()))
}

func TestIndexCacheServesStaleBytes(t *testing.T) {
	app := newTestApp(t)
	alice := app.createUser(t, "alice")
	app.createPost(t, alice, "first post", nil)

	first := app.get("/", nil)
	require.Equal(t, http.StatusOK, first.Code)

	app.createPost(t, alice, "second post", nil)

	// Still within the TTL: byte-identical stale page.
	second := app.get("/", nil)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.NotContains(t, second.Body.String(), "second post")

	// An explicit flush makes the new post visible at once.
	require.NoError(t, app.cache.Flush(context.Background()))
	third := app.get("/", nil)
	require.Equal(t, http.StatusOK, third.Code)
	assert.Contains(t, third.Body.String(), "second post")
}

func TestIndexCacheOutlivesDeletedPost(t *testing.T) {
	app := newTestApp(t)
	alice := app.createUser(t, "alice")
	post := app.createPost(t, alice, "soon to be gone", nil)

	first := app.get("/", nil)
	require.Equal(t, http.StatusOK, first.Code)
	require.Contains(t, first.Body.String(), "soon to be gone")

	require.NoError(t, app.db.Posts().Delete(context.Background(), post.ID))

	// The deleted post is still served, byte for byte, until a flush.
	second := app.get("/", nil)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())

	require.NoError(t, app.cache.Flush(context.Background()))
	third := app.get("/", nil)
	require.Equal(t, http.StatusOK, third.Code)
	assert.NotContains(t, third.Body.String(), "soon to be gone")
}

func TestIndexPaginatedRequestsBypassCache(t *testing.T) {
	app := newTestApp(t)
	alice := app.createUser(t, "alice")
	for i := 0; i < 11; i++ {
		app.createPost(t, alice, "post text", nil)
	}

	app.get("/?page=2", nil)

	_, err := app.cache.GetPage(context.Background(), store.KeyIndexPage)
	assert.ErrorIs(t, err, store.ErrCacheMiss)
}

func TestCreateRequiresLogin(t *testing.T) {
	app := newTestApp(t)

	rec := app.get("/create/", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/auth/login/?next=%2Fcreate%2F", rec.Header().Get("Location"))
}

func TestPostCreate(t *testing.T) {
	app := newTestApp(t)
	alice := app.createUser(t, "alice")
	group := app.createGroup(t, "Cats", "cats")
	cookie := app.login(t, alice)

	rec := app.postForm("/create/", url.Values{
		"text":  {"a brand new post"},
		"group": {"1"},
	}, cookie)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/profile/alice/", rec.Header().Get("Location"))

	posts, err := app.db.Posts().List(context.Background(), storage.PostFilter{}, 0, 10)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "a brand new post", posts[0].Text)
	require.NotNil(t, posts[0].GroupID)
	assert.Equal(t, group.ID, *posts[0].GroupID)
	assert.Equal(t, alice.ID, posts[0].AuthorID)
}

func TestPostCreateEmptyTextRejected(t *testing.T) {
	app := newTestApp(t)
	alice := app.createUser(t, "alice")
	cookie := app.login(t, alice)

	rec := app.postForm("/create/", url.Values{"text": {"   "}}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Text is required.")

	total, err := app.db.Posts().Count(context.Background(), storage.PostFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestPostEditByAuthor(t *testing.T) {
	app := newTestApp(t)
	alice := app.createUser(t, "alice")
	post := app.createPost(t, alice, "original text", nil)
	cookie := app.login(t, alice)

	rec := app.postForm("/posts/1/edit/", url.Values{"text": {"edited text"}}, cookie)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/posts/1/", rec.Header().Get("Location"))

	got, err := app.db.Posts().GetByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited text", got.Text)
}

func TestPostEditByNonAuthorRedirects(t *testing.T) {
	app := newTestApp(t)
	alice := app.createUser(t, "alice")
	bob := app.createUser(t, "bob")
	post := app.createPost(t, alice, "original text", nil)
	cookie := app.login(t, bob)

	rec := app.get("/posts/1/edit/", cookie)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/posts/1/", rec.Header().Get("Location"))

	rec = app.postForm("/posts/1/edit/", url.Values{"text": {"hijacked"}}, cookie)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/posts/1/", rec.Header().Get("Location"))

	got, err := app.db.Posts().GetByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "original text", got.Text)
}

func TestAddComment(t *testing.T) {
	app := newTestApp(t)
	alice := app.createUser(t, "alice")
	bob := app.createUser(t, "bob")
	post := app.createPost(t, alice, "a post", nil)
	cookie := app.login(t, bob)

	rec := app.postForm("/posts/1/comment/", url.Values{"text": {"nice one"}}, cookie)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/posts/1/", rec.Header().Get("Location"))

	comments, err := app.db.Comments().ListByPost(context.Background(), post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "nice one", comments[0].Text)
	assert.Equal(t, bob.ID, comments[0].AuthorID)
}

func TestAddCommentAnonymousRedirectsToLogin(t *testing.T) {
	app := newTestApp(t)
	alice := app.createUser(t, "alice")
	post := app.createPost(t, alice, "a post", nil)

	rec := app.postForm("/posts/1/comment/", url.Values{"text": {"sneaky"}}, nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/auth/login/?next=/posts/1/", rec.Header().Get("Location"))

	comments, err := app.db.Comments().ListByPost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestGroupPage(t *testing.T) {
	app := newTestApp(t)
	alice := app.createUser(t, "alice")
	cats := app.createGroup(t, "Cats", "cats")
	app.createGroup(t, "Dogs", "dogs")
	app.createPost(t, alice, "a cat post", &cats.ID)
	app.createPost(t, alice, "an unfiled post", nil)

	rec := app.get("/group/cats/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, countPosts(rec.Body.String()))
	assert.Contains(t, rec.Body.String(), "a cat post")

	rec = app.get("/group/dogs/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, countPosts(rec.Body.String()))

	rec = app.get("/group/no-such-group/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProfilePage(t *testing.T) {
	app := newTestApp(t)
	alice := app.createUser(t, "alice")
	bob := app.createUser(t, "bob")
	app.createPost(t, alice, "alice writes", nil)
	app.createPost(t, bob, "bob writes", nil)

	rec := app.get("/profile/alice/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, countPosts(rec.Body.String()))
	assert.Contains(t, rec.Body.String(), "alice writes")
	assert.NotContains(t, rec.Body.String(), "bob writes")

	rec = app.get("/profile/nobody/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFollowLifecycle(t *testing.T) {
	app := newTestApp(t)
	alice := app.createUser(t, "alice")
	bob := app.createUser(t, "bob")
	app.createPost(t, alice, "from alice", nil)
	cookie := app.login(t, bob)

	// Feed is empty before following anyone.
	rec := app.get("/follow/", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, countPosts(rec.Body.String()))

	rec = app.get("/profile/alice/follow/", cookie)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/follow/", rec.Header().Get("Location"))

	following, err := app.db.Follows().Exists(context.Background(), bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, following)

	rec = app.get("/follow/", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, countPosts(rec.Body.String()))
	assert.Contains(t, rec.Body.String(), "from alice")

	rec = app.get("/profile/alice/unfollow/", cookie)
	require.Equal(t, http.StatusFound, rec.Code)

	following, err = app.db.Follows().Exists(context.Background(), bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, following)
}

func TestSelfFollowIsNoop(t *testing.T) {
	app := newTestApp(t)
	alice := app.createUser(t, "alice")
	cookie := app.login(t, alice)

	rec := app.get("/profile/alice/follow/", cookie)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/profile/alice/", rec.Header().Get("Location"))

	following, err := app.db.Follows().Exists(context.Background(), alice.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, following)

	// Self-unfollow also bounces to the profile instead of a 404.
	rec = app.get("/profile/alice/unfollow/", cookie)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/profile/alice/", rec.Header().Get("Location"))
}

func TestUnfollowWithoutFollowingIs404(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "alice")
	bob := app.createUser(t, "bob")
	cookie := app.login(t, bob)

	rec := app.get("/profile/alice/unfollow/", cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRepeatFollowIsIdempotent(t *testing.T) {
	app := newTestApp(t)
	alice := app.createUser(t, "alice")
	bob := app.createUser(t, "bob")
	cookie := app.login(t, bob)

	for i := 0; i < 2; i++ {
		rec := app.get("/profile/alice/follow/", cookie)
		require.Equal(t, http.StatusFound, rec.Code)
	}

	following, err := app.db.Follows().Exists(context.Background(), bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, following)
}

func TestSignupLogsIn(t *testing.T) {
	app := newTestApp(t)

	rec := app.postForm("/auth/signup/", url.Values{
		"username":  {"carol"},
		"email":     {"carol@example.com"},
		"password":  {"longenough1"},
		"password2": {"longenough1"},
	}, nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	var sessionCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == app.cfg.Sessions.CookieName {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie, "signup should open a session")

	user, err := app.db.Users().GetByUsername(context.Background(), "carol")
	require.NoError(t, err)

	userID, err := app.sessions.Resolve(context.Background(), sessionCookie.Value)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestSignupDuplicateUsername(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "alice")

	rec := app.postForm("/auth/signup/", url.Values{
		"username":  {"alice"},
		"email":     {"other@example.com"},
		"password":  {"longenough1"},
		"password2": {"longenough1"},
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "already taken")
}

func TestLoginHonorsNext(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "alice")

	rec := app.postForm("/auth/login/", url.Values{
		"username": {"alice"},
		"password": {"s3cret-pass"},
		"next":     {"/create/"},
	}, nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/create/", rec.Header().Get("Location"))
}

func TestLoginRejectsOffsiteNext(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "alice")

	rec := app.postForm("/auth/login/", url.Values{
		"username": {"alice"},
		"password": {"s3cret-pass"},
		"next":     {"https://evil.example.com/"},
	}, nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestLoginWrongPassword(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "alice")

	rec := app.postForm("/auth/login/", url.Values{
		"username": {"alice"},
		"password": {"wrong"},
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Wrong username or password.")

	// Unknown usernames produce the exact same page.
	rec = app.postForm("/auth/login/", url.Values{
		"username": {"nobody"},
		"password": {"wrong"},
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Wrong username or password.")
}

func TestLogout(t *testing.T) {
	app := newTestApp(t)
	alice := app.createUser(t, "alice")
	cookie := app.login(t, alice)

	rec := app.get("/auth/logout/", cookie)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	_, err := app.sessions.Resolve(context.Background(), cookie.Value)
	assert.ErrorIs(t, err, auth.ErrNoSession)
}

func TestPasswordChange(t *testing.T) {
	app := newTestApp(t)
	alice := app.createUser(t, "alice")
	cookie := app.login(t, alice)

	rec := app.postForm("/auth/password_change/", url.Values{
		"old_password":  {"s3cret-pass"},
		"new_password":  {"a-new-secret"},
		"new_password2": {"a-new-secret"},
	}, cookie)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/profile/alice/", rec.Header().Get("Location"))

	got, err := app.db.Users().GetByID(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(got.PasswordHash, "a-new-secret"))
	assert.False(t, auth.CheckPassword(got.PasswordHash, "s3cret-pass"))
}

func TestPasswordChangeWrongCurrent(t *testing.T) {
	app := newTestApp(t)
	alice := app.createUser(t, "alice")
	cookie := app.login(t, alice)

	rec := app.postForm("/auth/password_change/", url.Values{
		"old_password":  {"not-it"},
		"new_password":  {"a-new-secret"},
		"new_password2": {"a-new-secret"},
	}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Current password is wrong.")
}

func TestPostDetailShowsComments(t *testing.T) {
	app := newTestApp(t)
	alice := app.createUser(t, "alice")
	post := app.createPost(t, alice, "a post with comments", nil)
	require.NoError(t, app.db.Comments().Create(context.Background(), &models.Comment{
		PostID: post.ID, AuthorID: alice.ID, Text: "first comment",
	}))

	rec := app.get("/posts/1/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "a post with comments")
	assert.Contains(t, rec.Body.String(), "first comment")
}

func TestUnknownPostIs404(t *testing.T) {
	app := newTestApp(t)

	rec := app.get("/posts/999/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.get("/posts/banana/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotFoundPage(t *testing.T) {
	app := newTestApp(t)

	rec := app.get("/definitely/not/here/", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page not found")
}

func TestHealthEndpoints(t *testing.T) {
	app := newTestApp(t)

	rec := app.get("/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.get("/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPostCreateWithImage(t *testing.T) {
	app := newTestApp(t)
	alice := app.createUser(t, "alice")
	cookie := app.login(t, alice)

	imageBytes := []byte("\x89PNG fake image payload")
	rec := app.postMultipart(t, "/create/", map[string]string{
		"text": "a post with a picture",
	}, "cat.png", imageBytes, cookie)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/profile/alice/", rec.Header().Get("Location"))

	posts, err := app.db.Posts().List(context.Background(), storage.PostFilter{}, 0, 10)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "a post with a picture", posts[0].Text)

	require.NotEmpty(t, posts[0].Image)
	assert.True(t, strings.HasPrefix(posts[0].Image, "posts/"))
	assert.True(t, strings.HasSuffix(posts[0].Image, ".png"))

	stored, err := os.ReadFile(filepath.Join(app.cfg.Media.Root, posts[0].Image))
	require.NoError(t, err)
	assert.Equal(t, imageBytes, stored)
}

func TestPostCreateRejectsNonImageUpload(t *testing.T) {
	app := newTestApp(t)
	alice := app.createUser(t, "alice")
	cookie := app.login(t, alice)

	rec := app.postMultipart(t, "/create/", map[string]string{
		"text": "suspicious attachment",
	}, "payload.exe", []byte("MZ"), cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Could not save the image")

	total, err := app.db.Posts().Count(context.Background(), storage.PostFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestPostEditWithImage(t *testing.T) {
	app := newTestApp(t)
	alice := app.createUser(t, "alice")
	post := app.createPost(t, alice, "plain text post", nil)
	cookie := app.login(t, alice)

	rec := app.postMultipart(t, "/posts/1/edit/", map[string]string{
		"text": "now illustrated",
	}, "photo.jpg", []byte("jpeg payload"), cookie)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/posts/1/", rec.Header().Get("Location"))

	got, err := app.db.Posts().GetByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "now illustrated", got.Text)
	require.NotEmpty(t, got.Image)
	assert.True(t, strings.HasSuffix(got.Image, ".jpg"))

	_, err = os.Stat(filepath.Join(app.cfg.Media.Root, got.Image))
	require.NoError(t, err)

	// Editing again without an attachment keeps the image.
	rec = app.postForm("/posts/1/edit/", url.Values{"text": {"still illustrated"}}, cookie)
	require.Equal(t, http.StatusFound, rec.Code)

	got, err = app.db.Posts().GetByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "still illustrated", got.Text)
	assert.NotEmpty(t, got.Image)
}

func TestRequireLoginPreservesQuery(t *testing.T) {
	app := newTestApp(t)

	rec := app.get("/follow/?page=2", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/auth/login/?next=%2Ffollow%2F%3Fpage%3D2", rec.Header().Get("Location"))
}
