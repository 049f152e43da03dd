package web

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/yatube/yatube-backend/internal/models"
	"github.com/yatube/yatube-backend/internal/pagination"
	"github.com/yatube/yatube-backend/internal/storage"
	"github.com/yatube/yatube-backend/internal/store"
)

// listPage loads one window of posts for a feed page: total count,
// clamped page number, then the window itself.
func (h *Handler) listPage(r *http.Request, filter storage.PostFilter) ([]*models.Post, pagination.Page, error) {
	total, err := h.db.Posts().Count(r.Context(), filter)
	if err != nil {
		return nil, pagination.Page{}, err
	}

	page := pagination.Resolve(r.URL.Query().Get("page"), total, h.config.Posts.PageSize)

	posts, err := h.db.Posts().List(r.Context(), filter, page.Offset, page.Size)
	if err != nil {
		return nil, pagination.Page{}, err
	}
	return posts, page, nil
}

// Index serves the front page. Unpaginated requests are cached whole
// for a short window; within it every viewer gets the same bytes, and
// new posts only show up once the entry expires or the cache is
// flushed.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	cacheable := r.URL.Query().Get("page") == ""

	if cacheable {
		if body, err := h.cache.GetPage(r.Context(), store.KeyIndexPage); err == nil {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write(body)
			return
		}
	}

	posts, page, err := h.listPage(r, storage.PostFilter{})
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	data := &pageData{
		Title:    "Latest posts",
		Posts:    posts,
		Page:     page,
		PagePath: "/",
	}
	if user, ok := currentUser(r); ok {
		data.User = user
	}

	var buf bytes.Buffer
	if err := h.renderTo(&buf, "index", data); err != nil {
		h.serverError(w, r, err)
		return
	}

	if cacheable {
		if err := h.cache.SetPage(r.Context(), store.KeyIndexPage, buf.Bytes(), h.config.Cache.IndexTTL); err != nil {
			h.logger.Warnw("Failed to cache index page", "error", err)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// GroupPosts serves a group's feed.
func (h *Handler) GroupPosts(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	group, err := h.db.Groups().GetBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.NotFound(w, r)
			return
		}
		h.serverError(w, r, err)
		return
	}

	posts, page, err := h.listPage(r, storage.PostFilter{GroupID: &group.ID})
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "group_list", &pageData{
		Title:    group.Title,
		Group:    group,
		Posts:    posts,
		Page:     page,
		PagePath: fmt.Sprintf("/group/%s/", group.Slug),
	})
}

// Profile serves an author's page with their posts and the viewer's
// follow state.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	author, err := h.db.Users().GetByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.NotFound(w, r)
			return
		}
		h.serverError(w, r, err)
		return
	}

	posts, page, err := h.listPage(r, storage.PostFilter{AuthorID: &author.ID})
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	data := &pageData{
		Title:    author.Username,
		Author:   author,
		Posts:    posts,
		Page:     page,
		PagePath: fmt.Sprintf("/profile/%s/", author.Username),
	}
	if user, ok := currentUser(r); ok && user.ID != author.ID {
		following, err := h.db.Follows().Exists(r.Context(), user.ID, author.ID)
		if err != nil {
			h.serverError(w, r, err)
			return
		}
		data.Following = following
	}

	h.render(w, r, http.StatusOK, "profile", data)
}

// PostDetail serves a single post with its comments.
func (h *Handler) PostDetail(w http.ResponseWriter, r *http.Request) {
	post, ok := h.postFromURL(w, r)
	if !ok {
		return
	}

	comments, err := h.db.Comments().ListByPost(r.Context(), post.ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "post_detail", &pageData{
		Title:    truncateTitle(post.Text),
		Post:     post,
		Comments: comments,
	})
}

// PostCreateForm serves the empty post form.
func (h *Handler) PostCreateForm(w http.ResponseWriter, r *http.Request) {
	groups, err := h.db.Groups().List(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "create_post", &pageData{
		Title:  "New post",
		Groups: groups,
		Form:   &PostForm{},
	})
}

// PostCreate handles the post form submission. On success the author
// lands on their profile.
func (h *Handler) PostCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		http.Redirect(w, r, "/auth/login/?next=/create/", http.StatusFound)
		return
	}

	form, ok := h.parsePostSubmission(w, r)
	if !ok {
		return
	}
	if !form.Validate() {
		h.renderPostForm(w, r, form, false)
		return
	}

	image, ok := h.saveUploadedImage(w, r, form, false)
	if !ok {
		return
	}

	post := &models.Post{
		Text:     form.Text,
		AuthorID: user.ID,
		GroupID:  form.Group(),
		Image:    image,
	}
	if err := h.db.Posts().Create(r.Context(), post); err != nil {
		h.serverError(w, r, err)
		return
	}

	h.metrics.RecordPostCreated(r.Context())
	http.Redirect(w, r, fmt.Sprintf("/profile/%s/", user.Username), http.StatusFound)
}

// PostEditForm serves the edit form pre-filled with the post. Only the
// author may edit; anyone else is bounced to the post page.
func (h *Handler) PostEditForm(w http.ResponseWriter, r *http.Request) {
	post, ok := h.postFromURL(w, r)
	if !ok {
		return
	}

	user, _ := currentUser(r)
	if user == nil || user.ID != post.AuthorID {
		http.Redirect(w, r, fmt.Sprintf("/posts/%d/", post.ID), http.StatusFound)
		return
	}

	groups, err := h.db.Groups().List(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	form := &PostForm{Text: post.Text}
	if post.GroupID != nil {
		form.GroupID = strconv.FormatInt(*post.GroupID, 10)
	}

	h.render(w, r, http.StatusOK, "create_post", &pageData{
		Title:  "Edit post",
		Groups: groups,
		Form:   form,
		IsEdit: true,
	})
}

// PostEdit handles the edit submission with the same author guard.
func (h *Handler) PostEdit(w http.ResponseWriter, r *http.Request) {
	post, ok := h.postFromURL(w, r)
	if !ok {
		return
	}

	user, _ := currentUser(r)
	if user == nil || user.ID != post.AuthorID {
		http.Redirect(w, r, fmt.Sprintf("/posts/%d/", post.ID), http.StatusFound)
		return
	}

	form, ok := h.parsePostSubmission(w, r)
	if !ok {
		return
	}
	if !form.Validate() {
		h.renderPostForm(w, r, form, true)
		return
	}

	image, ok := h.saveUploadedImage(w, r, form, true)
	if !ok {
		return
	}

	post.Text = form.Text
	post.GroupID = form.Group()
	if image != "" {
		post.Image = image
	}
	if err := h.db.Posts().Update(r.Context(), post); err != nil {
		h.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/posts/%d/", post.ID), http.StatusFound)
}

// AddComment appends a comment and returns to the post page.
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	post, ok := h.postFromURL(w, r)
	if !ok {
		return
	}

	user, ok := currentUser(r)
	if !ok {
		http.Redirect(w, r, fmt.Sprintf("/auth/login/?next=/posts/%d/", post.ID), http.StatusFound)
		return
	}

	form := parseCommentForm(r)
	if !form.Validate() {
		comments, err := h.db.Comments().ListByPost(r.Context(), post.ID)
		if err != nil {
			h.serverError(w, r, err)
			return
		}
		h.render(w, r, http.StatusOK, "post_detail", &pageData{
			Title:    truncateTitle(post.Text),
			Post:     post,
			Comments: comments,
			Form:     form,
		})
		return
	}

	comment := &models.Comment{
		PostID:   post.ID,
		AuthorID: user.ID,
		Text:     form.Text,
	}
	if err := h.db.Comments().Create(r.Context(), comment); err != nil {
		h.serverError(w, r, err)
		return
	}

	h.metrics.RecordCommentCreated(r.Context())
	http.Redirect(w, r, fmt.Sprintf("/posts/%d/", post.ID), http.StatusFound)
}

// FollowIndex serves the viewer's feed of followed authors.
func (h *Handler) FollowIndex(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r)

	posts, page, err := h.listPage(r, storage.PostFilter{FollowedBy: &user.ID})
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "follow", &pageData{
		Title:    "Your feed",
		Posts:    posts,
		Page:     page,
		PagePath: "/follow/",
	})
}

// ProfileFollow subscribes the viewer to an author and lands on the
// feed. Following yourself quietly bounces back to the profile;
// following twice is a no-op.
func (h *Handler) ProfileFollow(w http.ResponseWriter, r *http.Request) {
	author, user, ok := h.followPair(w, r)
	if !ok {
		return
	}

	if user.ID == author.ID {
		http.Redirect(w, r, fmt.Sprintf("/profile/%s/", author.Username), http.StatusFound)
		return
	}

	if err := h.db.Follows().Create(r.Context(), user.ID, author.ID); err != nil {
		h.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, "/follow/", http.StatusFound)
}

// ProfileUnfollow removes the subscription. Unfollowing an author you
// never followed is a 404.
func (h *Handler) ProfileUnfollow(w http.ResponseWriter, r *http.Request) {
	author, user, ok := h.followPair(w, r)
	if !ok {
		return
	}

	if user.ID == author.ID {
		http.Redirect(w, r, fmt.Sprintf("/profile/%s/", author.Username), http.StatusFound)
		return
	}

	if err := h.db.Follows().Delete(r.Context(), user.ID, author.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.NotFound(w, r)
			return
		}
		h.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/profile/%s/", author.Username), http.StatusFound)
}

func (h *Handler) followPair(w http.ResponseWriter, r *http.Request) (*models.User, *models.User, bool) {
	username := chi.URLParam(r, "username")

	author, err := h.db.Users().GetByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.NotFound(w, r)
			return nil, nil, false
		}
		h.serverError(w, r, err)
		return nil, nil, false
	}

	user, _ := currentUser(r)
	return author, user, true
}

// postFromURL loads the post named by the {postID} route parameter,
// rendering the not-found page on bad IDs.
func (h *Handler) postFromURL(w http.ResponseWriter, r *http.Request) (*models.Post, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "postID"), 10, 64)
	if err != nil {
		h.NotFound(w, r)
		return nil, false
	}

	post, err := h.db.Posts().GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.NotFound(w, r)
			return nil, false
		}
		h.serverError(w, r, err)
		return nil, false
	}
	return post, true
}

// parsePostSubmission reads the post form, multipart when an image may
// be attached.
func (h *Handler) parsePostSubmission(w http.ResponseWriter, r *http.Request) (*PostForm, bool) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(h.config.Media.MaxUploadBytes); err != nil {
			http.Error(w, "Upload too large", http.StatusRequestEntityTooLarge)
			return nil, false
		}
	} else if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return nil, false
	}
	return parsePostForm(r), true
}

func (h *Handler) renderPostForm(w http.ResponseWriter, r *http.Request, form *PostForm, isEdit bool) {
	groups, err := h.db.Groups().List(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	title := "New post"
	if isEdit {
		title = "Edit post"
	}
	h.render(w, r, http.StatusOK, "create_post", &pageData{
		Title:  title,
		Groups: groups,
		Form:   form,
		IsEdit: isEdit,
	})
}

// saveUploadedImage stores an attached image under the media root and
// returns its media-relative path. No attachment returns "".
func (h *Handler) saveUploadedImage(w http.ResponseWriter, r *http.Request, form *PostForm, isEdit bool) (string, bool) {
	if r.MultipartForm == nil {
		return "", true
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", true
		}
		h.serverError(w, r, err)
		return "", false
	}
	defer file.Close()

	rel, err := h.storeImage(file, header)
	if err != nil {
		h.logger.Errorw("Failed to store uploaded image", "error", err)
		form.Errors["image"] = "Could not save the image, try again."
		h.renderPostForm(w, r, form, isEdit)
		return "", false
	}
	return rel, true
}

func (h *Handler) storeImage(file multipart.File, header *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		return "", fmt.Errorf("unsupported image extension %q", ext)
	}

	dir := filepath.Join(h.config.Media.Root, "posts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create media dir: %w", err)
	}

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create media file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("failed to write media file: %w", err)
	}
	return "posts/" + name, nil
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Errorw("Request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func truncateTitle(text string) string {
	runes := []rune(text)
	if len(runes) <= 30 {
		return text
	}
	return strings.TrimSpace(string(runes[:30])) + "…"
}
