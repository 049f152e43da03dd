// Package web serves the server-rendered pages of the blogging
// platform: post feeds, groups, profiles, comments, follows and the
// session-backed auth flows.
package web

import (
	"context"
	"fmt"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/yatube/yatube-backend/internal/auth"
	"github.com/yatube/yatube-backend/internal/config"
	"github.com/yatube/yatube-backend/internal/storage"
	"github.com/yatube/yatube-backend/internal/store"
)

// DomainMetrics is the slice of the metrics registry the handlers
// record into.
type DomainMetrics interface {
	RecordCacheHit(ctx context.Context, key string)
	RecordCacheMiss(ctx context.Context, key string)
	RecordPostCreated(ctx context.Context)
	RecordCommentCreated(ctx context.Context)
	IncrementSessions(ctx context.Context)
	DecrementSessions(ctx context.Context)
}

type Handler struct {
	db        storage.Storage
	cache     *store.Cache
	sessions  *auth.SessionManager
	config    *config.Config
	logger    *zap.SugaredLogger
	metrics   DomainMetrics
	templates map[string]*template.Template
}

func NewHandler(
	db storage.Storage,
	cache *store.Cache,
	sessions *auth.SessionManager,
	config *config.Config,
	logger *zap.SugaredLogger,
	metrics DomainMetrics,
) (*Handler, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Handler{
		db:        db,
		cache:     cache,
		sessions:  sessions,
		config:    config,
		logger:    logger,
		metrics:   metrics,
		templates: templates,
	}, nil
}

// Healthz reports process liveness.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `{"status":"ok"}`)
}

// Readyz reports readiness: the database must answer, the cache may be
// degraded without failing the check.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		h.logger.Errorw("Readiness check failed", "component", "database", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"status":"unavailable","component":"database"}`)
		return
	}

	cacheStatus := "ok"
	if err := h.cache.Ping(r.Context()); err != nil {
		h.logger.Warnw("Cache ping failed", "error", err)
		cacheStatus = "degraded"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","cache":%q}`, cacheStatus)
}

// setSessionCookie writes the session token cookie with the configured
// lifetime.
func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.config.Sessions.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.config.Sessions.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.config.Sessions.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.config.Sessions.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.Sessions.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
