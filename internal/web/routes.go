package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes assembles the full site router: global middleware, health
// endpoints, the media file server and the page handlers.
func (h *Handler) Routes(m *Middleware, corsOrigins []string, rateLimitRPM int) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(m.RequestID)
	r.Use(m.RequestLogger)
	r.Use(m.Recoverer)
	r.Use(m.SecurityHeaders)
	r.Use(m.Timeout(15 * time.Second))
	r.Use(middleware.Heartbeat("/ping"))

	// CORS and rate limiting - configured from main
	r.Use(m.CORS(corsOrigins))
	r.Use(m.RateLimit(rateLimitRPM))

	// Session resolution for every page
	r.Use(m.CurrentUser)

	// Health endpoints
	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)

	// Static assets and uploaded media
	r.Handle("/static/*", http.FileServer(http.FS(staticFS)))
	r.Handle("/media/*", http.StripPrefix("/media/",
		http.FileServer(http.Dir(h.config.Media.Root))))

	// Public pages
	r.Get("/", h.Index)
	r.Get("/group/{slug}/", h.GroupPosts)
	r.Get("/profile/{username}/", h.Profile)
	r.Get("/posts/{postID}/", h.PostDetail)
	r.Post("/posts/{postID}/comment/", h.AddComment)

	// Pages behind a login
	r.Group(func(r chi.Router) {
		r.Use(m.RequireLogin)

		r.Get("/create/", h.PostCreateForm)
		r.Post("/create/", h.PostCreate)
		r.Get("/posts/{postID}/edit/", h.PostEditForm)
		r.Post("/posts/{postID}/edit/", h.PostEdit)

		r.Get("/follow/", h.FollowIndex)
		r.Get("/profile/{username}/follow/", h.ProfileFollow)
		r.Get("/profile/{username}/unfollow/", h.ProfileUnfollow)

		r.Get("/auth/password_change/", h.PasswordChangeForm)
		r.Post("/auth/password_change/", h.PasswordChange)
	})

	// Auth flows
	r.Get("/auth/signup/", h.SignupForm)
	r.Post("/auth/signup/", h.Signup)
	r.Get("/auth/login/", h.LoginForm)
	r.Post("/auth/login/", h.Login)
	r.Get("/auth/logout/", h.Logout)

	r.NotFound(h.NotFound)

	return r
}
