package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/yatube/yatube-backend/internal/auth"
	"github.com/yatube/yatube-backend/internal/models"
	"github.com/yatube/yatube-backend/internal/storage"
)

// SignupForm serves the registration form. Logged-in visitors are sent
// home.
func (h *Handler) SignupForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(r); ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	h.render(w, r, http.StatusOK, "signup", &pageData{Title: "Sign up", Form: &SignupForm{}})
}

// Signup registers a new account and logs it in right away.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	form := parseSignupForm(r)
	if !form.Validate() {
		h.render(w, r, http.StatusOK, "signup", &pageData{Title: "Sign up", Form: form})
		return
	}

	hash, err := auth.HashPassword(form.Password)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	user := &models.User{
		Username:     form.Username,
		Email:        form.Email,
		PasswordHash: hash,
	}
	if err := h.db.Users().Create(r.Context(), user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			form.Errors["username"] = "That username or email is already taken."
			h.render(w, r, http.StatusOK, "signup", &pageData{Title: "Sign up", Form: form})
			return
		}
		h.serverError(w, r, err)
		return
	}

	token, err := h.sessions.Create(r.Context(), user.ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.metrics.IncrementSessions(r.Context())
	h.setSessionCookie(w, token)

	h.logger.Infow("User signed up", "username", user.Username, "user_id", user.ID)
	http.Redirect(w, r, "/", http.StatusFound)
}

// LoginForm serves the login form, keeping the next parameter so a
// redirect from a protected page returns there.
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(r); ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	form := &LoginForm{Next: sanitizeNext(r.URL.Query().Get("next"))}
	h.render(w, r, http.StatusOK, "login", &pageData{Title: "Log in", Form: form})
}

// Login checks credentials and opens a session. A bad username and a
// bad password produce the same message.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	form := parseLoginForm(r)

	user, err := h.db.Users().GetByUsername(r.Context(), form.Username)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		h.serverError(w, r, err)
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, form.Password) {
		form.Errors = FieldErrors{"form": "Wrong username or password."}
		h.render(w, r, http.StatusOK, "login", &pageData{Title: "Log in", Form: form})
		return
	}

	token, err := h.sessions.Create(r.Context(), user.ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.metrics.IncrementSessions(r.Context())
	h.setSessionCookie(w, token)

	target := form.Next
	if target == "" {
		target = "/"
	}
	h.logger.Infow("User logged in", "username", user.Username, "user_id", user.ID)
	http.Redirect(w, r, target, http.StatusFound)
}

// Logout closes the session and clears the cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.config.Sessions.CookieName); err == nil && cookie.Value != "" {
		if err := h.sessions.Destroy(r.Context(), cookie.Value); err != nil {
			h.logger.Warnw("Failed to destroy session", "error", err)
		} else {
			h.metrics.DecrementSessions(r.Context())
		}
	}
	h.clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

// PasswordChangeForm serves the password change form.
func (h *Handler) PasswordChangeForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "password_change", &pageData{Title: "Change password", Form: &PasswordChangeForm{}})
}

// PasswordChange verifies the current password and stores the new
// hash. The session survives the change.
func (h *Handler) PasswordChange(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	form := parsePasswordChangeForm(r)
	if !form.Validate() {
		h.render(w, r, http.StatusOK, "password_change", &pageData{Title: "Change password", Form: form})
		return
	}

	if !auth.CheckPassword(user.PasswordHash, form.OldPassword) {
		form.Errors["old_password"] = "Current password is wrong."
		h.render(w, r, http.StatusOK, "password_change", &pageData{Title: "Change password", Form: form})
		return
	}

	hash, err := auth.HashPassword(form.NewPassword)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if err := h.db.Users().UpdatePassword(r.Context(), user.ID, hash); err != nil {
		h.serverError(w, r, err)
		return
	}

	h.logger.Infow("Password changed", "user_id", user.ID)
	http.Redirect(w, r, fmt.Sprintf("/profile/%s/", user.Username), http.StatusFound)
}
