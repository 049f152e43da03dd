package web

import (
	"net/http"
	"strconv"
	"strings"
)

// FieldErrors maps form field names to validation messages. A nil map
// means the form passed validation.
type FieldErrors map[string]string

// PostForm carries post create/edit input. GroupID keeps the raw form
// value so a rejected submission re-renders with the selection intact.
type PostForm struct {
	Text    string
	GroupID string
	Errors  FieldErrors
}

func parsePostForm(r *http.Request) *PostForm {
	return &PostForm{
		Text:    strings.TrimSpace(r.PostFormValue("text")),
		GroupID: strings.TrimSpace(r.PostFormValue("group")),
	}
}

func (f *PostForm) Validate() bool {
	f.Errors = FieldErrors{}
	if f.Text == "" {
		f.Errors["text"] = "Text is required."
	}
	if f.GroupID != "" {
		if _, err := strconv.ParseInt(f.GroupID, 10, 64); err != nil {
			f.Errors["group"] = "Choose a valid group."
		}
	}
	return len(f.Errors) == 0
}

// Group returns the parsed group ID, nil when no group was chosen.
// Validate must have passed.
func (f *PostForm) Group() *int64 {
	if f.GroupID == "" {
		return nil
	}
	id, err := strconv.ParseInt(f.GroupID, 10, 64)
	if err != nil {
		return nil
	}
	return &id
}

type CommentForm struct {
	Text   string
	Errors FieldErrors
}

func parseCommentForm(r *http.Request) *CommentForm {
	return &CommentForm{Text: strings.TrimSpace(r.PostFormValue("text"))}
}

func (f *CommentForm) Validate() bool {
	f.Errors = FieldErrors{}
	if f.Text == "" {
		f.Errors["text"] = "Comment text is required."
	}
	return len(f.Errors) == 0
}

type SignupForm struct {
	Username  string
	Email     string
	Password  string
	Password2 string
	Errors    FieldErrors
}

func parseSignupForm(r *http.Request) *SignupForm {
	return &SignupForm{
		Username:  strings.TrimSpace(r.PostFormValue("username")),
		Email:     strings.TrimSpace(r.PostFormValue("email")),
		Password:  r.PostFormValue("password"),
		Password2: r.PostFormValue("password2"),
	}
}

func (f *SignupForm) Validate() bool {
	f.Errors = FieldErrors{}
	switch {
	case f.Username == "":
		f.Errors["username"] = "Username is required."
	case len(f.Username) > 150:
		f.Errors["username"] = "Username must be 150 characters or fewer."
	case !validUsername(f.Username):
		f.Errors["username"] = "Username may contain letters, digits and ./+/-/_ only."
	}
	if f.Email == "" || !strings.Contains(f.Email, "@") {
		f.Errors["email"] = "Enter a valid email address."
	}
	if len(f.Password) < 8 {
		f.Errors["password"] = "Password must be at least 8 characters."
	}
	if f.Password != f.Password2 {
		f.Errors["password2"] = "Passwords do not match."
	}
	return len(f.Errors) == 0
}

func validUsername(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.', r == '+', r == '-', r == '_', r == '@':
		default:
			return false
		}
	}
	return true
}

type LoginForm struct {
	Username string
	Password string
	Next     string
	Errors   FieldErrors
}

func parseLoginForm(r *http.Request) *LoginForm {
	next := r.PostFormValue("next")
	if next == "" {
		next = r.URL.Query().Get("next")
	}
	return &LoginForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
		Next:     sanitizeNext(next),
	}
}

// sanitizeNext accepts only same-site absolute paths so the login
// redirect cannot be pointed at another host.
func sanitizeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return ""
	}
	return next
}

type PasswordChangeForm struct {
	OldPassword  string
	NewPassword  string
	NewPassword2 string
	Errors       FieldErrors
}

func parsePasswordChangeForm(r *http.Request) *PasswordChangeForm {
	return &PasswordChangeForm{
		OldPassword:  r.PostFormValue("old_password"),
		NewPassword:  r.PostFormValue("new_password"),
		NewPassword2: r.PostFormValue("new_password2"),
	}
}

func (f *PasswordChangeForm) Validate() bool {
	f.Errors = FieldErrors{}
	if f.OldPassword == "" {
		f.Errors["old_password"] = "Current password is required."
	}
	if len(f.NewPassword) < 8 {
		f.Errors["new_password"] = "New password must be at least 8 characters."
	}
	if f.NewPassword != f.NewPassword2 {
		f.Errors["new_password2"] = "Passwords do not match."
	}
	return len(f.Errors) == 0
}
