package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/yatube/yatube-backend/internal/models"
	"github.com/yatube/yatube-backend/internal/pagination"
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// pageData is the context every template receives.
type pageData struct {
	Title string
	// User is the authenticated viewer, nil for anonymous requests.
	User *models.User

	Posts    []*models.Post
	Page     pagination.Page
	PagePath string

	Group  *models.Group
	Groups []*models.Group
	Author *models.User
	// Following reports whether the viewer follows Author.
	Following bool

	Post     *models.Post
	Comments []*models.Comment

	Form   any
	IsEdit bool
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"datetime": func(t time.Time) string {
			return t.Format("2 Jan 2006 15:04")
		},
		"truncate": func(s string, n int) string {
			runes := []rune(s)
			if len(runes) <= n {
				return s
			}
			return strings.TrimSpace(string(runes[:n])) + "…"
		},
	}
}

// parseTemplates builds one template set per page, each paired with the
// base layout.
func parseTemplates() (map[string]*template.Template, error) {
	pages, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to glob templates: %w", err)
	}

	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		name := strings.TrimSuffix(path.Base(page), ".html")
		tmpl, err := template.New(name).Funcs(templateFuncs()).ParseFS(templateFS,
			"templates/base.html", page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		templates[name] = tmpl
	}
	return templates, nil
}

// renderTo executes a page template into w. Rendering into a buffer
// first keeps half-written pages off the wire and makes the result
// cacheable as bytes.
func (h *Handler) renderTo(w io.Writer, name string, data *pageData) error {
	tmpl, ok := h.templates[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	return tmpl.ExecuteTemplate(w, "base", data)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data *pageData) {
	if data.User == nil {
		if user, ok := currentUser(r); ok {
			data.User = user
		}
	}

	var buf bytes.Buffer
	if err := h.renderTo(&buf, name, data); err != nil {
		h.logger.Errorw("Template render failed", "template", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// NotFound renders the custom not-found page. It doubles as the
// router's fallback handler.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "not_found", &pageData{Title: "Page not found"})
}
