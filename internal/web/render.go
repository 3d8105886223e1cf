// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/yosssi/gohtml"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ManuGH/jobjump/internal/control/auth"
	"github.com/ManuGH/jobjump/internal/domain"
	"github.com/ManuGH/jobjump/internal/log"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// layout carries what the shared header and footer need.
type layout struct {
	Title         string
	User          *domain.User
	Role          domain.Role
	Path          string
	SignIn        bool
	SignInEnabled bool
	Year          int
}

type view struct {
	Layout layout
	Data   any
}

type renderer struct {
	pages  map[string]*template.Template
	pretty bool
}

var funcs = template.FuncMap{
	"markdown": renderMarkdown,
	"dict":     dict,
	"date":     func(t time.Time) string { return t.Format("02 Jan 2006") },
	"title":    titleCase,
}

func newRenderer(pretty bool) (*renderer, error) {
	base, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/partials.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	entries, err := fs.Glob(templateFS, "templates/page_*.html")
	if err != nil {
		return nil, fmt.Errorf("list page templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(entries))
	for _, e := range entries {
		t, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout: %w", err)
		}
		if _, err := t.ParseFS(templateFS, e); err != nil {
			return nil, fmt.Errorf("parse %s: %w", e, err)
		}
		name := strings.TrimSuffix(strings.TrimPrefix(path.Base(e), "page_"), ".html")
		pages[name] = t
	}
	return &renderer{pages: pages, pretty: pretty}, nil
}

// render executes page inside the layout. Rendering happens into a buffer
// so a template failure can still produce a clean 500.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page, title string, data any) {
	t, ok := h.views.pages[page]
	if !ok {
		panic(fmt.Sprintf("web: unknown page %q", page))
	}

	v := view{Layout: h.layoutFor(r, title), Data: data}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", v); err != nil {
		logger := log.WithContext(r.Context(), h.logger)
		logger.Error().Err(err).Str("page", page).Msg("template execution failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	out := buf.Bytes()
	if h.views.pretty {
		out = gohtml.FormatBytes(out)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(out)
}

func (h *Handler) layoutFor(r *http.Request, title string) layout {
	l := layout{
		Title:         title,
		Path:          r.URL.Path,
		SignInEnabled: h.identity != nil,
		Year:          time.Now().Year(),
	}
	if u, ok := auth.UserFromContext(r.Context()); ok {
		l.User = &u
		l.Role = u.Role()
	} else {
		l.SignIn = r.URL.Query().Get("sign-in") == "true"
	}
	return l
}

type errorView struct {
	Status  int
	Heading string
	Message string
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.render(w, r, status, "error", http.StatusText(status), errorView{
		Status:  status,
		Heading: http.StatusText(status),
		Message: message,
	})
}

func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("dict: odd number of arguments")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		k, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
		}
		m[k] = pairs[i+1]
	}
	return m, nil
}

// titleCase builds a Caser per call; Casers are not safe for concurrent use.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}
