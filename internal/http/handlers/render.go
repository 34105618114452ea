package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"dashboard/internal/i18n"
	"dashboard/internal/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageFiles lists the files each page is parsed from, after the layout.
var pageFiles = map[string][]string{
	"home":       {"home.html"},
	"login":      {"login.html"},
	"register":   {"register.html"},
	"dashboard":  {"dashboard.html"},
	"pricing":    {"pricing.html"},
	"payment":    {"payment.html"},
	"content":    {"tool.html", "content_fields.html"},
	"summarizer": {"tool.html", "summarizer_fields.html"},
	"correct":    {"tool.html", "correct_fields.html"},
	"loading":    {"loading.html"},
	"error":      {"error.html"},
}

var funcs = template.FuncMap{
	// Casers are stateful, so each call gets its own.
	"title": func(s string) string { return cases.Title(language.English).String(s) },
	"date":  func(t time.Time) string { return t.Format("January 2, 2006") },
}

func parsePages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageFiles))
	for name, files := range pageFiles {
		patterns := []string{"templates/layout.html"}
		for _, f := range files {
			patterns = append(patterns, "templates/"+f)
		}
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, patterns...)
		if err != nil {
			return nil, fmt.Errorf("handlers: parse %s: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

// page is the data every template gets.
type page struct {
	Title         string
	Lang          string
	Authenticated bool
	Flash         string
	Error         string

	printer *message.Printer
}

// T translates a UI string for the request's language.
func (p page) T(key string, args ...any) string {
	if p.printer == nil {
		return fmt.Sprintf(key, args...)
	}
	return p.printer.Sprintf(key, args...)
}

func (a *App) page(r *http.Request, title string) page {
	tag := middleware.LocaleFromContext(r.Context())
	return page{
		Title:         title,
		Lang:          tag.String(),
		Authenticated: middleware.SessionSnapshot(r).Authenticated(),
		printer:       i18n.Printer(tag),
	}
}

// render executes into a buffer first so a template error still yields a clean 500.
func (a *App) render(w http.ResponseWriter, r *http.Request, code int, name string, data any) {
	t, ok := a.pages[name]
	if !ok {
		a.log(r).Error().Str("page", name).Msg("unknown page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		a.log(r).Error().Err(err).Str("page", name).Msg("render failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_, _ = buf.WriteTo(w)
}

// Loading is shown in place of any page while the session check is pending.
func (a *App) Loading(w http.ResponseWriter, r *http.Request) {
	a.render(w, r, http.StatusServiceUnavailable, "loading", a.page(r, "Loading"))
}

// NotFound renders the 404 page.
func (a *App) NotFound(w http.ResponseWriter, r *http.Request) {
	a.error(w, r, http.StatusNotFound, "")
}
