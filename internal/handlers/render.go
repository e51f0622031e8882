package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"fengwz.me/garden/internal/middleware"
	"fengwz.me/garden/internal/observability"
)

//go:embed templates
var embeddedRoot embed.FS

var embeddedTemplates = mustSub(embeddedRoot, "templates")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

var funcMap = template.FuncMap{
	"stars":    stars,
	"safeHTML": func(s string) template.HTML { return template.HTML(s) },
	"jsonLD":   func(s string) template.JS { return template.JS(s) },
	"join":     strings.Join,
}

func parseTemplates(fsys fs.FS) (*template.Template, error) {
	tmpl, err := template.New("_root").Funcs(funcMap).ParseFS(fsys, "*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("handlers: parse templates: %w", err)
	}
	return tmpl, nil
}

// render executes name into a buffer, so a template error never leaves a half-written
// page, then writes it with status.
func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	tmpl, err := h.templates()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		h.fail(w, r, fmt.Errorf("handlers: execute %s: %w", name, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// renderPage writes the full layout, or only the main fragment for htmx swaps.
// History restores always get the full page.
func (h *Handlers) renderPage(w http.ResponseWriter, r *http.Request, data PageData) {
	name := "base"
	ctx := r.Context()
	if middleware.IsHTMX(ctx) && !middleware.IsHistoryRestore(ctx) {
		name = "fragment"
	}
	h.render(w, r, data.Page.Status, name, data)
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	observability.FromContext(r.Context()).Error("render failed", zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func stars(rating float64) string {
	if rating <= 0 {
		return ""
	}
	full := int(rating)
	if full > 5 {
		full = 5
	}
	out := strings.Repeat("★", full)
	if rating-float64(full) >= 0.5 && full < 5 {
		out += "½"
	}
	return out
}
