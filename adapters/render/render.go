// Package render provides the default response factory and page-rendering
// capabilities: JSON/text/redirect/not-found responses and html/template
// pages parsed once at startup.
package render

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/PatrickOgilvie/honertia/core/capability"
)

// Responder writes responses for one request. The dispatcher registers a
// fresh Responder per request under capability.KeyResponder.
type Responder struct {
	w http.ResponseWriter
	r *http.Request
}

// NewResponder wraps the request's response writer.
func NewResponder(w http.ResponseWriter, r *http.Request) *Responder {
	return &Responder{w: w, r: r}
}

// JSON writes a JSON response with the given status.
func (p *Responder) JSON(status int, v any) error {
	p.w.Header().Set("Content-Type", "application/json")
	p.w.WriteHeader(status)
	return json.NewEncoder(p.w).Encode(v)
}

// Text writes a plain-text response with the given status.
func (p *Responder) Text(status int, body string) error {
	p.w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	p.w.WriteHeader(status)
	_, err := fmt.Fprint(p.w, body)
	return err
}

// Redirect sends a redirect to the given URL.
func (p *Responder) Redirect(url string, status int) {
	http.Redirect(p.w, p.r, url, status)
}

// NotFound writes the generic not-found response. Every resolution failure
// funnels here, so the body carries no hint of what was missing.
func (p *Responder) NotFound() {
	p.w.Header().Set("Content-Type", "application/json")
	p.w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(p.w).Encode(map[string]string{"error": "not found"})
}

var _ capability.Responder = (*Responder)(nil)

// Templates holds parsed page templates. Parsed once at startup and shared
// read-only across requests.
type Templates struct {
	pages map[string]*template.Template
}

// ParseTemplates parses every .html file in the filesystem into a named
// page template. The page name is the file path without the extension.
func ParseTemplates(fsys fs.FS) (*Templates, error) {
	paths, err := fs.Glob(fsys, "*.html")
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template, len(paths))
	for _, path := range paths {
		content, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, err
		}

		name := strings.TrimSuffix(path, ".html")
		tmpl, err := template.New(name).Parse(string(content))
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &Templates{pages: pages}, nil
}

// For returns the per-request renderer writing to w.
func (t *Templates) For(w http.ResponseWriter) *PageRenderer {
	return &PageRenderer{templates: t, w: w}
}

// PageRenderer renders a named page into one request's response.
type PageRenderer struct {
	templates *Templates
	w         http.ResponseWriter
}

// RenderPage executes the named page template.
func (p *PageRenderer) RenderPage(name string, data any) error {
	tmpl, ok := p.templates.pages[name]
	if !ok {
		return fmt.Errorf("page %q not found", name)
	}
	p.w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return tmpl.Execute(p.w, data)
}

var _ capability.Renderer = (*PageRenderer)(nil)
