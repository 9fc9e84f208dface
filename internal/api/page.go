package api

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/starford/moodlog/internal/models"
	"github.com/starford/moodlog/web"
)

type pageData struct {
	Title    string
	Moods    models.MoodSet
	Selected string
	// Labels maps emoji to the current label for the calendar cells.
	Labels map[string]string
}

// Page renders the selector row and calendar.
type Page struct {
	tmpl  *template.Template
	h     *Handler
	title string
}

// NewPage parses the embedded page template.
func NewPage(h *Handler, title string) (*Page, error) {
	t, err := template.ParseFS(web.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("api: parse templates: %w", err)
	}
	return &Page{tmpl: t, h: h, title: title}, nil
}

// ServeHTTP handles GET /.
func (p *Page) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	moods := p.h.svc.Moods()
	data := pageData{
		Title:  p.title,
		Moods:  moods,
		Labels: make(map[string]string, len(moods)),
	}
	for _, m := range moods {
		data.Labels[m.Emoji] = m.Label
	}
	if e, ok := p.h.svc.Load(r.Context()).Find(p.h.svc.Today()); ok {
		data.Selected = e.Emoji
	}

	var buf bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&buf, "index.html", data); err != nil {
		slog.Error("render page failed", slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
