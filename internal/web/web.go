// Package web renders the HTML representation of the song catalog.
//
// Templates are embedded and parsed once. Each view is rendered inside the
// shared layout:
//
//	songs_index → song list table
//	song_show   → a single song
//	lists       → custom list names or the hashes on one list
//	errors      → field errors or a status message
//
// The server selects this representation when a request neither ends in
// ".json" nor accepts "application/json".
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

// View names accepted by [Renderer.Render].
const (
	ViewSongs  = "songs_index"
	ViewSong   = "song_show"
	ViewLists  = "lists"
	ViewErrors = "errors"
)

// Page is the data passed to the layout.
type Page struct {
	Title string
	Data  any
}

// Link is one item of the lists view. Items without Href render as plain text.
type Link struct {
	Href string
	Text string
}

// Links is the data of the lists view.
type Links struct {
	Items []Link
	Empty string
}

// Renderer executes the embedded templates.
type Renderer struct {
	views map[string]*template.Template
}

var funcs = template.FuncMap{
	"timestamp": func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
	"orDash": func(s string) string {
		if strings.TrimSpace(s) == "" {
			return "-"
		}
		return s
	},
}

// NewRenderer parses the layout with every view.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{views: make(map[string]*template.Template)}

	for _, view := range []string{ViewSongs, ViewSong, ViewLists, ViewErrors} {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+view+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", view, err)
		}
		r.views[view] = t
	}

	return r, nil
}

// Render writes view wrapped in the layout to w.
func (r *Renderer) Render(w io.Writer, view string, page Page) error {
	t, ok := r.views[view]
	if !ok {
		return fmt.Errorf("unknown view %q", view)
	}
	return t.ExecuteTemplate(w, "layout.html", page)
}
