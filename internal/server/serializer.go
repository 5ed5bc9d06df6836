package server

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/desertthunder/songbook/internal/web"
)

// Format is the negotiated response representation.
type Format string

const (
	FormatJSON Format = "json"
	FormatHTML Format = "html"
)

const (
	viewSongs  = web.ViewSongs
	viewSong   = web.ViewSong
	viewLists  = web.ViewLists
	viewErrors = web.ViewErrors
)

// Negotiate picks the representation for r: a ".json" path suffix or an Accept header
// naming application/json selects JSON, anything else HTML.
func Negotiate(r *http.Request) Format {
	if strings.HasSuffix(r.URL.Path, ".json") {
		return FormatJSON
	}

	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		if mediaType == "application/json" {
			return FormatJSON
		}
	}

	return FormatHTML
}

// Serializer writes a [Result] in one representation.
type Serializer interface {
	ContentType() string
	Serialize(w io.Writer, res Result) error
}

// JSONSerializer writes Result.Raw or the JSON encoding of Result.Value.
type JSONSerializer struct{}

func (JSONSerializer) ContentType() string { return "application/json; charset=utf-8" }

func (JSONSerializer) Serialize(w io.Writer, res Result) error {
	if res.Raw != nil {
		_, err := w.Write(res.Raw)
		return err
	}
	return json.NewEncoder(w).Encode(res.Value)
}

// HTMLSerializer renders Result.View through the embedded templates.
type HTMLSerializer struct {
	renderer *web.Renderer
}

func NewHTMLSerializer(renderer *web.Renderer) HTMLSerializer {
	return HTMLSerializer{renderer: renderer}
}

func (HTMLSerializer) ContentType() string { return "text/html; charset=utf-8" }

func (s HTMLSerializer) Serialize(w io.Writer, res Result) error {
	data := res.HTML
	if data == nil {
		data = res.Value
	}

	view := res.View
	if view == "" {
		view = viewErrors
	}

	return s.renderer.Render(w, view, web.Page{Title: res.Title, Data: data})
}
