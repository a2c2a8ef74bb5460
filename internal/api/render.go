package api

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strconv"

	"github.com/labstack/echo/v4"
)

// PlaceholderPoster is shown when a record has no poster.
const PlaceholderPoster = "https://via.placeholder.com/150x225?text=No+Poster"

// templateRenderer renders the embedded page templates.
type templateRenderer struct {
	templates *template.Template
}

func newTemplateRenderer(files fs.FS) (*templateRenderer, error) {
	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(files, "*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &templateRenderer{templates: tmpl}, nil
}

// Render implements echo.Renderer.
func (r *templateRenderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

var templateFuncs = template.FuncMap{
	"posterURL": func(url string) string {
		if url == "" {
			return PlaceholderPoster
		}
		return url
	},
	"orDefault": func(value, fallback string) string {
		if value == "" {
			return fallback
		}
		return value
	},
	"rating": func(r *float64) string {
		if r == nil {
			return "N/A"
		}
		return strconv.FormatFloat(*r, 'f', 1, 64)
	},
	"deref": func(n *int) int {
		if n == nil {
			return 0
		}
		return *n
	},
}
