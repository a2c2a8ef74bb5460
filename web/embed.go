package web

import (
	"embed"
	"io/fs"
)

//go:embed all:templates
var templatesFS embed.FS

// TemplatesFS returns the embedded HTML templates.
func TemplatesFS() (fs.FS, error) {
	return fs.Sub(templatesFS, "templates")
}
