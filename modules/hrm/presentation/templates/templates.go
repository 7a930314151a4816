// Package templates holds the server-rendered HTML of the HR screens.
package templates

import (
	"embed"
	"html/template"
)

//go:embed *.html
var FS embed.FS

// Parse parses every page and fragment.
func Parse() (*template.Template, error) {
	return template.New("hrm").ParseFS(FS, "*.html")
}
