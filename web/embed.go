// Package web holds the dashboard templates and browser assets.
package web

import (
	"embed"
	"html/template"
)

// TemplatesFS holds the page and the HTMX partials.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds the stylesheet and the chart script.
//
//go:embed static/*
var StaticFS embed.FS

// Templates parses every template with funcs available. Partials are
// addressed by file name, e.g. "kpis.html".
func Templates(funcs template.FuncMap) (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(TemplatesFS, "templates/*.html")
}
