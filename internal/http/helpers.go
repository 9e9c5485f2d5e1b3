package http

import (
	"encoding/json"
	"html/template"
	"net/http"
	"strings"

	"ventas/internal/core"
)

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// templateFuncs are available in every dashboard template.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"currency": func(v float64) string { return core.FormatCurrency(core.Some(v), 2) },
		"percent":  func(v float64) string { return core.FormatNumber(core.Some(v), 1) + "%" },
		"date":     func(d core.Date) string { return d.Format("02/01/2006") },
		"iso":      func(d core.Date) string { return d.String() },
		"query":    func(sel core.Selection) string { return SelectionQuery(sel).Encode() },
	}
}
