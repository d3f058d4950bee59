// Package web serves the single-page dashboard.
package web

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"balance_insight/pkg/core/chart"
	"balance_insight/pkg/core/session"
)

//go:embed templates/index.html
var templates embed.FS

var page = template.Must(template.ParseFS(templates, "templates/index.html"))

// PageData fills the dashboard template.
type PageData struct {
	Title       string
	Provider    string
	Charts      []chart.Kind
	Suggestions []string
}

// Handler renders the dashboard. provider is called on each request so a
// provider switch shows on reload.
func Handler(title string, provider func() string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := PageData{
			Title:       title,
			Charts:      chart.Kinds,
			Suggestions: session.SuggestedQuestions,
		}
		if provider != nil {
			data.Provider = provider()
		}

		var buf bytes.Buffer
		if err := page.Execute(&buf, data); err != nil {
			slog.Error("dashboard template failed", "error", err)
			http.Error(w, "template error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(buf.Bytes())
	}
}
