// Package view renders the dashboard state as a single HTML page. Rendering
// is a pure function of the state.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/theirongolddev/bunkerdash/internal/model"
)

//go:embed templates/dashboard.gohtml
var templateFS embed.FS

type modalLink struct {
	Type  string
	ID    int64
	Label string
}

type deleteLink struct {
	Kind string
	ID   int64
}

var page = template.Must(template.New("dashboard.gohtml").Funcs(template.FuncMap{
	"modalLink": func(t string, id int64, label string) modalLink {
		return modalLink{Type: t, ID: id, Label: label}
	},
	"deleteLink": func(kind string, id int64) deleteLink {
		return deleteLink{Kind: kind, ID: id}
	},
	// svg marks chart markup produced by chart.RenderSVG as trusted.
	"svg": func(s string) template.HTML {
		//nolint:gosec // markup is generated from escaped labels and numbers
		return template.HTML(s)
	},
}).ParseFS(templateFS, "templates/dashboard.gohtml"))

// Render returns the full dashboard page for state.
func Render(state *model.State) (string, error) {
	p, err := BuildPage(state)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := page.Execute(&buf, p); err != nil {
		return "", fmt.Errorf("rendering dashboard: %w", err)
	}
	return buf.String(), nil
}
