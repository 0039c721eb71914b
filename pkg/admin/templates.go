package admin

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

// page names, each parsed on top of the shared layout
const (
	pageLogin     = "login.html"
	pageDashboard = "dashboard.html"
)

// pageData is passed to every page
type pageData struct {
	Title         string
	Authenticated bool
	Flashes       []flash
	Data          any
}

type templateSet struct {
	pages map[string]*template.Template
}

// parseTemplates parses the layout once and clones it for each page
func parseTemplates() (*templateSet, error) {
	layout, err := template.ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, err
	}

	set := &templateSet{pages: make(map[string]*template.Template)}
	for _, name := range []string{pageLogin, pageDashboard} {
		t, err := layout.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout for %s: %w", name, err)
		}
		if _, err := t.ParseFS(templateFS, "templates/"+name); err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		set.pages[name] = t
	}
	return set, nil
}

func (ts *templateSet) render(w io.Writer, page string, data pageData) error {
	t, ok := ts.pages[page]
	if !ok {
		return fmt.Errorf("template not found: %s", page)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
