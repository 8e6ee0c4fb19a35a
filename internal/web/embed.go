package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
)

//go:embed templates
var TemplatesFS embed.FS

//go:embed static
var StaticFS embed.FS

// Templates holds one template set per page, each parsed on top of the base
// layout so pages can define the same blocks independently.
type Templates struct {
	pages map[string]*template.Template
}

// LoadTemplates parses all templates from the embedded filesystem
func LoadTemplates() (*Templates, error) {
	baseContent, err := fs.ReadFile(TemplatesFS, "templates/layouts/base.html")
	if err != nil {
		return nil, err
	}

	entries, err := fs.ReadDir(TemplatesFS, "templates/pages")
	if err != nil {
		return nil, err
	}

	t := &Templates{pages: make(map[string]*template.Template, len(entries))}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		pageContent, err := fs.ReadFile(TemplatesFS, path.Join("templates/pages", entry.Name()))
		if err != nil {
			return nil, err
		}

		page, err := template.New(entry.Name()).Parse(string(baseContent))
		if err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", entry.Name(), err)
		}
		if _, err := page.Parse(string(pageContent)); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", entry.Name(), err)
		}
		t.pages[entry.Name()] = page
	}

	return t, nil
}

// Render executes the named page.
func (t *Templates) Render(w io.Writer, name string, data interface{}) error {
	page, ok := t.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return page.ExecuteTemplate(w, "base", data)
}

// GetStaticFS returns the static file system for serving static files
func GetStaticFS() (fs.FS, error) {
	return fs.Sub(StaticFS, "static")
}
