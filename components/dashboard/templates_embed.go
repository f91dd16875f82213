package dashboard

import (
	"embed"
	"fmt"
	"io"
	"io/fs"

	template "github.com/goliatone/go-template"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// Renderer executes a named template against data, also writing to out.
// The controller renders both the grid view and the configuration page
// through it.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

// TemplatesFS returns the embedded view templates rooted at their directory,
// so "dashboard.html" resolves without a path prefix.
func TemplatesFS() (fs.FS, error) {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return nil, fmt.Errorf("dashboard: embedded templates: %w", err)
	}
	return sub, nil
}

// NewTemplateRenderer creates a go-template renderer over the embedded
// templates. It does not read the working directory.
func NewTemplateRenderer() (Renderer, error) {
	sub, err := TemplatesFS()
	if err != nil {
		return nil, err
	}
	return template.NewRenderer(
		template.WithFS(sub),
		template.WithExtension(".html"),
	)
}
