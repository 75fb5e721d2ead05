// Package templates renders the dashboard page and its panels. Markup lives in
// embedded html/template files; each panel is exposed as a templ.Component so
// the page handler and the SSE patch handlers render through the same path.
package templates

import (
	"context"
	"embed"
	"html/template"
	"io"
	"strings"

	"github.com/a-h/templ"
)

//go:embed html/*.html
var files embed.FS

var tmpl = template.Must(template.New("").ParseFS(files, "html/*.html"))

// fragment executes one named template as a component.
func fragment(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return tmpl.ExecuteTemplate(w, name, data)
	})
}

// RenderString renders a component into a string, for SSE element patches and
// for nesting panels inside the page.
func RenderString(ctx context.Context, c templ.Component) (string, error) {
	var sb strings.Builder
	if err := c.Render(ctx, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func renderHTML(ctx context.Context, c templ.Component) (template.HTML, error) {
	s, err := RenderString(ctx, c)
	return template.HTML(s), err
}
