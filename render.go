package hxbind

import (
	"bytes"
	"context"
	"html/template"

	"github.com/a-h/templ"
)

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, data map[string]any) templ.Component

func (f RendererFunc) Render(ctx context.Context, data map[string]any) templ.Component {
	return f(ctx, data)
}

// HTMLTemplate uses a standard library html/template as a component
// template. The template is executed with the model as its dot:
//
//	t := template.Must(template.New("profile").Parse(`<h1>{{.user.name}}</h1>`))
//	reg.New(cfg, hxbind.WithRenderer(hxbind.HTMLTemplate(t)))
func HTMLTemplate(t *template.Template) Renderer {
	return RendererFunc(func(ctx context.Context, data map[string]any) templ.Component {
		return templ.FromGoHTML(t, data)
	})
}

// renderString renders a templ component to a string.
func renderString(ctx context.Context, component templ.Component) (string, error) {
	if component == nil {
		return "", nil
	}
	var buf bytes.Buffer
	if err := component.Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
