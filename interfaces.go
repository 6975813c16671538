package hxbind

import (
	"context"

	"github.com/a-h/templ"
)

// Renderer is the template of a component. It is called with the model
// (placeholders applied) and produces the markup placed inside the element
// whose id is the component id.
//
// Example:
//
//	var profileView = hxbind.RendererFunc(func(ctx context.Context, data map[string]any) templ.Component {
//	    return profileTemplate(data)
//	})
//
// Render should be pure: it reads data and produces HTML without side
// effects.
type Renderer interface {
	Render(ctx context.Context, data map[string]any) templ.Component
}

// Refresher fetches the current model of a component from its source of
// truth, typically the server that rendered the page. args are passed
// through from Component.Refresh and are nil for scheduled refreshes.
//
// Returning nil data means there is nothing new.
type Refresher interface {
	Refresh(ctx context.Context, id string, args map[string]any) (map[string]any, error)
}

// RefresherFunc adapts a function to Refresher.
type RefresherFunc func(ctx context.Context, id string, args map[string]any) (map[string]any, error)

func (f RefresherFunc) Refresh(ctx context.Context, id string, args map[string]any) (map[string]any, error) {
	return f(ctx, id, args)
}
