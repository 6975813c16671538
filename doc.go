// Package hxbind binds plain Go data models to the form controls of an
// HTML document and re-renders a templ template when a model changes.
//
// # Core Concepts
//
// A Registry owns the components of one document. The document is any
// dom.Document: lib/dom provides an in-memory one built on
// golang.org/x/net/html, and lib/dom/jsdom a syscall/js one for
// WebAssembly builds.
//
//	doc := dom.MustParse(page)
//	reg := hxbind.NewRegistry(doc, hxbind.WithLogger(log))
//
// A Component is one model, a graph of map[string]any, []any and scalar
// leaves, rendered into the element whose id is the component id:
//
//	c, err := reg.New(hxbind.Config{
//	    ID:           "profile",
//	    Data:         map[string]any{"user": map[string]any{"name": "Ada"}},
//	    Placeholders: map[string]any{"user.bio": "No bio yet"},
//	}, hxbind.WithRenderer(profileView))
//
// # Property Paths
//
// Properties are addressed with dotted and bracketed paths such as
// user.tags[0] or user["first name"]. Writes create missing objects and
// arrays along the way; see lib/proppath.
//
// # Binding
//
// Bind connects a form control to a property. The control shows the model
// value immediately; later edits flow back through the registry's input
// and change listeners, and every Set flows out to all controls bound to
// the property:
//
//	c.Bind("name-input", "user.name")
//	c.BindEvent("bio", "user.bio", hxbind.EventChange)
//
// Checkboxes and radios bind their checked state as a bool. Checking a
// bound radio sets the properties bound to the rest of its group to false.
//
// # Rendering
//
// Set marks a component dirty. Registry.Start runs a render loop that
// renders dirty components every 50ms by default; Registry.Tick runs one
// pass by hand. Templates are Renderer values, usually a RendererFunc
// returning a templ.Component or an html/template wrapped by HTMLTemplate.
//
// # Hooks
//
// Every bind, get, refresh, render and set passes through a pre and a post
// hook. Pre hooks can cancel; see Hooks, NopHooks and HookFuncs.
//
// # Snapshots
//
// SnapshotHandler serves component models over HTTP, signed or encrypted by
// lib/encoding. SnapshotClient fetches them back and implements Refresher,
// so a page can keep its models in step with the server.
//
// # Turns
//
// Component methods do not lock. Event dispatch, loop ticks, Ready and Do
// each run as one turn and never overlap, so code on other goroutines
// touches components through Registry.Do.
package hxbind
