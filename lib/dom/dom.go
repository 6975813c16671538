// Package dom defines the slice of a document object model that the binding
// engine consumes, and provides an in-memory implementation of it.
//
// The engine only needs element lookup by id and by name, tag and attribute
// reads, the live value and checked state of form controls, replacing an
// element's content, and document-level event listeners. Anything that
// offers those can host components: the in-memory Doc in this package
// (server-side pre-filling, tests, the CLI) or the browser binding in
// lib/dom/jsdom.
package dom

import "errors"

// Event types the binding engine listens for.
const (
	EventInput  = "input"
	EventChange = "change"
)

// ErrNoElement is returned when an event is dispatched at an id that does
// not exist in the document.
var ErrNoElement = errors.New("dom: no such element")

// Event is a DOM event delivered to a document-level listener.
type Event struct {
	Type   string
	Target Element
	// Native is the host's own event object, if it has one.
	Native any
}

// Listener receives events of the type it was registered for.
type Listener func(ev *Event)

// Element is a single element node.
type Element interface {
	ID() string
	// TagName is lower case.
	TagName() string
	Attr(name string) (string, bool)
	Value() string
	SetValue(v string)
	Checked() bool
	SetChecked(v bool)
	SetInnerHTML(markup string) error
}

// Document is the host page.
type Document interface {
	// ElementByID returns nil when no element has the id.
	ElementByID(id string) Element
	// ElementsByName returns every element whose name attribute equals
	// name, in document order.
	ElementsByName(name string) []Element
	// AddEventListener registers fn for events of eventType anywhere in the
	// document and returns a function that removes it.
	AddEventListener(eventType string, fn Listener) (remove func())
}
