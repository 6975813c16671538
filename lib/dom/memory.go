package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Doc is an in-memory Document backed by an x/net/html node tree.
//
// Form state lives in the tree itself: an input's value is its value
// attribute, a checkbox is checked when it carries the checked attribute, a
// textarea's value is its text, and a select's value is its selected option.
// Rendering the tree therefore shows the current state of every control.
//
// Like a browser, Doc does not fire events for programmatic changes; tests
// and callers fire them with Dispatch.
type Doc struct {
	mu        sync.RWMutex
	root      *html.Node
	listeners map[string][]*listener
}

type listener struct {
	fn Listener
}

// Parse reads an HTML document or fragment. Fragments are placed in the
// body of an implied document.
func Parse(r io.Reader) (*Doc, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse: %w", err)
	}
	return &Doc{
		root:      root,
		listeners: make(map[string][]*listener),
	}, nil
}

// ParseString is Parse for a string.
func ParseString(markup string) (*Doc, error) {
	return Parse(strings.NewReader(markup))
}

// MustParse is ParseString that panics on error, for tests and fixtures.
func MustParse(markup string) *Doc {
	d, err := ParseString(markup)
	if err != nil {
		panic(err)
	}
	return d
}

// ElementByID implements Document.
func (d *Doc) ElementByID(id string) Element {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n := d.byID(id)
	if n == nil {
		return nil
	}
	return &node{doc: d, n: n}
}

// ElementsByName implements Document.
func (d *Doc) ElementsByName(name string) []Element {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []Element
	walk(d.root, func(n *html.Node) bool {
		if v, ok := getAttr(n, "name"); ok && v == name {
			out = append(out, &node{doc: d, n: n})
		}
		return false
	})
	return out
}

// AddEventListener implements Document.
func (d *Doc) AddEventListener(eventType string, fn Listener) func() {
	l := &listener{fn: fn}
	d.mu.Lock()
	d.listeners[eventType] = append(d.listeners[eventType], l)
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		ls := d.listeners[eventType]
		for i, x := range ls {
			if x == l {
				d.listeners[eventType] = append(ls[:i:i], ls[i+1:]...)
				return
			}
		}
	}
}

// Dispatch fires an event of eventType at the element with the given id.
func (d *Doc) Dispatch(eventType, id string) error {
	el := d.ElementByID(id)
	if el == nil {
		return fmt.Errorf("%w: %q", ErrNoElement, id)
	}
	d.DispatchEvent(&Event{Type: eventType, Target: el})
	return nil
}

// DispatchEvent delivers ev to every listener registered for ev.Type, in
// registration order. Listeners run without any document lock held.
func (d *Doc) DispatchEvent(ev *Event) {
	d.mu.RLock()
	ls := append([]*listener(nil), d.listeners[ev.Type]...)
	d.mu.RUnlock()

	for _, l := range ls {
		l.fn(ev)
	}
}

// Render writes the whole document as HTML.
func (d *Doc) Render(w io.Writer) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return html.Render(w, d.root)
}

// String renders the document, returning an empty string on error.
func (d *Doc) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// InnerHTML renders the children of the element with id.
func (d *Doc) InnerHTML(id string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n := d.byID(id)
	if n == nil {
		return "", fmt.Errorf("%w: %q", ErrNoElement, id)
	}
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func (d *Doc) byID(id string) *html.Node {
	if id == "" {
		return nil
	}
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if v, ok := getAttr(n, "id"); ok && v == id {
			found = n
			return true
		}
		return false
	})
	return found
}

// walk visits element nodes depth first until visit returns true.
func walk(n *html.Node, visit func(*html.Node) bool) bool {
	if n.Type == html.ElementNode && visit(n) {
		return true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if walk(c, visit) {
			return true
		}
	}
	return false
}

// node is the Element implementation for Doc.
type node struct {
	doc *Doc
	n   *html.Node
}

func (e *node) ID() string {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	return attr(e.n, "id")
}

func (e *node) TagName() string {
	return e.n.Data
}

func (e *node) Attr(name string) (string, bool) {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	return getAttr(e.n, name)
}

func (e *node) Value() string {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	switch e.n.DataAtom {
	case atom.Textarea:
		return textContent(e.n)
	case atom.Select:
		var first *html.Node
		var selected *html.Node
		walk(e.n, func(n *html.Node) bool {
			if n.DataAtom != atom.Option {
				return false
			}
			if first == nil {
				first = n
			}
			if _, ok := getAttr(n, "selected"); ok {
				selected = n
				return true
			}
			return false
		})
		if selected == nil {
			selected = first
		}
		if selected == nil {
			return ""
		}
		return optionValue(selected)
	case atom.Input:
		if v, ok := getAttr(e.n, "value"); ok {
			return v
		}
		switch strings.ToLower(attr(e.n, "type")) {
		case "checkbox", "radio":
			return "on"
		}
		return ""
	default:
		return attr(e.n, "value")
	}
}

func (e *node) SetValue(v string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	switch e.n.DataAtom {
	case atom.Textarea:
		removeChildren(e.n)
		e.n.AppendChild(&html.Node{Type: html.TextNode, Data: v})
	case atom.Select:
		matched := false
		walk(e.n, func(n *html.Node) bool {
			if n.DataAtom != atom.Option {
				return false
			}
			if !matched && optionValue(n) == v {
				setAttr(n, "selected", "")
				matched = true
			} else {
				delAttr(n, "selected")
			}
			return false
		})
	default:
		setAttr(e.n, "value", v)
	}
}

func (e *node) Checked() bool {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	_, ok := getAttr(e.n, "checked")
	return ok
}

// SetChecked sets the checked state. Checking a radio button unchecks the
// other radio buttons with the same name, as a browser does.
func (e *node) SetChecked(v bool) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	if !v {
		delAttr(e.n, "checked")
		return
	}
	setAttr(e.n, "checked", "")
	if !isRadio(e.n) {
		return
	}
	name, ok := getAttr(e.n, "name")
	if !ok {
		return
	}
	walk(e.doc.root, func(n *html.Node) bool {
		if n != e.n && isRadio(n) && attr(n, "name") == name {
			delAttr(n, "checked")
		}
		return false
	})
}

func (e *node) SetInnerHTML(markup string) error {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	nodes, err := html.ParseFragment(strings.NewReader(markup), e.n)
	if err != nil {
		return fmt.Errorf("dom: parse fragment: %w", err)
	}
	removeChildren(e.n)
	for _, c := range nodes {
		e.n.AppendChild(c)
	}
	return nil
}

func isRadio(n *html.Node) bool {
	return n.DataAtom == atom.Input && strings.EqualFold(attr(n, "type"), "radio")
}

func optionValue(n *html.Node) string {
	if v, ok := getAttr(n, "value"); ok {
		return v
	}
	return strings.TrimSpace(textContent(n))
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collect(c)
	}
	return sb.String()
}

func removeChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
}

func attr(n *html.Node, key string) string {
	v, _ := getAttr(n, key)
	return v
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func delAttr(n *html.Node, key string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}
