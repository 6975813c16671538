//go:build js && wasm

// Package jsdom binds dom.Document to the browser's document through
// syscall/js, for components compiled to WebAssembly.
package jsdom

import (
	"strings"
	"syscall/js"

	"github.com/pthm/hxbind/lib/dom"
)

// Document wraps the page's global document object.
type Document struct {
	v js.Value
}

// New returns the Document for js.Global().document.
func New() *Document {
	return &Document{v: js.Global().Get("document")}
}

func (d *Document) ElementByID(id string) dom.Element {
	el := d.v.Call("getElementById", id)
	if el.IsNull() || el.IsUndefined() {
		return nil
	}
	return element{v: el}
}

func (d *Document) ElementsByName(name string) []dom.Element {
	list := d.v.Call("getElementsByName", name)
	n := list.Length()
	out := make([]dom.Element, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, element{v: list.Index(i)})
	}
	return out
}

// AddEventListener registers fn on the document. The returned function
// removes the listener and releases the underlying js.Func.
func (d *Document) AddEventListener(eventType string, fn dom.Listener) func() {
	cb := js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) == 0 {
			return nil
		}
		ev := args[0]
		var target dom.Element
		if t := ev.Get("target"); !t.IsNull() && !t.IsUndefined() {
			target = element{v: t}
		}
		fn(&dom.Event{Type: ev.Get("type").String(), Target: target, Native: ev})
		return nil
	})
	d.v.Call("addEventListener", eventType, cb)
	return func() {
		d.v.Call("removeEventListener", eventType, cb)
		cb.Release()
	}
}

type element struct {
	v js.Value
}

func (e element) ID() string {
	return e.v.Get("id").String()
}

func (e element) TagName() string {
	return strings.ToLower(e.v.Get("tagName").String())
}

func (e element) Attr(name string) (string, bool) {
	a := e.v.Call("getAttribute", name)
	if a.IsNull() {
		return "", false
	}
	return a.String(), true
}

func (e element) Value() string {
	return e.v.Get("value").String()
}

func (e element) SetValue(v string) {
	e.v.Set("value", v)
}

func (e element) Checked() bool {
	return e.v.Get("checked").Bool()
}

func (e element) SetChecked(v bool) {
	e.v.Set("checked", v)
}

func (e element) SetInnerHTML(markup string) error {
	e.v.Set("innerHTML", markup)
	return nil
}
