package hxbind

import (
	"fmt"
	"strings"

	"github.com/pthm/hxbind/lib/dom"
	"github.com/pthm/hxbind/lib/proppath"
)

// Event filters accepted by Component.BindEvent. EventAny binds both.
const (
	EventAny    = ""
	EventChange = dom.EventChange
	EventInput  = dom.EventInput
)

var bindElementTags = map[string]bool{
	"input":    true,
	"textarea": true,
	"select":   true,
}

// input types that carry no editable value
var unsupportedInputTypes = map[string]bool{
	"button": true,
	"submit": true,
	"reset":  true,
	"image":  true,
	"file":   true,
}

// Bind associates one element with one property of one component.
// Binds are created by Component.Bind and live for the lifetime of the
// component.
type Bind struct {
	component *Component
	elementID string
	property  string
	event     string

	// last value seen in or written to the element
	value    any
	hasValue bool

	// resolved on first contact with the element, then fixed
	resolved  bool
	tagName   string
	inputType string
}

// Component returns the component that owns the bind.
func (b *Bind) Component() *Component { return b.component }

// ElementID returns the id of the bound element.
func (b *Bind) ElementID() string { return b.elementID }

// Property returns the bound property path.
func (b *Bind) Property() string { return b.property }

// Event returns the event filter, EventAny for both.
func (b *Bind) Event() string { return b.event }

// Value returns the last value observed in or written to the element.
func (b *Bind) Value() (any, bool) { return b.value, b.hasValue }

// TagName returns the element's tag, empty until first resolved.
func (b *Bind) TagName() string { return b.tagName }

// Type returns the input type for input elements.
func (b *Bind) Type() string { return b.inputType }

func (b *Bind) accepts(eventType string) bool {
	return b.event == EventAny || b.event == eventType
}

func (b *Bind) isToggle() bool {
	return b.tagName == "input" && (b.inputType == "checkbox" || b.inputType == "radio")
}

func (b *Bind) isRadio() bool {
	return b.tagName == "input" && b.inputType == "radio"
}

// resolve finds the live element and, the first time, classifies it.
func (b *Bind) resolve(doc dom.Document) (dom.Element, error) {
	el := doc.ElementByID(b.elementID)
	if el == nil {
		return nil, fmt.Errorf("%w: element %q", ErrNotFound, b.elementID)
	}
	if b.resolved {
		return el, nil
	}

	tag := strings.ToLower(el.TagName())
	if !bindElementTags[tag] {
		return nil, fmt.Errorf("%w: <%s id=%q>", ErrUnsupportedElement, tag, b.elementID)
	}
	var typ string
	if tag == "input" {
		t, _ := el.Attr("type")
		typ = strings.ToLower(strings.TrimSpace(t))
		if typ == "" {
			typ = "text"
		}
		if unsupportedInputTypes[typ] {
			return nil, fmt.Errorf("%w: <input type=%q id=%q>", ErrUnsupportedElement, typ, b.elementID)
		}
	}

	b.tagName, b.inputType, b.resolved = tag, typ, true
	return el, nil
}

// getValue reads the element: checked state for checkboxes and radios,
// the string value otherwise. It reports false when the value matches the
// last one seen.
func (b *Bind) getValue(el dom.Element) (any, bool) {
	var v any
	if b.isToggle() {
		v = el.Checked()
	} else {
		v = el.Value()
	}
	if b.hasValue && proppath.Same(b.value, v) {
		return v, false
	}
	b.value, b.hasValue = v, true
	return v, true
}

// setValue writes value into the element unless it is nil or matches the
// last value seen, and reports whether the element was written.
func (b *Bind) setValue(el dom.Element, value any) bool {
	if value == nil {
		return false
	}
	if b.hasValue && proppath.Same(b.value, value) {
		return false
	}
	if b.isToggle() {
		el.SetChecked(truthy(value))
	} else {
		el.SetValue(formatValue(value))
	}
	b.value, b.hasValue = value, true
	return true
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	default:
		return true
	}
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
