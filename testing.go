package hxbind

import (
	"context"
	"strings"

	"github.com/pthm/hxbind/lib/dom"
	"github.com/pthm/hxbind/lib/proppath"
)

// TestResult holds the output of rendering a component for testing.
type TestResult struct {
	// HTML is the rendered template output.
	HTML string
	// Data is what the template saw, placeholders applied.
	Data map[string]any
}

// TestRender runs the component's template and returns its output without
// touching the document or the component's clean flag. Hooks do not run.
//
//	result, err := hxbind.TestRender(comp)
//	if !result.HTMLContains("Ada") {
//	    t.Fatal("missing name")
//	}
func TestRender(c *Component) (*TestResult, error) {
	return TestRenderWithContext(context.Background(), c)
}

// TestRenderWithContext is TestRender with a caller-supplied context, for
// templates that read request-scoped values.
func TestRenderWithContext(ctx context.Context, c *Component) (*TestResult, error) {
	data, err := c.renderData()
	if err != nil {
		return nil, err
	}
	result := &TestResult{Data: data}
	if c.renderer == nil {
		return result, nil
	}
	result.HTML, err = renderString(ctx, c.renderer.Render(ctx, data))
	if err != nil {
		return nil, err
	}
	return result, nil
}

// TestInput simulates a user typing value into the element with id: the
// element's value is replaced and an input event is dispatched.
func TestInput(doc *dom.Doc, id, value string) error {
	el := doc.ElementByID(id)
	if el == nil {
		return ErrNotFound
	}
	el.SetValue(value)
	return doc.Dispatch(dom.EventInput, id)
}

// TestCheck simulates a user toggling the checkbox or radio with id to
// checked, followed by a change event.
func TestCheck(doc *dom.Doc, id string, checked bool) error {
	el := doc.ElementByID(id)
	if el == nil {
		return ErrNotFound
	}
	el.SetChecked(checked)
	return doc.Dispatch(dom.EventChange, id)
}

// HTMLContains checks if the HTML contains a substring.
func (r *TestResult) HTMLContains(substr string) bool {
	return strings.Contains(r.HTML, substr)
}

// HTMLContainsAll checks if the HTML contains all the given substrings.
func (r *TestResult) HTMLContainsAll(substrs ...string) bool {
	for _, s := range substrs {
		if !strings.Contains(r.HTML, s) {
			return false
		}
	}
	return true
}

// HTMLContainsAny checks if the HTML contains any of the given substrings.
func (r *TestResult) HTMLContainsAny(substrs ...string) bool {
	for _, s := range substrs {
		if strings.Contains(r.HTML, s) {
			return true
		}
	}
	return false
}

// DataAt returns the value the template saw at path.
func (r *TestResult) DataAt(path string) (any, bool) {
	return proppath.Get(r.Data, path)
}
