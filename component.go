package hxbind

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/pthm/hxbind/lib/dom"
	"github.com/pthm/hxbind/lib/proppath"
)

// Component is one model bound to a region of the document.
//
// The element whose id equals the component id receives rendered markup.
// Form controls anywhere in the document can be bound to properties of the
// model; edits flow into the model through the registry's event listener
// and model writes flow back out to every bound control.
//
//	c, err := reg.New(hxbind.Config{
//	    ID:   "profile",
//	    Data: map[string]any{},
//	}, hxbind.WithRenderer(profileView))
//
//	c.Bind("name-input", "user.name")
//	c.Set("user.tags[0]", "admin")
//
// Component methods are not safe for concurrent use. While a Loop is
// running, call them from inside Registry.Do.
type Component struct {
	reg             *Registry
	id              string
	data            map[string]any
	clean           bool
	ready           bool
	refreshInterval time.Duration
	lastRefresh     time.Time
	placeholders    map[string]any
	hooks           Hooks
	renderer        Renderer
	refresher       Refresher
	bindsByProperty map[string][]*Bind
	declared        []BindSpec
}

// Option configures a component at construction.
type Option func(*componentOptions)

type componentOptions struct {
	hooks     Hooks
	hooksSet  bool
	renderer  Renderer
	refresher Refresher
}

// WithHooks installs hooks. Passing nil is an ErrArgument at construction.
func WithHooks(h Hooks) Option {
	return func(o *componentOptions) {
		o.hooks = h
		o.hooksSet = true
	}
}

// WithRenderer sets the template used by Render.
func WithRenderer(r Renderer) Option {
	return func(o *componentOptions) {
		o.renderer = r
	}
}

// WithRefresher sets the source of fresh data used by Refresh.
func WithRefresher(r Refresher) Option {
	return func(o *componentOptions) {
		o.refresher = r
	}
}

// ID returns the component id.
func (c *Component) ID() string { return c.id }

// Data returns the model. Write to it only through Set.
func (c *Component) Data() map[string]any { return c.data }

// Clean reports whether the component has been rendered since its last
// successful Set.
func (c *Component) Clean() bool { return c.clean }

// Ready reports whether the component's declarative binds have run.
func (c *Component) Ready() bool { return c.ready }

// RefreshInterval returns the configured refresh period, zero if none.
func (c *Component) RefreshInterval() time.Duration { return c.refreshInterval }

// Placeholders returns the render-time fallbacks by property path.
func (c *Component) Placeholders() map[string]any { return c.placeholders }

// HasPlaceholders reports whether any placeholder is configured.
func (c *Component) HasPlaceholders() bool { return len(c.placeholders) > 0 }

// Binds returns the binds for property in the order they were created.
func (c *Component) Binds(property string) []*Bind {
	return c.bindsByProperty[property]
}

// Bind binds the element with elementID to property for both input and
// change events. See BindEvent.
func (c *Component) Bind(elementID, property string) (bool, error) {
	return c.BindEvent(elementID, property, EventAny)
}

// BindEvent binds the element with elementID to property, listening only to
// event (EventInput, EventChange, or EventAny for both).
//
// The element must be an input, textarea or select. The current model value
// of property, if defined, is written into the element. BindEvent returns
// false without error when the PreBind hook cancels.
func (c *Component) BindEvent(elementID, property, event string) (bool, error) {
	if !c.hooks.PreBind(elementID, property) {
		return false, nil
	}
	if !validEvent(event) {
		return false, fmt.Errorf("%w: bind event must be %q, %q or empty, got %q", ErrArgument, EventChange, EventInput, event)
	}

	b := &Bind{
		component: c,
		elementID: elementID,
		property:  property,
		event:     event,
	}
	el, err := b.resolve(c.reg.doc)
	if err != nil {
		return false, err
	}
	if v, ok := c.Get(property); ok {
		b.setValue(el, v)
	}

	c.reg.addBind(b)
	c.bindsByProperty[property] = append(c.bindsByProperty[property], b)
	c.reg.log.Debug("bind",
		zap.String("component", c.id),
		zap.String("element", elementID),
		zap.String("property", property),
		zap.String("event", event),
	)

	c.hooks.PostBind(b)
	return true, nil
}

// Get returns the value at property and whether it is defined.
//
// A PreGet hook that answers skips the data lookup; a PostGet hook that
// answers replaces the result.
func (c *Component) Get(property string) (any, bool) {
	value, ok := c.hooks.PreGet(property)
	if !ok {
		value, ok = proppath.Get(c.data, property)
	}
	if v, override := c.hooks.PostGet(property, value, ok); override {
		value, ok = v, true
	}
	return value, ok
}

// Set writes value at property. See SetWithEvent.
func (c *Component) Set(property string, value any) (bool, error) {
	return c.SetWithEvent(property, value, nil)
}

// SetWithEvent writes value at property on behalf of ev, which may be nil.
//
// It returns false without error when the PreSet hook cancels or when the
// value is already there; PostSet is not called in either case. After a
// write the component is dirty, every element bound to property shows the
// new value, and PostSet has run. A non-nil error alongside true means the
// model changed but some bound element could not be updated.
func (c *Component) SetWithEvent(property string, value any, ev *dom.Event) (bool, error) {
	if !c.hooks.PreSet(property, value, ev) {
		return false, nil
	}
	changed, err := proppath.Set(c.data, property, value)
	if err != nil {
		return false, err
	}
	if !changed {
		return false, nil
	}

	c.clean = false
	c.reg.metrics.observeSet(c.id)

	var errs []error
	for _, b := range c.bindsByProperty[property] {
		if err := c.reg.push(b, value, ev); err != nil {
			errs = append(errs, err)
		}
	}

	c.hooks.PostSet(property, value, ev)
	c.reg.log.Debug("set", zap.String("component", c.id), zap.String("property", property))
	return true, errors.Join(errs...)
}

// Render runs the template against the model and replaces the content of
// the element whose id is the component id, then marks the component
// clean.
//
// When placeholders are configured the template sees a copy of the model
// in which every placeholder path that is undefined or "" holds its
// fallback. Without placeholders the model itself is passed. A component
// with no renderer only becomes clean.
func (c *Component) Render(ctx context.Context) error {
	el := c.reg.doc.ElementByID(c.id)
	if el == nil {
		return fmt.Errorf("%w: element %q for component %q", ErrNotFound, c.id, c.id)
	}

	data, err := c.renderData()
	if err != nil {
		return err
	}
	if !c.hooks.PreRender(data) {
		return nil
	}

	if c.renderer != nil {
		markup, err := renderString(ctx, c.renderer.Render(ctx, data))
		if err != nil {
			c.reg.metrics.observeRenderError(c.id)
			return fmt.Errorf("hxbind: render %q: %w", c.id, err)
		}
		if err := el.SetInnerHTML(markup); err != nil {
			c.reg.metrics.observeRenderError(c.id)
			return fmt.Errorf("hxbind: render %q: %w", c.id, err)
		}
	}

	c.clean = true
	c.reg.metrics.observeRender(c.id)
	c.hooks.PostRender(data)
	return nil
}

// renderData returns the model with placeholders applied to a copy.
func (c *Component) renderData() (map[string]any, error) {
	if len(c.placeholders) == 0 {
		return c.data, nil
	}
	data := proppath.CloneMap(c.data)
	for _, path := range sortedKeys(c.placeholders) {
		v, ok := proppath.Get(data, path)
		if ok && v != "" {
			continue
		}
		if _, err := proppath.Set(data, path, c.placeholders[path]); err != nil {
			return nil, fmt.Errorf("hxbind: placeholder %q: %w", path, err)
		}
	}
	return data, nil
}

// Refresh asks the component's Refresher for fresh data. When the data
// differs from the model, the model is replaced, bound elements are
// updated, and the component is rendered. Refresh reports whether the model
// changed. Without a Refresher it does nothing.
func (c *Component) Refresh(ctx context.Context, args map[string]any) (bool, error) {
	r, ok := c.beginRefresh(args)
	if !ok {
		return false, nil
	}
	data, err := r.Refresh(ctx, c.id, args)
	return c.applyRefresh(ctx, args, data, err)
}

// beginRefresh runs PreRefresh and stamps the refresh time. It returns the
// refresher to fetch from, or false when there is nothing to fetch.
func (c *Component) beginRefresh(args map[string]any) (Refresher, bool) {
	if !c.hooks.PreRefresh(args) {
		return nil, false
	}
	if c.refresher == nil {
		return nil, false
	}
	c.lastRefresh = c.reg.now()
	return c.refresher, true
}

// applyRefresh installs fetched data and renders.
func (c *Component) applyRefresh(ctx context.Context, args, data map[string]any, err error) (bool, error) {
	if err != nil {
		c.reg.metrics.observeRefresh(c.id, "error")
		return false, fmt.Errorf("hxbind: refresh %q: %w", c.id, err)
	}
	if data == nil || reflect.DeepEqual(data, c.data) {
		c.reg.metrics.observeRefresh(c.id, "unchanged")
		c.hooks.PostRefresh(args, false)
		return false, nil
	}

	c.data = data
	c.clean = false
	c.reg.metrics.observeRefresh(c.id, "changed")

	var errs []error
	for _, property := range sortedKeys(c.bindsByProperty) {
		v, ok := c.Get(property)
		if !ok {
			continue
		}
		for _, b := range c.bindsByProperty[property] {
			if err := c.reg.push(b, v, nil); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if err := c.Render(ctx); err != nil {
		errs = append(errs, err)
	}

	c.hooks.PostRefresh(args, true)
	return true, errors.Join(errs...)
}

func (c *Component) refreshDue(now time.Time) bool {
	return c.refresher != nil && c.refreshInterval > 0 && now.Sub(c.lastRefresh) >= c.refreshInterval
}

func validEvent(event string) bool {
	switch event {
	case EventAny, EventChange, EventInput:
		return true
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
