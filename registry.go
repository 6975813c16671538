package hxbind

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pthm/hxbind/lib/dom"
)

// DefaultRenderInterval is the period of the render loop.
const DefaultRenderInterval = 50 * time.Millisecond

// Registry owns the components of one document: the component table, the
// render order, and the index of binds by element id that routes DOM
// events to components.
//
// A Registry serializes "turns", the Go counterpart of a browser event
// loop task. Event dispatch, Ready and Do each run as one turn and never
// overlap; a loop tick runs as two turns with refresher fetches between
// them. Component methods do not lock; call them from inside
// Do when another goroutine may be running a turn.
type Registry struct {
	doc      dom.Document
	log      *zap.Logger
	metrics  *Metrics
	interval time.Duration
	now      func() time.Time

	turn sync.Mutex

	mu         sync.RWMutex
	components map[string]*Component
	list       []*Component
	bindsByID  map[string][]*Bind
	pending    []*Component
	removers   []func()
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) RegistryOption {
	return func(reg *Registry) {
		if log != nil {
			reg.log = log
		}
	}
}

// WithMetrics records component activity in m.
func WithMetrics(m *Metrics) RegistryOption {
	return func(reg *Registry) {
		reg.metrics = m
	}
}

// WithRenderInterval sets the render loop period.
func WithRenderInterval(d time.Duration) RegistryOption {
	return func(reg *Registry) {
		if d > 0 {
			reg.interval = d
		}
	}
}

// WithClock replaces time.Now, for tests of refresh scheduling.
func WithClock(now func() time.Time) RegistryOption {
	return func(reg *Registry) {
		if now != nil {
			reg.now = now
		}
	}
}

// NewRegistry creates a registry for doc and installs its input and change
// listeners on the document. Panics if doc is nil.
func NewRegistry(doc dom.Document, opts ...RegistryOption) *Registry {
	if doc == nil {
		panic("hxbind: nil document")
	}
	reg := &Registry{
		doc:        doc,
		log:        zap.NewNop(),
		interval:   DefaultRenderInterval,
		now:        time.Now,
		components: make(map[string]*Component),
		bindsByID:  make(map[string][]*Bind),
	}
	for _, opt := range opts {
		opt(reg)
	}

	for _, typ := range []string{dom.EventInput, dom.EventChange} {
		reg.removers = append(reg.removers, doc.AddEventListener(typ, reg.dispatch))
	}
	return reg
}

// Document returns the registry's document.
func (reg *Registry) Document() dom.Document {
	return reg.doc
}

// Close removes the document listeners. Components keep working but no
// longer receive DOM events.
func (reg *Registry) Close() {
	reg.mu.Lock()
	removers := reg.removers
	reg.removers = nil
	reg.mu.Unlock()

	for _, remove := range removers {
		remove()
	}
}

// New constructs and registers a component.
//
// cfg.ID and cfg.Data are required and the id must be unused; these, a nil
// WithHooks, a negative refresh interval and an invalid event filter in
// cfg.Binds are reported as ErrArgument. The binds in cfg.Binds run at the
// next call to Ready.
func (reg *Registry) New(cfg Config, opts ...Option) (*Component, error) {
	if cfg.ID == "" {
		return nil, fmt.Errorf("%w: missing required id", ErrArgument)
	}
	if cfg.Data == nil {
		return nil, fmt.Errorf("%w: missing required data for %q", ErrArgument, cfg.ID)
	}
	if cfg.RefreshInterval < 0 {
		return nil, fmt.Errorf("%w: negative refresh interval for %q", ErrArgument, cfg.ID)
	}
	var o componentOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.hooksSet && o.hooks == nil {
		return nil, fmt.Errorf("%w: nil hooks for %q", ErrArgument, cfg.ID)
	}
	for _, bs := range cfg.Binds {
		if bs.ElementID == "" || bs.Property == "" {
			return nil, fmt.Errorf("%w: bind for %q needs element and property", ErrArgument, cfg.ID)
		}
		if !validEvent(bs.Event) {
			return nil, fmt.Errorf("%w: bind event %q for %q", ErrArgument, bs.Event, cfg.ID)
		}
	}

	c := &Component{
		reg:             reg,
		id:              cfg.ID,
		data:            cfg.Data,
		clean:           true,
		refreshInterval: cfg.RefreshInterval,
		lastRefresh:     reg.now(),
		placeholders:    make(map[string]any, len(cfg.Placeholders)),
		hooks:           o.hooks,
		renderer:        o.renderer,
		refresher:       o.refresher,
		bindsByProperty: make(map[string][]*Bind),
		declared:        append([]BindSpec(nil), cfg.Binds...),
	}
	if c.hooks == nil {
		c.hooks = NopHooks{}
	}
	for path, v := range cfg.Placeholders {
		c.placeholders[path] = v
	}

	reg.mu.Lock()
	if _, exists := reg.components[c.id]; exists {
		reg.mu.Unlock()
		return nil, fmt.Errorf("%w: duplicate component id %q", ErrArgument, c.id)
	}
	reg.components[c.id] = c
	reg.list = append(reg.list, c)
	reg.pending = append(reg.pending, c)
	reg.mu.Unlock()

	reg.log.Debug("component registered", zap.String("component", c.id))
	return c, nil
}

// Ready signals that the document has loaded. It runs, as one turn, the
// declarative binds of every component constructed since the previous call
// and marks those components ready. Bind failures are logged and returned
// joined; they do not stop the remaining binds.
func (reg *Registry) Ready() error {
	reg.turn.Lock()
	defer reg.turn.Unlock()

	reg.mu.Lock()
	pending := reg.pending
	reg.pending = nil
	reg.mu.Unlock()

	var errs []error
	for _, c := range pending {
		for _, bs := range c.declared {
			if _, err := c.BindEvent(bs.ElementID, bs.Property, bs.Event); err != nil {
				reg.log.Warn("declared bind failed",
					zap.String("component", c.id),
					zap.String("element", bs.ElementID),
					zap.Error(err),
				)
				errs = append(errs, fmt.Errorf("component %q: %w", c.id, err))
			}
		}
		c.ready = true
	}
	return errors.Join(errs...)
}

// Component returns the registered component with the given id.
func (reg *Registry) Component(name string) (*Component, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	c, ok := reg.components[name]
	if !ok {
		return nil, fmt.Errorf("%w: component %q", ErrNotFound, name)
	}
	return c, nil
}

// Components returns the registered components in registration order.
func (reg *Registry) Components() []*Component {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return append([]*Component(nil), reg.list...)
}

// BindsFor returns the binds targeting elementID in creation order.
func (reg *Registry) BindsFor(elementID string) []*Bind {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return append([]*Bind(nil), reg.bindsByID[elementID]...)
}

// Reset forgets every component and bind. Components and binds created
// before the reset keep their own state and keep working when called
// directly, but DOM events no longer reach them and the render loop no
// longer visits them. Intended for test isolation.
func (reg *Registry) Reset() {
	reg.mu.Lock()
	reg.components = make(map[string]*Component)
	reg.list = nil
	reg.bindsByID = make(map[string][]*Bind)
	reg.pending = nil
	reg.mu.Unlock()

	reg.log.Debug("registry reset")
}

// Do runs fn as one turn.
func (reg *Registry) Do(fn func()) {
	reg.turn.Lock()
	defer reg.turn.Unlock()
	fn()
}

func (reg *Registry) addBind(b *Bind) {
	reg.mu.Lock()
	reg.bindsByID[b.elementID] = append(reg.bindsByID[b.elementID], b)
	reg.mu.Unlock()
}

// dispatch is the document listener for input and change events.
func (reg *Registry) dispatch(ev *dom.Event) {
	if ev == nil || ev.Target == nil {
		return
	}
	id := ev.Target.ID()
	if id == "" {
		return
	}

	reg.turn.Lock()
	defer reg.turn.Unlock()

	var binds []*Bind
	for _, b := range reg.BindsFor(id) {
		if b.accepts(ev.Type) {
			binds = append(binds, b)
		}
	}
	if len(binds) == 0 {
		return
	}

	// every bind on the element sees the same value
	first := binds[0]
	if _, err := first.resolve(reg.doc); err != nil {
		reg.log.Warn("dispatch", zap.String("element", id), zap.Error(err))
		return
	}
	value, changed := first.getValue(ev.Target)
	if !changed {
		return
	}
	reg.metrics.observeEvent(ev.Type)

	for _, b := range binds {
		if _, err := b.component.SetWithEvent(b.property, value, ev); err != nil {
			reg.log.Warn("set from event failed",
				zap.String("component", b.component.id),
				zap.String("property", b.property),
				zap.Error(err),
			)
		}
	}

	if first.isRadio() && value == true {
		reg.clearRadioGroup(ev.Target, ev)
	}
}

// push writes a model value into a bound element. A radio that becomes
// checked clears the model properties bound to the rest of its group.
func (reg *Registry) push(b *Bind, value any, ev *dom.Event) error {
	el, err := b.resolve(reg.doc)
	if err != nil {
		return err
	}
	if b.setValue(el, value) && b.isRadio() && truthy(value) {
		reg.clearRadioGroup(el, ev)
	}
	return nil
}

// clearRadioGroup sets to false every property bound to a radio that shares
// el's name, other than el itself.
func (reg *Registry) clearRadioGroup(el dom.Element, ev *dom.Event) {
	name, ok := el.Attr("name")
	if !ok || name == "" {
		return
	}
	self := el.ID()
	for _, sib := range reg.doc.ElementsByName(name) {
		id := sib.ID()
		if id == "" || id == self || !isRadioElement(sib) {
			continue
		}
		for _, b := range reg.BindsFor(id) {
			if _, err := b.component.SetWithEvent(b.property, false, ev); err != nil {
				reg.log.Warn("radio group update failed",
					zap.String("component", b.component.id),
					zap.String("property", b.property),
					zap.Error(err),
				)
			}
		}
	}
}

func isRadioElement(el dom.Element) bool {
	if !strings.EqualFold(el.TagName(), "input") {
		return false
	}
	t, _ := el.Attr("type")
	return strings.EqualFold(strings.TrimSpace(t), "radio")
}
