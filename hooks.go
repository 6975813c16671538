package hxbind

import "github.com/pthm/hxbind/lib/dom"

// Hooks intercept component operations. Pre hooks run before the operation
// and can cancel or short-circuit it; post hooks run after it.
//
// Embed NopHooks to implement only the hooks you need:
//
//	type auditHooks struct {
//	    hxbind.NopHooks
//	    log *zap.Logger
//	}
//
//	func (h auditHooks) PostSet(property string, value any, ev *dom.Event) {
//	    h.log.Info("set", zap.String("property", property))
//	}
type Hooks interface {
	// PreBind returns false to cancel the bind.
	PreBind(elementID, property string) bool
	PostBind(b *Bind)

	// PreGet returns (value, true) to answer the get without reading data.
	PreGet(property string) (any, bool)
	// PostGet receives the resolved value and whether it was defined, and
	// returns (value, true) to replace it.
	PostGet(property string, value any, found bool) (any, bool)

	// PreRefresh returns false to cancel the refresh.
	PreRefresh(args map[string]any) bool
	PostRefresh(args map[string]any, changed bool)

	// PreRender returns false to skip the render. data is what the
	// template will see, with placeholders applied.
	PreRender(data map[string]any) bool
	PostRender(data map[string]any)

	// PreSet returns false to cancel the set. ev is nil for sets that did
	// not come from a DOM event.
	PreSet(property string, value any, ev *dom.Event) bool
	PostSet(property string, value any, ev *dom.Event)
}

// NopHooks implements every hook as a no-op that lets the operation
// proceed.
type NopHooks struct{}

func (NopHooks) PreBind(string, string) bool { return true }
func (NopHooks) PostBind(*Bind) {}
func (NopHooks) PreGet(string) (any, bool) { return nil, false }
func (NopHooks) PostGet(string, any, bool) (any, bool) { return nil, false }
func (NopHooks) PreRefresh(map[string]any) bool { return true }
func (NopHooks) PostRefresh(map[string]any, bool) {}
func (NopHooks) PreRender(map[string]any) bool { return true }
func (NopHooks) PostRender(map[string]any) {}
func (NopHooks) PreSet(string, any, *dom.Event) bool { return true }
func (NopHooks) PostSet(string, any, *dom.Event) {}

// HookFuncs implements Hooks with optional function fields. A nil field
// behaves like the matching NopHooks method.
type HookFuncs struct {
	OnPreBind     func(elementID, property string) bool
	OnPostBind    func(b *Bind)
	OnPreGet      func(property string) (any, bool)
	OnPostGet     func(property string, value any, found bool) (any, bool)
	OnPreRefresh  func(args map[string]any) bool
	OnPostRefresh func(args map[string]any, changed bool)
	OnPreRender   func(data map[string]any) bool
	OnPostRender  func(data map[string]any)
	OnPreSet      func(property string, value any, ev *dom.Event) bool
	OnPostSet     func(property string, value any, ev *dom.Event)
}

func (h *HookFuncs) PreBind(elementID, property string) bool {
	if h.OnPreBind == nil {
		return true
	}
	return h.OnPreBind(elementID, property)
}

func (h *HookFuncs) PostBind(b *Bind) {
	if h.OnPostBind != nil {
		h.OnPostBind(b)
	}
}

func (h *HookFuncs) PreGet(property string) (any, bool) {
	if h.OnPreGet == nil {
		return nil, false
	}
	return h.OnPreGet(property)
}

func (h *HookFuncs) PostGet(property string, value any, found bool) (any, bool) {
	if h.OnPostGet == nil {
		return nil, false
	}
	return h.OnPostGet(property, value, found)
}

func (h *HookFuncs) PreRefresh(args map[string]any) bool {
	if h.OnPreRefresh == nil {
		return true
	}
	return h.OnPreRefresh(args)
}

func (h *HookFuncs) PostRefresh(args map[string]any, changed bool) {
	if h.OnPostRefresh != nil {
		h.OnPostRefresh(args, changed)
	}
}

func (h *HookFuncs) PreRender(data map[string]any) bool {
	if h.OnPreRender == nil {
		return true
	}
	return h.OnPreRender(data)
}

func (h *HookFuncs) PostRender(data map[string]any) {
	if h.OnPostRender != nil {
		h.OnPostRender(data)
	}
}

func (h *HookFuncs) PreSet(property string, value any, ev *dom.Event) bool {
	if h.OnPreSet == nil {
		return true
	}
	return h.OnPreSet(property, value, ev)
}

func (h *HookFuncs) PostSet(property string, value any, ev *dom.Event) {
	if h.OnPostSet != nil {
		h.OnPostSet(property, value, ev)
	}
}
