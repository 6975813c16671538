//go:build js && wasm

// Command hxbindwasm runs hxbind in the browser. It constructs a component
// from every <script type="application/hxbind+json"> element on the page,
// binds it once the document has loaded and keeps the render loop running.
//
// A script element with a data-snapshot attribute refreshes its component
// from that snapshot endpoint; data-key holds the shared snapshot key.
//
//	<script type="application/hxbind+json" data-snapshot="/_snapshot" data-key="...">
//	  {"id": "profile", "data": {"name": "Ada"}, "binds": ["name"], "refreshInterval": "30s"}
//	</script>
package main

import (
	"context"
	"syscall/js"

	"go.uber.org/zap"

	"github.com/pthm/hxbind"
	"github.com/pthm/hxbind/lib/dom/jsdom"
)

const configSelector = `script[type="application/hxbind+json"]`

func main() {
	log, err := zap.NewDevelopment()
	if err != nil {
		log = zap.NewNop()
	}

	reg := hxbind.NewRegistry(jsdom.New(), hxbind.WithLogger(log))
	scripts := js.Global().Get("document").Call("querySelectorAll", configSelector)
	for i := 0; i < scripts.Length(); i++ {
		if err := newComponent(reg, scripts.Index(i)); err != nil {
			log.Error("component config", zap.Int("script", i), zap.Error(err))
		}
	}

	ready := func() {
		if err := reg.Ready(); err != nil {
			log.Warn("ready", zap.Error(err))
		}
	}
	if js.Global().Get("document").Get("readyState").String() == "loading" {
		var onLoad js.Func
		onLoad = js.FuncOf(func(this js.Value, args []js.Value) any {
			ready()
			onLoad.Release()
			return nil
		})
		js.Global().Get("document").Call("addEventListener", "DOMContentLoaded", onLoad)
	} else {
		ready()
	}

	loop := reg.Start(context.Background())
	<-loop.Done()
}

func newComponent(reg *hxbind.Registry, script js.Value) error {
	cfg, err := hxbind.ParseConfig([]byte(script.Get("textContent").String()), hxbind.FormatJSON)
	if err != nil {
		return err
	}

	var opts []hxbind.Option
	if base := script.Call("getAttribute", "data-snapshot"); !base.IsNull() {
		key := script.Call("getAttribute", "data-key")
		if key.IsNull() {
			key = js.ValueOf("")
		}
		enc, err := hxbind.NewEncoder([]byte(key.String()))
		if err != nil {
			return err
		}
		opts = append(opts, hxbind.WithRefresher(&hxbind.SnapshotClient{
			BaseURL: base.String(),
			Encoder: enc,
		}))
	}

	_, err = reg.New(cfg, opts...)
	return err
}
