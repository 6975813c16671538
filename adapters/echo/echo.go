// Package hxbindecho provides Echo framework integration for hxbind.
//
// Mount serves the snapshots of a registry's components on an Echo
// instance or group:
//
//	e := echo.New()
//	enc := hxbindecho.Mount(e, reg, hxbindecho.WithKey(key))
//
// Or mount on a group with middleware:
//
//	g := e.Group("/app", authMiddleware)
//	hxbindecho.MountGroup(g, reg, hxbindecho.WithKey(key))
package hxbindecho

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/pthm/hxbind"
)

// Option configures the Mount and MountGroup functions.
type Option func(*options)

type options struct {
	key       []byte
	path      string
	sensitive bool
}

// WithKey sets the snapshot key.
// The key should be at least 32 bytes of cryptographically random data.
// If not provided, a random key is generated (suitable for development only).
func WithKey(key []byte) Option {
	return func(o *options) {
		o.key = key
	}
}

// WithPath sets the URL path prefix for snapshot routes.
// Defaults to "/_snapshot/".
func WithPath(path string) Option {
	return func(o *options) {
		o.path = path
	}
}

// WithSensitive encrypts snapshots instead of signing them.
func WithSensitive() Option {
	return func(o *options) {
		o.sensitive = true
	}
}

// Mount serves snapshots of reg's components on an Echo instance and
// returns the encoder clients need to read them.
//
//	e := echo.New()
//	enc := hxbindecho.Mount(e, reg)
//
//	// With options:
//	enc := hxbindecho.Mount(e, reg, hxbindecho.WithKey(key), hxbindecho.WithSensitive())
func Mount(e *echo.Echo, reg *hxbind.Registry, opts ...Option) *hxbind.Encoder {
	m := newMount(reg, opts)
	e.GET(m.path+"*", m.serve)
	return m.enc
}

// MountGroup serves snapshots on an Echo group, so they share the group's
// middleware (auth, logging, etc.).
//
//	g := e.Group("/app", authMiddleware)
//	hxbindecho.MountGroup(g, reg)
func MountGroup(g *echo.Group, reg *hxbind.Registry, opts ...Option) *hxbind.Encoder {
	m := newMount(reg, opts)
	g.GET(m.path+"*", m.serve)
	return m.enc
}

type mount struct {
	enc    *hxbind.Encoder
	path   string
	routes http.Handler
}

// serve routes the wildcard tail to the snapshot handler, so the prefix of
// an instance or a group does not matter.
func (m *mount) serve(c echo.Context) error {
	r := c.Request().Clone(c.Request().Context())
	r.URL.Path = "/" + c.Param("*")
	r.URL.RawPath = ""
	m.routes.ServeHTTP(c.Response(), r)
	return nil
}

func newMount(reg *hxbind.Registry, opts []Option) *mount {
	o := &options{path: "/_snapshot/"}
	for _, opt := range opts {
		opt(o)
	}
	if !strings.HasSuffix(o.path, "/") {
		o.path += "/"
	}

	key := o.key
	if key == nil {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			panic(fmt.Sprintf("hxbindecho: failed to generate random key: %v", err))
		}
	}
	enc, err := hxbind.NewEncoder(key)
	if err != nil {
		panic(fmt.Sprintf("hxbindecho: %v", err))
	}

	var snapOpts []hxbind.SnapshotOption
	if o.sensitive {
		snapOpts = append(snapOpts, hxbind.Sensitive())
	}
	return &mount{
		enc:    enc,
		path:   o.path,
		routes: hxbind.SnapshotHandler(reg, enc, snapOpts...),
	}
}

// Render renders a page holding bound components and writes it with the
// given status. Nothing is written when the page fails to render.
//
//	e.GET("/profile", func(c echo.Context) error {
//	    return hxbindecho.Render(c, http.StatusOK, profilePage(reg))
//	})
func Render(c echo.Context, status int, page templ.Component) error {
	var buf bytes.Buffer
	if err := page.Render(c.Request().Context(), &buf); err != nil {
		return fmt.Errorf("hxbindecho: render page: %w", err)
	}
	return c.HTMLBlob(status, buf.Bytes())
}
