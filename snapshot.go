package hxbind

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pthm/hxbind/lib/proppath"
)

// SnapshotContentType is the media type of encoded snapshots.
const SnapshotContentType = "application/vnd.hxbind.snapshot"

// SnapshotOption configures SnapshotHandler.
type SnapshotOption func(*snapshotOptions)

type snapshotOptions struct {
	sensitive bool
}

// Sensitive encrypts snapshots instead of signing them.
func Sensitive() SnapshotOption {
	return func(o *snapshotOptions) {
		o.sensitive = true
	}
}

// SnapshotHandler serves the model of each component in reg at GET /{id},
// encoded by enc. Mount it under a prefix:
//
//	r.Mount("/_snapshot", hxbind.SnapshotHandler(reg, enc))
//
// Unknown ids answer 404.
func SnapshotHandler(reg *Registry, enc *Encoder, opts ...SnapshotOption) http.Handler {
	var o snapshotOptions
	for _, opt := range opts {
		opt(&o)
	}

	r := chi.NewRouter()
	r.Get("/{id}", func(w http.ResponseWriter, req *http.Request) {
		id := chi.URLParam(req, "id")
		c, err := reg.Component(id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		var snap Snapshot
		reg.Do(func() {
			snap = Snapshot{ID: c.ID(), Data: proppath.CloneMap(c.Data())}
		})

		encoded, err := enc.Encode(snap, o.sensitive)
		if err != nil {
			reg.log.Error("encode snapshot", zap.String("component", id), zap.Error(err))
			http.Error(w, "snapshot encoding failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", SnapshotContentType)
		w.Header().Set("Cache-Control", "no-store")
		_, _ = io.WriteString(w, encoded)
	})
	return r
}

// SnapshotClient fetches component models from a SnapshotHandler. It
// implements Refresher:
//
//	client := &hxbind.SnapshotClient{BaseURL: "https://example.com/_snapshot", Encoder: enc}
//	reg.New(cfg, hxbind.WithRefresher(client))
type SnapshotClient struct {
	BaseURL    string
	Encoder    *Encoder
	Sensitive  bool
	HTTPClient *http.Client
}

// Refresh fetches and decodes the snapshot for id. args are sent as query
// parameters.
func (sc *SnapshotClient) Refresh(ctx context.Context, id string, args map[string]any) (map[string]any, error) {
	u := strings.TrimSuffix(sc.BaseURL, "/") + "/" + url.PathEscape(id)
	if len(args) > 0 {
		q := url.Values{}
		for _, k := range sortedKeys(args) {
			q.Set(k, formatValue(args[k]))
		}
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	client := sc.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: snapshot %q", ErrNotFound, id)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("hxbind: snapshot %q: unexpected status %d", id, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	snap, err := sc.Encoder.Decode(strings.TrimSpace(string(body)), sc.Sensitive)
	if err != nil {
		return nil, wrapEncodingError(err)
	}
	if snap.ID != id {
		return nil, fmt.Errorf("%w: snapshot for %q answered as %q", ErrInvalidFormat, id, snap.ID)
	}
	return snap.Data, nil
}
