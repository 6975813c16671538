package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pthm/hxbind"
	"github.com/pthm/hxbind/lib/dom"
)

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve component model snapshots over HTTP",
		Long: `Load components from --config files and serve their models as signed (or,
with --sensitive, encrypted) snapshots at /_snapshot/{id}. Pages use these
snapshots to refresh bound components. Metrics are exposed at /metrics.

Every flag can also be set through the environment, e.g. HXBIND_KEY.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key := a.v.GetString("key")
			if key == "" {
				return errors.New("a snapshot key is required (--key or HXBIND_KEY)")
			}
			enc, err := hxbind.NewEncoder([]byte(key))
			if err != nil {
				return err
			}

			promReg := prometheus.NewRegistry()
			promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			reg := hxbind.NewRegistry(dom.MustParse(""),
				hxbind.WithLogger(a.log),
				hxbind.WithMetrics(hxbind.NewMetrics(promReg)),
			)
			defer reg.Close()

			if _, err := a.loadComponents(reg, a.v.GetStringSlice("config"), nil); err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              a.v.GetString("addr"),
				Handler:           newServeHandler(reg, enc, promReg, a.v.GetBool("sensitive"), a.v.GetStringSlice("cors-origin")),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.listen(ctx, srv)
		},
	}

	flags := cmd.Flags()
	flags.String("addr", ":8080", "listen address")
	flags.StringSliceP("config", "c", nil, "component configuration file (repeatable)")
	flags.String("key", "", "snapshot signing and encryption key")
	flags.Bool("sensitive", false, "encrypt snapshots instead of signing them")
	flags.StringSlice("cors-origin", nil, "allowed CORS origin (repeatable)")
	for _, name := range []string{"addr", "config", "key", "sensitive", "cors-origin"} {
		_ = a.v.BindPFlag(name, flags.Lookup(name))
	}
	return cmd
}

func newServeHandler(reg *hxbind.Registry, enc *hxbind.Encoder, promReg *prometheus.Registry, sensitive bool, origins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			MaxAge:         300,
		}))
	}

	var opts []hxbind.SnapshotOption
	if sensitive {
		opts = append(opts, hxbind.Sensitive())
	}
	r.Mount("/_snapshot", hxbind.SnapshotHandler(reg, enc, opts...))
	r.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	return r
}

func (a *app) listen(ctx context.Context, srv *http.Server) error {
	errc := make(chan error, 1)
	go func() {
		a.log.Info("listening", zap.String("addr", srv.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
