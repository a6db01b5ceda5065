package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pthm/hxevent"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	var rows int
	cfg, cfgErr := hxevent.LoadConfig()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the delegated click demo",
		Long: `Serve a table whose rows each count their own clicks. The rows are
bound through one delegated listener on the table.

Settings are read from HXEVENT_* environment variables; flags override them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfgErr != nil {
				return cfgErr
			}
			logger, err := hxevent.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, rows, logger)
		},
	}

	cmd.Flags().StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address (HXEVENT_ADDR)")
	cmd.Flags().IntVar(&rows, "rows", 20, "Number of rows in the demo table")
	cmd.Flags().IntVar(&cfg.MaxPages, "max-pages", cfg.MaxPages, "Pages kept for callbacks (HXEVENT_MAX_PAGES)")
	cmd.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug|info|warn|error (HXEVENT_LOG_LEVEL)")
	cmd.Flags().StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: console|json (HXEVENT_LOG_FORMAT)")
	return cmd
}

func serve(ctx context.Context, cfg hxevent.Config, rows int, logger zerolog.Logger) error {
	if cfg.Key == "" {
		logger.Warn().Msg("HXEVENT_KEY not set, using a random key; pages expire on restart")
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(cfg, rows, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr).Int("rows", rows).Msg("hxevent listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errc
}

func newRouter(cfg hxevent.Config, rows int, logger zerolog.Logger) http.Handler {
	metrics := prometheus.NewRegistry()
	metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var key []byte
	if cfg.Key != "" {
		key = []byte(cfg.Key)
	}
	opts := append(cfg.Options(), hxevent.WithLogger(logger), hxevent.WithRegisterer(metrics))
	reg := hxevent.NewRegistry(key, opts...)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Method(http.MethodGet, "/", reg.PageHandler(func(req *http.Request) (*hxevent.Page, error) {
		return newDemoPage(rows)
	}))
	r.Handle(reg.Path()+"*", reg.Handler())
	if !strings.HasPrefix(reg.ResourcePath(), reg.Path()) {
		r.Handle(reg.ResourcePath()+"*", reg.Handler())
	}
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metrics, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

// requestLogger logs one line per request at debug level.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("took", time.Since(start)).
				Msg("request")
		})
	}
}
