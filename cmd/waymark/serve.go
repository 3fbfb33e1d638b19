package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vango-dev/waymark/internal/config"
	"github.com/vango-dev/waymark/internal/console"
	"github.com/vango-dev/waymark/pkg/location"
	"github.com/vango-dev/waymark/pkg/observe"
	"github.com/vango-dev/waymark/pkg/route"
	"github.com/vango-dev/waymark/pkg/router"
)

func serveCmd() *cobra.Command {
	var (
		manifest string
		addr     string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve route resolution over HTTP",
		Long: `Serve a route manifest.

Endpoints:
  GET /resolve?path=...  resolve a path, JSON response
  GET /routes            flattened route patterns
  GET /ws                interactive navigation console (WebSocket)
  GET /metrics           Prometheus metrics

Examples:
  waymark serve
  waymark serve --addr :8080 --manifest s3://configs/app/waymark.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), manifest, addr)
		},
	}

	cmd.Flags().StringVarP(&manifest, "manifest", "m", config.ManifestFileName, "Route manifest path or s3:// reference")
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from manifest)")

	return cmd
}

func runServe(ctx context.Context, manifestRef, addr string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	m, err := loadManifest(ctx, manifestRef)
	if err != nil {
		return err
	}
	routes, err := m.Build()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = m.Server.Addr
	}

	mux := chi.NewRouter()
	mux.Use(chimiddleware.RequestID)
	mux.Use(chimiddleware.RealIP)
	mux.Use(chimiddleware.Recoverer)

	var routerOpts []router.Option
	if m.MaxRedirects > 0 {
		routerOpts = append(routerOpts, router.WithMaxRedirects(m.MaxRedirects))
	}
	if m.Server.Metrics {
		metrics := observe.Metrics()
		routerOpts = append(routerOpts, router.WithObserver(metrics))
		mux.Handle("/metrics", promhttp.Handler())
	}

	mux.Get("/resolve", resolveHandler(routes, logger))
	mux.Get("/routes", routesHandler(routes))
	if m.Server.Console {
		mux.Handle("/ws", console.Handler(routes,
			console.WithLogger(logger),
			console.WithRouterOptions(routerOpts...),
		))
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving", "addr", addr, "manifest", manifestRef)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-stop:
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// resolveResponse is the JSON body of GET /resolve.
type resolveResponse struct {
	Matched  bool              `json:"matched"`
	Redirect string            `json:"redirect,omitempty"`
	Routes   []string          `json:"routes,omitempty"`
	Params   map[string]string `json:"params,omitempty"`
	Error    string            `json:"error,omitempty"`
}

func resolveHandler(routes []*route.Node, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		path := req.URL.Query().Get("path")
		if path == "" {
			http.Error(w, "missing path parameter", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")

		var resp resolveResponse
		state, redirect, err := router.Match(req.Context(), routes, location.New(path))
		switch {
		case err != nil:
			logger.Error("resolve failed", "path", path, "error", err)
			resp.Error = err.Error()
			w.WriteHeader(http.StatusBadGateway)
		case redirect != nil:
			resp.Redirect = redirect.String()
		case state != nil:
			resp.Matched = true
			resp.Routes = make([]string, len(state.Routes))
			for i, n := range state.Routes {
				resp.Routes[i] = n.Path
			}
			resp.Params = state.Params
		default:
			w.WriteHeader(http.StatusNotFound)
		}

		json.NewEncoder(w).Encode(resp)
	}
}

func routesHandler(routes []*route.Node) http.HandlerFunc {
	patterns := route.Patterns(routes)
	return func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(patterns)
	}
}
