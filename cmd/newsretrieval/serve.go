package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/searcher"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/pkg/middleware"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Build the index and serve queries over HTTP",
	Long: `Build the index and answer queries over HTTP until interrupted.

Routes:
  GET /api/v1/search?q=...   result page, or {"query","count"} with count=true
  GET /api/v1/stats          index statistics
  GET /health/live           liveness probe
  GET /health/ready          readiness probe
  GET /metrics               Prometheus metrics`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "HTTP port (default from config)")
	addSearchFlags(serveCmd)
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
	}
	m := engineMetrics(true)
	s, err := newSearcher(ctx, m)
	if err != nil {
		return err
	}

	if cfg.Metrics.Enabled {
		shutdownMetrics, err := metrics.StartServer(cfg.Metrics.Port)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			shutdownMetrics(shutdownCtx)
		}()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      newRouter(s, m, cfg.Server),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serving: %w", err)
	}
	slog.Info("search service stopped")
	return nil
}

// newRouter registers the API, probe and metrics routes behind the
// metrics, timeout and request id middleware.
func newRouter(s *searcher.Searcher, m *metrics.Metrics, sc config.ServerConfig) http.Handler {
	checker := health.NewChecker()
	ix := s.Index()
	checker.Register("index", health.Probe(
		func(context.Context) error { return ix.Ready() },
		func() string { return fmt.Sprintf("%d articles indexed", ix.ArticleCount()) },
	))

	h := handler.New(s)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/stats", h.Stats)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())
	mux.Handle("GET /metrics", metrics.Handler())

	var chain http.Handler = mux
	chain = middleware.Timeout(sc.WriteTimeout)(chain)
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RequestID(chain)
	return chain
}
