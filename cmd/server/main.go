// Package main runs the order summary service: an HTTP API, a websocket
// recompute trigger and Prometheus metrics.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"order-ledger/internal/config"
	"order-ledger/internal/logger"
	"order-ledger/internal/observability"
	"order-ledger/internal/pipeline"
)

// shutdownTimeout bounds graceful shutdown of in-flight requests.
const shutdownTimeout = 30 * time.Second

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "Path to YAML config file")
	envFile := flag.String("env-file", ".env", "Path to .env file (ignored if missing)")
	addr := flag.String("addr", "", "HTTP listen address (overrides server.addr)")
	sourceKind := flag.String("source", "", "Order source: http, file, postgres, clickhouse or fixtures")
	migrate := flag.Bool("migrate", false, "Apply database migrations before serving")
	flag.Parse()

	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *sourceKind != "" {
		cfg.Source.Kind = *sourceKind
	}
	if *migrate {
		cfg.Source.Migrate = true
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid flags: %v\n", err)
		os.Exit(1)
	}

	setup, err := logger.Init(cfg.Logger(), os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: init logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, setup.Logger)
	stop()

	if shutdownErr := setup.Shutdown(context.Background()); shutdownErr != nil {
		setup.Logger.Warn("Tracer shutdown failed", "error", shutdownErr)
	}
	if err != nil {
		setup.Logger.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
	setup.Logger.Info("Shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	p, closeSource, err := pipeline.FromConfig(ctx, cfg, log)
	defer closeSource()
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	p.WithMetrics(observability.DefaultMetrics)

	// A failed startup pass is logged, not fatal.
	if _, err := p.Recompute(ctx, pipeline.Request{
		Compact:   cfg.Display.Compact,
		SortOrder: cfg.SortOrder(),
		Trigger:   pipeline.TriggerStartup,
	}); err != nil {
		log.Warn("Startup recompute failed", "source", p.SourceName(), "error", err)
	}

	srv := NewServer(p, cfg, log)
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Starting HTTP server", "addr", cfg.Server.Addr, "source", p.SourceName())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
