// Package main is the entry point for the sticker-service HTTP server.
// In Go, the `main` package with a `main()` function is what gets executed.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/fleveque/sticker-service/internal/config"
	"github.com/fleveque/sticker-service/internal/metrics"
	"github.com/fleveque/sticker-service/internal/server"
	"github.com/fleveque/sticker-service/internal/service"
	"github.com/fleveque/sticker-service/internal/storage"
)

func main() {
	// os.Exit ensures the process exits with a non-zero code on failure.
	// We call run() separately so deferred cleanup functions execute properly
	// (deferred functions don't run when os.Exit is called directly).
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Empty path: config.Load falls back to $STICKER_CONFIG_PATH.
	cfg, err := config.Load("")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// zap outputs JSON in production and human-readable format in development.
	var logger *zap.Logger
	if cfg.Log.Level == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	// Sync commonly fails on stdout/stderr; the error is not actionable.
	defer func() { _ = logger.Sync() }()

	// Conversion journal
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DatabasePath), 0755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}
	db, err := storage.NewDatabase(cfg.Storage.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	core, err := service.BuildCore(cfg, logger)
	if err != nil {
		return err
	}
	// Runs after the HTTP server has drained, so no new transcodes arrive.
	defer core.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New("sticker", reg)
	m.WatchTranscoder(core.Transcoder.Running, core.Transcoder.Waiting)

	svc := service.NewStickerService(core.Converter, core.Renderer,
		storage.NewConversionRepository(db), m, logger)

	srv := server.New(cfg, server.Deps{
		Service:  svc,
		Metrics:  m,
		Registry: reg,
	}, logger)

	// Graceful shutdown: listen for SIGINT (Ctrl+C) or SIGTERM (docker stop).
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	// Block until we receive a signal or the server errors out.
	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		if err != nil {
			return err
		}
	}

	// In-flight transcodes get their full budget before we give up.
	_, requestDeadline := server.Timeouts(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), requestDeadline)
	defer cancel()

	return srv.Shutdown(ctx)
}
