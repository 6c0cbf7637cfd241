// Spilldata API accepts sensor readings over HTTP and serves the latest reading per device.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AdilzhanB/Spilldataserver/pkg/api"
	"github.com/AdilzhanB/Spilldataserver/pkg/config"
	"github.com/AdilzhanB/Spilldataserver/pkg/logging"
	"github.com/AdilzhanB/Spilldataserver/pkg/storage"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "Path to a TOML config file, created with defaults when missing")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadServerConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	defer logging.Flush(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Decided once, kept for the lifetime of the process
	store, err := storage.Select(ctx, storage.Config{
		DatabaseURL: cfg.DatabaseURL,
		DataDir:     cfg.DataDir,
		DBTimeout:   cfg.DBTimeout(),
	}, log.Named("storage"))
	if err != nil {
		log.Error("no storage backend available", zap.Error(err))
		return err
	}
	defer store.Close()

	handler := api.NewAPIHandler(store, log.Named("api"))
	server := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           api.SetupRouter(handler, cfg.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      45 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting Spilldata API",
			zap.String("listen", server.Addr),
			zap.String("backend", string(store.Backend())))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			log.Error("server stopped", zap.Error(err))
			return err
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("graceful shutdown failed", zap.Error(err))
		return err
	}
	log.Info("shutdown complete")
	return nil
}
