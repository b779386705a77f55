package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/possuite/print-bridge/internal/api"
	"github.com/possuite/print-bridge/internal/config"
	"github.com/possuite/print-bridge/internal/printer"
	"github.com/possuite/print-bridge/internal/registry"
)

// Version is set during build via ldflags
var Version = "dev"

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	reg, err := registry.New(cfg.Registry.Path)
	if err != nil {
		logger.Error("failed to open printer registry",
			slog.String("path", cfg.Registry.Path),
			slog.Any("error", err))
		os.Exit(1)
	}

	transport := printer.NewTransport(logger)
	server := api.NewServer(transport, reg, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTP.Port),
		Handler:      server.Handler(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		logger.Info("print bridge listening",
			slog.String("service", api.ServiceName),
			slog.String("version", Version),
			slog.String("port", cfg.HTTP.Port))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		logger.Error("server error", slog.Any("error", err))
		os.Exit(1)
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}
}
