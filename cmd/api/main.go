package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"libracatalog/internal/circulation"
	"libracatalog/internal/config"
	"libracatalog/internal/httpserver"
	"libracatalog/internal/logger"
	"libracatalog/internal/seed"
	"libracatalog/internal/telemetry"
	"libracatalog/pkg/eventstore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel, cfg.PrettyLog)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTelEndpoint, cfg.ServiceName)
	if err != nil {
		return err
	}

	svc := circulation.NewService(eventstore.NewEventStore(), log)
	if err := seed.FromFile(ctx, cfg.SeedFile, svc); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	server := httpserver.New(cfg, log, svc)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down gracefully")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", logger.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracer shutdown failed", logger.Error(err))
	}
	return nil
}
