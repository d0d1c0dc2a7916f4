package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vishalcoc44/Ai-Battlefield/internal/api"
	"github.com/vishalcoc44/Ai-Battlefield/internal/config"
	"github.com/vishalcoc44/Ai-Battlefield/internal/store"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and background reconciler",
	Long: `Loads configuration, applies pending migrations and serves the HTTP API.
The reconciler recomputes derived profile scores on RECONCILE_INTERVAL.`,
	RunE: runServe,
}

// bootstrap loads config and returns a logger and a migrated pool. The
// caller owns both.
func bootstrap(ctx context.Context) (*zap.Logger, *pgxpool.Pool, error) {
	if err := config.Load(); err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger()
	if err != nil {
		return nil, nil, err
	}

	dbURL := config.DatabaseURL()
	if dbURL == "" {
		_ = logger.Sync()
		return nil, nil, errors.New("DATABASE_URL is required")
	}

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		_ = logger.Sync()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info("connected to database")

	if err := store.Migrate(ctx, pool, logger); err != nil {
		pool.Close()
		_ = logger.Sync()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return logger, pool, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, pool, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	defer pool.Close()

	app := api.NewApp(pool, logger)
	app.Start()

	addr := config.ServerAddr()
	// No WriteTimeout: ring streams hold the response open.
	srv := &http.Server{
		Addr:              addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		app.Stop()
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	// Stopping the listener first closes open streams so Shutdown can drain.
	app.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
