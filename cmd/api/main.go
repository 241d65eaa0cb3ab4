// Command api is the Auction Alerts API server.
//
// Usage:
//
//	auction-alerts-api
//	API_PORT=8080 auction-alerts-api

// @title Auction Alerts API
// @version 1.0.0
// @description Auction-end notification service. Schedules a notification per favorited vehicle, reconciles against vehicle lists, and delivers through the backend bound at startup (preview, managed runtime, or native push).
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
// @contact.name MotorBid
// @license.name MIT
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/motorbid/auction-alerts/internal/api"
	"github.com/motorbid/auction-alerts/internal/config"
	"github.com/motorbid/auction-alerts/internal/db"
	"github.com/motorbid/auction-alerts/internal/environment"
	"github.com/motorbid/auction-alerts/internal/ledger"
	"github.com/motorbid/auction-alerts/internal/notify"
	"github.com/motorbid/auction-alerts/internal/scheduler"
	"github.com/motorbid/auction-alerts/internal/service"
	"github.com/motorbid/auction-alerts/internal/storage"

	_ "github.com/motorbid/auction-alerts/docs" // swagger docs
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if cfg.Debug {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
		slog.SetDefault(logger)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Open the key-value store backing the ledger. Postgres wins over
	// SQLite; with neither configured state is in-memory only.
	store, pool, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	if pool != nil {
		defer pool.Close()
	}

	// Bind the notification backend for this process lifetime
	backend, sel := environment.Select(ctx, cfg, logger)

	ledgerKey := config.LedgerStorageKey
	if sel.Backend == "preview" {
		ledgerKey = config.PreviewLedgerStorageKey
	}
	led := ledger.New(ledgerKey, store, logger)

	sched := scheduler.New(backend, led, cfg.SweepInterval, logger)
	svc := service.New(backend, sched, sel, logger)

	if err := svc.Initialize(ctx); err != nil {
		if errors.Is(err, notify.ErrPermissionDenied) {
			logger.Warn("Notification permission denied; favorites will not produce alerts until permission is granted")
		} else {
			logger.Error("Service initialization failed", "error", err)
			os.Exit(1)
		}
	}
	defer svc.Cleanup()

	// Create router
	router := api.NewRouter(svc, store, cfg)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting Auction Alerts API",
			"addr", addr,
			"environment", cfg.Environment,
			"backend", sel.Backend,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}

// openStore picks the durable store from configuration. The returned pool is
// non-nil only for Postgres and must outlive the store.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Store, *db.Pool, error) {
	switch {
	case cfg.DatabaseURL != "":
		logger.Info("Connecting to database...")
		pool, err := db.New(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		logger.Info("Database connected",
			"min_conns", cfg.DBPoolMinConns,
			"max_conns", cfg.DBPoolMaxConns)
		return storage.NewPostgres(pool), pool, nil

	case cfg.SQLitePath != "":
		s, err := storage.NewSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		logger.Info("SQLite store opened", "path", cfg.SQLitePath)
		return s, nil, nil

	default:
		logger.Warn("No DATABASE_URL or SQLITE_PATH set; scheduled notifications will not survive restarts")
		return storage.NewMemory(), nil, nil
	}
}
