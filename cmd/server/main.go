package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shelf/internal/server/api"
	"shelf/internal/server/config"
	"shelf/internal/server/database"
	"shelf/internal/server/service"
	"shelf/internal/server/storage"
)

func main() {
	// Structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load config
	cfg := config.Load()
	slog.Info("configuration loaded",
		"port", cfg.Port,
		"asset_path", cfg.AssetPath,
		"max_upload_size", cfg.MaxUploadSize,
		"rate_limit", cfg.RateLimit,
		"rate_window", cfg.RateWindow,
	)

	// Connect to database
	ctx := context.Background()
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run migrations
	if err := db.RunMigrations(ctx); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations complete")

	// Initialize asset stores
	pictures := storage.NewStore(storage.ClassPictures, cfg.AssetPath)
	downloads := storage.NewStore(storage.ClassDownloads, cfg.AssetPath)
	for _, store := range []*storage.Store{pictures, downloads} {
		if err := store.EnsureDir(); err != nil {
			slog.Error("failed to initialize asset storage", "error", err)
			os.Exit(1)
		}
	}
	slog.Info("asset storage initialized", "path", cfg.AssetPath)

	// Initialize repository and services
	repo := database.NewRepository(db)
	books := service.NewBookService(repo, cfg.BaseURL)
	assets := service.NewAssetService(pictures, downloads)

	// Rate limiter with a background sweep for idle clients
	limiter := api.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	limiter.StartSweeper(sweepCtx, cfg.SweepInterval)

	// Setup HTTP router
	handler := api.NewHandler(books, assets, db)
	e := api.SetupRouter(handler, cfg, limiter)

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		slog.Info("starting server", "addr", addr, "base_url", cfg.BaseURL)
		if err := e.Start(addr); err != nil {
			slog.Info("server stopped", "reason", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutting down", "signal", sig)

	// Stop accepting new requests, finish in-flight with 30s timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	sweepCancel()

	slog.Info("server exited cleanly")
}
