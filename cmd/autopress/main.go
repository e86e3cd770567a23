// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the autopress server. It loads
// configuration, connects to services, wires the pipeline and scheduler,
// and starts the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"autopress/internal/ai"
	"autopress/internal/bus"
	"autopress/internal/cache"
	"autopress/internal/config"
	"autopress/internal/database"
	"autopress/internal/handlers"
	"autopress/internal/middleware"
	"autopress/internal/pipeline"
	"autopress/internal/prompts"
	"autopress/internal/router"
	"autopress/internal/scheduler"
	"autopress/internal/storage"
	"autopress/internal/store"
	"autopress/internal/stream"
)

func main() {
	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: text to stderr, JSON to a file when configured.
	logger, closeLog := config.SetupLogger(cfg.LogFile, cfg.IsDev())
	defer closeLog()
	slog.SetDefault(logger)

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey; optional, previews go uncached without it.
	var previews *cache.PreviewCache
	if cfg.ValkeyHost != "" {
		valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			slog.Error("failed to connect to valkey", "error", err)
			os.Exit(1)
		}
		defer valkeyClient.Close()
		previews = cache.NewPreviewCache(valkeyClient, cache.DefaultPreviewTTL)
	} else {
		slog.Warn("valkey not configured, previews are rendered on every request")
	}

	// Connect to S3-compatible object storage; optional, the pipeline
	// skips image placement without it.
	storageClient, err := storage.New(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3Bucket, cfg.S3PublicURL,
	)
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	if storageClient != nil {
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured, generated articles ship without images")
	}

	// Initialize data stores.
	contentStore := store.NewContentStore(db)
	categoryStore := store.NewCategoryStore(db)
	assetStore := store.NewAssetStore(db)
	interactiveStore := store.NewInteractiveStore(db)
	runStore := store.NewRunStore(db)
	scheduleStore := store.NewScheduleStore(db)

	// Initialize the AI provider registry with all configured providers.
	aiRegistry := ai.NewRegistry(cfg.ActiveProvider, map[string]ai.ProviderConfig{
		"openai": {APIKey: cfg.OpenAIKey, Model: cfg.OpenAIModel, ModelImage: cfg.OpenAIModelImage},
		"gemini": {APIKey: cfg.GeminiKey, Model: cfg.GeminiModel, ModelImage: cfg.GeminiModelImage},
	})

	slog.Info("ai providers initialized",
		"active", aiRegistry.ActiveName(),
		"available", aiRegistry.Available(),
	)

	// Load the stage prompt library (embedded defaults plus overrides).
	promptLib, err := prompts.Load(cfg.PromptsFile)
	if err != nil {
		slog.Error("failed to load prompt library", "error", err)
		os.Exit(1)
	}

	// Progress events: process-wide bus, multiplexed per topic for clients.
	eventBus := bus.New()
	streams := stream.New(eventBus)

	// A nil *storage.Client must stay a nil interface for the pipeline's
	// uploader check.
	var uploader pipeline.Uploader
	if storageClient != nil {
		uploader = storageClient
	}

	pipe := pipeline.New(aiRegistry, uploader, eventBus, promptLib,
		contentStore, categoryStore, assetStore, interactiveStore)

	// Arm the scheduler from the stored configuration.
	sched := scheduler.New(pipe, runStore, scheduleStore)
	sched.Reconcile()
	defer sched.Stop()

	// Wire the HTTP layer. The rate limiter guards the manual trigger.
	api := handlers.NewAPI(sched, runStore, contentStore, scheduleStore, previews, streams, cfg.TriggerToken)
	limiter := middleware.NewRateLimiter(10, time.Minute)
	defer limiter.Stop()

	r := router.New(api, limiter)

	// WriteTimeout stays zero: the SSE and websocket streams are
	// long-lived and must not be cut by the server.
	srv := &http.Server{
		Addr:        cfg.Addr(),
		Handler:     r,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, disarm the scheduler,
	// then drain connections. In-flight pipeline runs finish on their own.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
