// Command api is the FC26 Career Analyzer HTTP server.
//
// Usage:
//
//	career-api
//	API_PORT=8080 career-api

// @title FC26 Career Analyzer API
// @version 1.0.0
// @description Answers natural-language questions about an EA Sports FC 26 career save. Deterministic questions are answered from the database; everything else goes to the configured generative backend.
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
// @contact.name FC26 Career Analyzer
// @license.name MIT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/albapepper/career-analyzer/internal/api"
	"github.com/albapepper/career-analyzer/internal/cache"
	"github.com/albapepper/career-analyzer/internal/config"
	"github.com/albapepper/career-analyzer/internal/llm"
	"github.com/albapepper/career-analyzer/internal/logging"
	"github.com/albapepper/career-analyzer/internal/query"
	"github.com/albapepper/career-analyzer/internal/store"

	_ "github.com/albapepper/career-analyzer/docs" // swagger docs
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.LogFormat, level)
	slog.SetDefault(logger)

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	logger.Info("Connecting to database...")
	gw, err := store.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer gw.Close()

	appCache := cache.New(cfg.CacheEnabled)
	defer appCache.Close()
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled)

	client := llm.FromConfig(cfg, logger)
	logger.Info("Generative backend configured", "provider", cfg.LLMProvider, "backend", client.Backend().Name())
	qr := query.NewRouter(gw, client, cfg.ContextMaxTokens, logger)

	router := api.NewRouter(gw, qr, appCache, cfg, logger)

	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.LLMTimeout*2 + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting FC26 Career Analyzer API",
			"addr", addr,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
