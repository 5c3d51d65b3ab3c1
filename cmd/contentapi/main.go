// Package main is the entrypoint for the Content API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/thirdwave/contentapi/internal/api"
	"github.com/thirdwave/contentapi/internal/auth"
	"github.com/thirdwave/contentapi/internal/config"
	"github.com/thirdwave/contentapi/internal/database"
	"github.com/thirdwave/contentapi/internal/media"
	"github.com/thirdwave/contentapi/internal/permissions"
	"github.com/thirdwave/contentapi/internal/schema"
	"github.com/thirdwave/contentapi/internal/server"
	"github.com/thirdwave/contentapi/internal/store"
)

const (
	apiName    = "contentapi"
	apiVersion = "1.2.0"
)

func main() {
	cfg := config.Load()

	// --- Set up structured logging ---
	logLevel := slog.LevelInfo
	if cfg.DevMode {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("starting Content API",
		"version", apiVersion,
		"port", cfg.Port,
		"config_dir", cfg.ConfigDir,
		"files_dir", cfg.FilesDir,
		"dev_mode", cfg.DevMode,
	)

	// --- Connect to database ---
	if cfg.DatabaseURL == "" {
		slog.Error("CONTENTAPI_DATABASE_URL is required")
		os.Exit(1)
	}

	dbCtx, dbCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer dbCancel()

	db, err := database.Connect(dbCtx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database connected")

	// --- Run system table migrations ---
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("migrations applied")

	// --- Load configuration and content type descriptors ---
	apiConfig, err := config.LoadAPIConfig(filepath.Join(cfg.ConfigDir, "contentapi.yml"))
	if err != nil {
		slog.Error("failed to load API config", "error", err)
		os.Exit(1)
	}

	types, err := schema.LoadContentTypes(filepath.Join(cfg.ConfigDir, "contenttypes.yml"))
	if err != nil {
		slog.Error("failed to load content types", "error", err)
		os.Exit(1)
	}
	taxonomies, err := schema.LoadTaxonomyTypes(filepath.Join(cfg.ConfigDir, "taxonomy.yml"))
	if err != nil {
		slog.Error("failed to load taxonomy types", "error", err)
		os.Exit(1)
	}
	slog.Info("descriptors loaded", "contenttypes", len(types), "taxonomytypes", len(taxonomies))

	if err := schema.Validate(types, taxonomies); err != nil {
		slog.Error("descriptor validation failed", "error", err)
		os.Exit(1)
	}

	// --- Apply content tables ---
	engine := schema.NewEngine(db, store.TablePrefix)

	applyCtx, applyCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer applyCancel()

	if err := engine.Apply(applyCtx, types); err != nil {
		slog.Error("failed to apply content tables", "error", err)
		os.Exit(1)
	}
	slog.Info("content tables applied")

	// --- Set up authentication ---
	if cfg.JWTSecret == "" {
		slog.Error("CONTENTAPI_JWT_SECRET is required")
		os.Exit(1)
	}
	authHandler := auth.NewHandler(apiConfig, cfg.JWTSecret)
	authMiddleware := auth.Middleware(cfg.JWTSecret)

	// --- Wire the content API engine ---
	contentStore := store.NewPostgres(db, types, taxonomies)
	checker := permissions.NewChecker(apiConfig.Permissions)
	resolver := media.NewResolver(cfg.FilesDir, cfg.HostURL)
	apiEngine := api.NewEngine(contentStore, apiConfig, checker, resolver)
	apiHandler := api.NewHandler(apiEngine, apiName, apiVersion)

	// --- Build router and start server ---
	deps := server.Dependencies{
		DB:             db,
		APIConfig:      apiConfig,
		ContentRoutes:  func(r chi.Router) { apiHandler.Register(r) },
		AuthHandler:    authHandler,
		AuthMiddleware: authMiddleware,
		ThumbHandler:   media.NewThumbHandler(resolver).ServeThumb,
		FilesDir:       cfg.FilesDir,
	}

	router := server.NewRouter(deps)
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := server.New(addr, router)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		errCh <- srv.Start()
	}()

	// --- Graceful shutdown on SIGINT/SIGTERM ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	slog.Info("shutting down server (30s timeout)...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	slog.Info("Content API stopped")
}
