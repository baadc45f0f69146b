package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tendant/chi-demo/app"
	"github.com/tendant/user-switcher/pkg/config"
	"github.com/tendant/user-switcher/pkg/router"
	"github.com/tendant/user-switcher/pkg/settings"
)

func main() {
	// Setup logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
	}))
	slog.SetDefault(logger)

	slog.Info("Starting User Switcher Service")

	// Load .env file
	loadEnvFile()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to read configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	repo, cleanup, err := newSettingsRepository(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize settings storage",
			"persistence", cfg.SettingsPersistence,
			"error", err)
		os.Exit(1)
	}
	defer cleanup()

	routes, err := router.NewConfig(cfg, router.Options{
		Settings:   repo,
		Registerer: prometheus.DefaultRegisterer,
		Gatherer:   prometheus.DefaultGatherer,
	})
	if err != nil {
		slog.Error("Failed to initialize services", "error", err)
		os.Exit(1)
	}

	// Setup HTTP server
	server := app.DefaultApp()
	router.SetupRoutes(server.R, routes)

	slog.Info("User Switcher Service Ready",
		"host", cfg.HostBaseURL,
		"web", cfg.PublicBaseURL,
		"prefix", cfg.RoutePrefix,
		"persistence", cfg.SettingsPersistence,
		"metrics", cfg.MetricsEnabled)

	// Start server
	server.Run()
}

// newSettingsRepository opens the configured settings store. The returned
// cleanup releases any database pool.
func newSettingsRepository(ctx context.Context, cfg config.Config) (settings.Repository, func(), error) {
	repoConfig := settings.RepositoryConfig{DataDir: cfg.SettingsDataDir}
	cleanup := func() {}

	if cfg.SettingsPersistence == config.PersistencePostgres {
		pool, err := pgxpool.New(ctx, cfg.SettingsDatabase.ToDatabaseURL())
		if err != nil {
			return nil, cleanup, err
		}
		slog.Info("Database connected",
			"host", cfg.SettingsDatabase.Host,
			"database", cfg.SettingsDatabase.Database,
			"schema", cfg.SettingsDatabase.Schema)
		repoConfig.DB = pool
		cleanup = pool.Close
	}

	repo, err := settings.NewRepository(ctx, cfg.SettingsPersistence, repoConfig)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return repo, cleanup, nil
}

// loadEnvFile loads .env from the executable's directory, falling back to
// the working directory
func loadEnvFile() {
	execPath, err := os.Executable()
	if err != nil {
		return
	}

	execDir := filepath.Dir(execPath)
	envFile := filepath.Join(execDir, ".env")

	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		cwd, _ := os.Getwd()
		envFile = filepath.Join(cwd, ".env")
	}

	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		slog.Debug("No .env file found (using environment variables or defaults)")
		return
	}

	slog.Info("Loading configuration from .env file", "path", envFile)
	if err := godotenv.Load(envFile); err != nil {
		slog.Warn("Failed to load .env file", "error", err)
	}
}
