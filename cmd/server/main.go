package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/tendant/chi-demo/app"
	"github.com/tendant/simple-cms/pkg/simplecms/api"
	"github.com/tendant/simple-cms/pkg/simplecms/config"
)

// Config holds the HTTP-facing settings. Repository, storage and schema
// settings are read by config.WithEnv under the CMS_ prefix.
type Config struct {
	RateLimitPerMin int    `env:"RATE_LIMIT_PER_MINUTE" env-default:"600"`
	RateLimitBurst  int    `env:"RATE_LIMIT_BURST" env-default:"50"`
	MaxRequestBytes int64  `env:"MAX_REQUEST_BYTES" env-default:"33554432"`
	EnvPrefix       string `env:"CMS_ENV_PREFIX" env-default:"CMS_"`
	LogDebug        bool   `env:"LOG_DEBUG" env-default:"false"`
}

func main() {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("Failed to read configuration", "err", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.LogDebug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	serverConfig, err := config.Load(config.WithEnv(cfg.EnvPrefix), config.WithLogger(logger))
	if err != nil {
		slog.Error("Failed to load service configuration", "err", err)
		os.Exit(1)
	}

	components, err := serverConfig.Build(context.Background())
	if err != nil {
		slog.Error("Failed to build service", "err", err)
		os.Exit(1)
	}
	slog.Info("Service configured",
		"database", serverConfig.DatabaseType,
		"storage", serverConfig.Storage.Type,
		"content_types", len(serverConfig.Settings.ContentTypes),
		"strict_projection", serverConfig.StrictProjection)

	server := app.DefaultApp()

	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	limiter := api.NewRateLimiter(cfg.RateLimitPerMin, cfg.RateLimitBurst)

	server.R.Route("/api/v1", func(r chi.Router) {
		r.Use(limiter.Middleware)
		r.Use(api.RequestSizeLimitMiddleware(cfg.MaxRequestBytes))
		api.Mount(r, components.Service, components.Projector, components.Store)
	})

	server.Run()
}
