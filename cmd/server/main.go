package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gatehouse/marketplace/internal/api"
	"github.com/gatehouse/marketplace/internal/catalog"
	"github.com/gatehouse/marketplace/internal/config"
	"github.com/gatehouse/marketplace/internal/logging"
	"github.com/gatehouse/marketplace/internal/obfuscation"
	"github.com/gatehouse/marketplace/internal/provider/psca"
	"github.com/gatehouse/marketplace/internal/service/marketplace"
)

func main() {
	// Load configuration
	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize logging
	logger := logging.Setup(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	logger.Info("starting marketplace server",
		slog.String("version", "0.1.0"),
		slog.Int("port", cfg.Server.Port),
		slog.String("database_driver", cfg.Database.Driver))

	ctx := context.Background()

	// Open the catalog store
	backend, err := catalog.Open(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to open catalog", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer backend.Close()

	if cfg.Catalog.SeedFile != "" {
		if !backend.Writable() {
			logger.Warn("catalog seed ignored for read-only backend",
				slog.String("driver", backend.Driver),
				slog.String("file", cfg.Catalog.SeedFile))
		} else {
			seed, err := backend.Seed(ctx, cfg.Catalog.SeedFile)
			if err != nil {
				logger.Error("failed to seed catalog", slog.String("error", err.Error()))
				os.Exit(1)
			}
			logger.Info("catalog seeded",
				slog.String("file", cfg.Catalog.SeedFile),
				slog.Int("plans", len(seed.Plans)),
				slog.Int("resources", len(seed.Resources)))
		}
	}

	// Initialize the marketplace service
	svcOpts := []marketplace.Option{
		marketplace.WithIDObfuscator(obfuscation.NewIDObfuscator(cfg.Obfuscation.IDSecret)),
		marketplace.WithWorkers(cfg.Marketplace.Workers),
		marketplace.WithCacheTTL(cfg.Marketplace.CacheTTL),
		marketplace.WithLogger(logger),
	}

	if cfg.AggregatorActive() {
		client := psca.NewClient(cfg.Aggregator.BaseURL,
			psca.WithAPIKey(cfg.Aggregator.APIKey),
			psca.WithTimeout(cfg.Aggregator.Timeout),
			psca.WithRateLimit(cfg.Aggregator.RateLimit, cfg.Aggregator.Burst),
			psca.WithDefaultLimit(cfg.Aggregator.DefaultLimit),
			psca.WithLogger(logger))
		svcOpts = append(svcOpts, marketplace.WithOfferSource(client))
		logger.Info("initialized PSCA aggregator", slog.String("base_url", cfg.Aggregator.BaseURL))
	} else {
		logger.Warn("aggregator not configured, serving from local catalog only")
	}

	if cfg.Obfuscation.IDSecret == "" {
		logger.Warn("PUBLIC_ID_SECRET not set, public IDs use the unkeyed hash")
	}

	svc := marketplace.New(backend.Resources, backend.Plans, svcOpts...)

	// Initialize API server (not ready yet)
	server := api.New(svc,
		api.WithLogger(logger),
		api.WithHost(cfg.Server.Host),
		api.WithPort(cfg.Server.Port),
		api.WithJWTSecret(cfg.Auth.JWTSecret),
		api.WithAdminAPIKey(cfg.Auth.AdminAPIKey),
		api.WithAllowedOrigins(cfg.CORS.AllowedOrigins))

	// Mark server as ready
	server.SetReady(true)

	// Handle shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutting down...")

		// Mark server as not ready to stop accepting new requests
		server.SetReady(false)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", slog.String("error", err.Error()))
		}
	}()

	// Start server
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
