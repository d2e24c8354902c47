package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/arctictools/nav-quicklook/internal/adapter/basemap"
	httpadapter "github.com/arctictools/nav-quicklook/internal/adapter/http"
	"github.com/arctictools/nav-quicklook/internal/adapter/netcdf"
	"github.com/arctictools/nav-quicklook/internal/config"
	"github.com/arctictools/nav-quicklook/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	store, err := netcdf.LoadStore(cfg, logger, metrics)
	if err != nil {
		logger.Error("failed to load datasets", "error", err)
		os.Exit(1)
	}

	// Basemap layer (feature-flagged via BASEMAP_ENABLED / BASEMAP_TOKEN).
	var fetcher basemap.Fetcher
	if cfg.BasemapEnabled {
		client := basemap.NewClient(cfg.BasemapToken, cfg.BasemapTimeout, logger)
		fetcher = basemap.NewCachedFetcher(client, cfg.BasemapCacheSize)
		metrics.BasemapEnabled.Set(1)
		logger.Info("basemap enabled", "cache_size", cfg.BasemapCacheSize, "timeout", cfg.BasemapTimeout)
	} else {
		logger.Info("basemap disabled")
	}

	srv := httpadapter.NewServer(cfg, store, fetcher, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
