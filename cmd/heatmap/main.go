package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/sp-health-heatmap/internal/adapter/geosource"
	"github.com/couchcryptid/sp-health-heatmap/internal/adapter/healthcsv"
	httpadapter "github.com/couchcryptid/sp-health-heatmap/internal/adapter/http"
	"github.com/couchcryptid/sp-health-heatmap/internal/adapter/memo"
	"github.com/couchcryptid/sp-health-heatmap/internal/config"
	"github.com/couchcryptid/sp-health-heatmap/internal/domain"
	"github.com/couchcryptid/sp-health-heatmap/internal/observability"
	"github.com/couchcryptid/sp-health-heatmap/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	ds := cfg.Dataset

	health := memo.NewCachedHealthSource(
		healthcsv.NewLoader(ds.HealthSkipLines, logger),
		ds.MemoCacheSize, metrics,
	)
	geo := memo.NewCachedGeoSource(
		geosource.NewClient(ds.GeoDataURL, ds.GeoTimeout, ds.GeoMaxRetries, logger, metrics),
		ds.MemoCacheSize, metrics,
	)
	logger.Info("data sources configured",
		"health_path", ds.HealthCSVPath,
		"geo_url", ds.GeoDataURL,
		"region_code", ds.RegionCode,
		"cache_size", ds.MemoCacheSize,
	)

	aggregator := pipeline.NewAggregator(
		domain.HeatMapOptions{Radius: ds.MapRadius, Zoom: ds.MapZoom},
		ds.PreviewRows,
	)
	p := pipeline.New(health, geo, aggregator,
		pipeline.Options{HealthPath: ds.HealthCSVPath, RegionCode: ds.RegionCode},
		logger, metrics,
	)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Warm the caches so the first page load does not wait on the download.
	// A failure here is logged by the pipeline and retried on the next request.
	go func() {
		_, _ = p.Run(ctx)
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
