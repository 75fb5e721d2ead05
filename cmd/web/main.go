package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"ecodrops-dashboard/internal/config"
	"ecodrops-dashboard/internal/dataset"
	"ecodrops-dashboard/internal/middleware"
	"ecodrops-dashboard/internal/observability"
	"ecodrops-dashboard/internal/server"
	"ecodrops-dashboard/internal/services"
)

const (
	version       = "1.0.0"
	sweepInterval = time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", version,
		"config", cfg,
	)

	metrics := observability.NewMetrics()

	dashboard, err := loadDashboard(context.Background(), cfg, metrics, logger)
	if err != nil {
		logger.Error("failed to load dataset", "error", err)
		os.Exit(1)
	}

	rateLimiter := middleware.NewRateLimiter(cfg.Security)
	srv := server.NewServer(dashboard, metrics, logger)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      newHandler(cfg, srv, metrics, rateLimiter, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go sweepLoop(sweepCtx, clockwork.NewRealClock(), rateLimiter, sweepInterval, logger)

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("stopping rate limiter sweep")
		stopSweep()
		return nil
	})

	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}

// loadDashboard reads the configured CSV once and publishes the dataset gauges.
func loadDashboard(ctx context.Context, cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) (*services.Dashboard, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Dataset.LoadTimeout)
	defer cancel()

	loader := dataset.NewLoader(
		dataset.WithCacheDir(cfg.Dataset.CacheDir),
		dataset.WithLogger(logger),
	)

	start := time.Now()
	table, err := loader.Load(ctx, cfg.Dataset.CSVFile)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", cfg.Dataset.CSVFile, err)
	}
	duration := time.Since(start)

	metrics.DatasetLoadDuration.Observe(duration.Seconds())
	metrics.DatasetRecords.Set(float64(table.Len()))
	metrics.DatasetSkippedRows.Set(float64(len(table.Skipped())))

	if table.Len() == 0 {
		logger.Warn("dataset is empty, dashboard will show no data", "path", cfg.Dataset.CSVFile)
	}
	logger.Info("dataset loaded",
		"records", table.Len(),
		"skipped", len(table.Skipped()),
		"duration", duration,
	)

	return services.NewDashboard(table, services.WithLogger(logger)), nil
}

func newHandler(cfg *config.Config, srv http.Handler, metrics *observability.Metrics, limiter *middleware.RateLimiter, logger *slog.Logger) http.Handler {
	chain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(logger),
		middleware.Metrics(metrics),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(limiter, logger),
	)
	return chain(srv)
}

// sweepLoop evicts idle rate-limit buckets until ctx is cancelled.
func sweepLoop(ctx context.Context, clock clockwork.Clock, limiter *middleware.RateLimiter, interval time.Duration, logger *slog.Logger) {
	ticker := clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if n := limiter.Sweep(); n > 0 {
				logger.Debug("evicted idle rate limiters", "count", n)
			}
		}
	}
}
