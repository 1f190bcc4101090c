package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/luxmetrics/insights/internal/api"
	"github.com/luxmetrics/insights/internal/cache"
	"github.com/luxmetrics/insights/internal/config"
	"github.com/luxmetrics/insights/internal/metrics"
	"github.com/luxmetrics/insights/internal/pkg/logger"
	"github.com/luxmetrics/insights/internal/repository/postgres"
	"github.com/luxmetrics/insights/internal/service/attribution"
	"github.com/luxmetrics/insights/internal/service/dashboard"
	"github.com/luxmetrics/insights/internal/service/ltv"
)

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	configureLogger(cfg.Logging)

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = db.PingContext(pingCtx)
	pingCancel()
	if err != nil {
		logger.Error("ping database", "error", err)
		os.Exit(1)
	}

	snapshots := cache.New(connectRedis(cfg.Redis))

	events := postgres.NewEventRepo(db)
	metricsRepo := postgres.NewMetricsRepo(db)

	attribSvc := attribution.NewService(events, cfg.Analytics.DecayHalfLifeDays)
	ltvSvc := ltv.NewService(events, events, cfg.Analytics.PredictionMonths)
	dashSvc := dashboard.NewService(metricsRepo, attribSvc, ltvSvc)

	m := metrics.NewMetrics("insights")

	handlers := api.NewHandlers(attribSvc, ltvSvc, dashSvc, snapshots, cfg)
	handlers.SetMetrics(m)
	router := api.SetupRoutes(handlers)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go reportDBStats(ctx, db, m)

	addr := fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	logger.Info("server stopping")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func configureLogger(cfg config.LoggingConfig) {
	switch strings.ToLower(cfg.Level) {
	case "debug":
		logger.SetLevel(logger.DEBUG)
	case "warn":
		logger.SetLevel(logger.WARN)
	case "error":
		logger.SetLevel(logger.ERROR)
	default:
		logger.SetLevel(logger.INFO)
	}
	if cfg.RedactPII != nil {
		logger.SetRedactPII(*cfg.RedactPII)
	}
}

// connectRedis opens the snapshot cache connection. The cache is optional:
// when Redis is disabled or unreachable the server runs without it and every
// dashboard request is computed fresh.
func connectRedis(cfg config.RedisConfig) *redis.Client {
	if !cfg.Enabled {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, snapshot cache disabled", "addr", cfg.Addr, "error", err)
		client.Close()
		return nil
	}

	logger.Info("snapshot cache connected", "addr", cfg.Addr)
	return client
}

// reportDBStats publishes connection pool gauges every 15 seconds.
func reportDBStats(ctx context.Context, db *sql.DB, m *metrics.Metrics) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := db.Stats()
			m.UpdateDBStats(stats.Idle, stats.InUse, stats.OpenConnections)
		}
	}
}
