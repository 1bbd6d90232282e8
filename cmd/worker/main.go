package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/cortexcompose/compose/internal/app"
	"github.com/cortexcompose/compose/internal/config"
	"github.com/cortexcompose/compose/internal/jobs"
	"github.com/cortexcompose/compose/internal/logger"
	"github.com/cortexcompose/compose/internal/sentry"
	"github.com/cortexcompose/compose/internal/telemetry"
	"github.com/cortexcompose/compose/internal/worker"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.RedisURL == "" {
		log.Fatal("REDIS_URL is required for the worker")
	}

	// Initialize telemetry
	if cfg.OtelExporterOTLPEndpoint != "" {
		shutdown, err := telemetry.InitTelemetry(ctx, cfg.ServiceName+"-worker", cfg.ServiceVersion, cfg.Env, cfg.OtelExporterOTLPEndpoint, cfg.OtelHeaders())
		if err != nil {
			slog.Warn("Failed to init telemetry", "error", err)
		} else {
			defer shutdown(ctx)
		}
	}

	// Initialize Sentry
	if err := sentry.Init(cfg.SentryDSN, cfg.Env, cfg.ServiceName+"-worker", cfg.ServiceVersion); err != nil {
		slog.Warn("Failed to init Sentry", "error", err)
	} else if cfg.SentryDSN != "" {
		defer sentry.Flush(2 * time.Second)
	}

	// Initialize logger with OTel support
	slog.SetDefault(logger.New(cfg.Env, cfg.LogLevel))

	generator, err := app.NewGenerator(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create recipe generator: %v", err)
	}

	redisClient, err := jobs.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	workerMetrics, err := worker.NewWorkerMetrics()
	if err != nil {
		slog.Warn("Failed to init worker metrics", "error", err)
	}

	processor := worker.NewRecipeProcessor(generator, jobs.NewStore(redisClient, jobs.DefaultTTL), workerMetrics)

	srv, err := worker.NewServer(cfg.RedisURL, 10)
	if err != nil {
		log.Fatalf("Failed to create worker: %v", err)
	}

	if err := worker.Start(srv, processor.Handlers()); err != nil {
		log.Fatalf("Worker failed: %v", err)
	}
	slog.Info("Worker started", "task", worker.TypeGenerateRecipes)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down worker...")
	srv.Shutdown()
}
