package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	_ "github.com/joho/godotenv/autoload"
	"github.com/riandyrn/otelchi"
	otelchimetric "github.com/riandyrn/otelchi/metric"
	"go.opentelemetry.io/otel"

	"github.com/cortexcompose/compose/internal/api"
	"github.com/cortexcompose/compose/internal/app"
	"github.com/cortexcompose/compose/internal/config"
	"github.com/cortexcompose/compose/internal/jobs"
	"github.com/cortexcompose/compose/internal/logger"
	"github.com/cortexcompose/compose/internal/parallel"
	"github.com/cortexcompose/compose/internal/sentry"
	"github.com/cortexcompose/compose/internal/telemetry"
	"github.com/cortexcompose/compose/internal/ui"
	"github.com/cortexcompose/compose/internal/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var shutdownFuncs []func(context.Context) error

	// Initialize telemetry
	if cfg.OtelExporterOTLPEndpoint != "" {
		shutdown, err := telemetry.InitTelemetry(ctx, cfg.ServiceName, cfg.ServiceVersion, cfg.Env, cfg.OtelExporterOTLPEndpoint, cfg.OtelHeaders())
		if err != nil {
			slog.Warn("Failed to init telemetry", "error", err)
		} else {
			shutdownFuncs = append(shutdownFuncs, shutdown)
		}
	}

	// Initialize Sentry
	if err := sentry.Init(cfg.SentryDSN, cfg.Env, cfg.ServiceName, cfg.ServiceVersion); err != nil {
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

	sessions := ui.NewSessionStore(generator, cfg.UI.SessionTTL)
	go sessions.Run(ctx, time.Minute)
	uiHandler := ui.NewHandler(sessions, cfg.UI.RefreshInterval, cfg.Env == "production")

	// Background jobs need Redis
	var apiServer *api.Server
	if cfg.RedisURL != "" {
		redisClient, err := jobs.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		asynqClient, err := worker.NewClient(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to create queue client: %v", err)
		}
		shutdownFuncs = append(shutdownFuncs,
			func(context.Context) error { return asynqClient.Close() },
			func(context.Context) error { return redisClient.Close() },
		)

		apiServer = api.NewServer(generator, jobs.NewStore(redisClient, jobs.DefaultTTL), asynqClient, app.TaskTimeout(cfg))
	} else {
		slog.Info("REDIS_URL not set, background job routes disabled")
		apiServer = api.NewServer(generator, nil, nil, 0)
	}

	// Router
	r := chi.NewRouter()

	r.Use(otelchi.Middleware(cfg.ServiceName,
		otelchi.WithChiRoutes(r),
		otelchi.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health"
		}),
	))

	// HTTP metrics
	metricCfg := otelchimetric.NewBaseConfig(cfg.ServiceName, otelchimetric.WithMeterProvider(otel.GetMeterProvider()))
	r.Use(otelchimetric.NewRequestDurationMillis(metricCfg))
	r.Use(otelchimetric.NewRequestInFlight(metricCfg))
	r.Use(otelchimetric.NewResponseSizeBytes(metricCfg))

	r.Use(sentry.HTTPMiddleware)

	r.Get("/health", api.HandleHealth)

	uiHandler.Routes(r)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))
		apiServer.Routes(r)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.Port, "jobs", apiServer.JobsEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown failed", "error", err)
	}
	sessions.CloseAll()

	for _, err := range parallel.RunAll(shutdownCtx, shutdownFuncs) {
		slog.Error("Shutdown step failed", "error", err)
	}
}
