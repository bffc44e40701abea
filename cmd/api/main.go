// Package main is the entry point for the Travel Diary API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/dmathew/travel-diary/internal/config"
	"github.com/dmathew/travel-diary/internal/geocode"
	"github.com/dmathew/travel-diary/internal/handler"
	"github.com/dmathew/travel-diary/internal/kvstore"
	"github.com/dmathew/travel-diary/internal/middleware"
	"github.com/dmathew/travel-diary/internal/repo"
	"github.com/dmathew/travel-diary/internal/service"
	"github.com/dmathew/travel-diary/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// log/slog is the stdlib structured logger introduced in Go 1.21.
	// JSON handler writes machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Tracing ----------------------------------------------------------
	// Trace export is opt-in: without OTLP_ADDR the default no-op provider
	// stays in place and spans cost almost nothing.
	if cfg.OTLPAddr != "" {
		shutdown, err := setupTracing(context.Background(), cfg.OTLPAddr)
		if err != nil {
			slog.Error("failed to set up trace export", "error", err)
			os.Exit(1)
		}
		defer shutdown()
		slog.Info("trace export enabled", "addr", cfg.OTLPAddr)
	}

	// --- Database ---------------------------------------------------------
	// pgxpool manages a pool of Postgres connections.
	// New() does not open connections immediately — the first query does.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	// --- Migrations -------------------------------------------------------
	// goose needs a database/sql handle; borrow one from the pool so both
	// share the same connection settings.
	if err := runMigrations(context.Background(), pool); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// --- Local key/value store --------------------------------------------
	kv, err := kvstore.Open(cfg.KVPath)
	if err != nil {
		slog.Error("failed to open key/value store", "error", err, "path", cfg.KVPath)
		os.Exit(1)
	}
	defer kv.Close()
	if err := kv.EnsureDefaults(context.Background()); err != nil {
		slog.Error("failed to seed key/value defaults", "error", err)
		os.Exit(1)
	}

	// --- Repositories and services ---------------------------------------
	trips := repo.NewTripRepo(pool)
	travelers := repo.NewTravelerRepo(pool)

	var geo service.Geocoder
	if cfg.GeocodeBaseURL != "" {
		geo = geocode.New(cfg.GeocodeBaseURL)
	}

	tripSvc := service.NewTripService(trips, travelers, geo, kv)
	travelerSvc := service.NewTravelerService(travelers)
	historySvc := service.NewHistoryService(trips)
	exportSvc := service.NewExportService(trips, travelers)

	api := handler.NewServer(tripSvc, travelerSvc, historySvc, exportSvc, kv)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer.
	// RequestID generates a unique trace ID per request.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP (safe behind a proxy).
	// SlogLogger writes one structured JSON log line per request.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(1 << 20)) // 1 MiB

	r.Mount("/", api.Router())

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// runMigrations applies all pending goose migrations using a database/sql
// handle opened from the pgx pool.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return err
	}
	if len(results) > 0 {
		slog.Info("migrations applied", "count", len(results))
	}
	return nil
}

// setupTracing installs a global OTLP/gRPC trace provider and returns a
// shutdown function that flushes pending spans.
func setupTracing(ctx context.Context, addr string) (func(), error) {
	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(addr),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			slog.Error("trace provider shutdown error", "error", err)
		}
	}, nil
}
