// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/olegiv/ocms-pages/internal/cache"
	"github.com/olegiv/ocms-pages/internal/config"
	"github.com/olegiv/ocms-pages/internal/handler/api"
	"github.com/olegiv/ocms-pages/internal/logging"
	"github.com/olegiv/ocms-pages/internal/middleware"
	"github.com/olegiv/ocms-pages/internal/scheduler"
	"github.com/olegiv/ocms-pages/internal/service"
	"github.com/olegiv/ocms-pages/internal/store"
	"github.com/olegiv/ocms-pages/internal/version"
	"github.com/olegiv/ocms-pages/internal/webhook"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "ocms-pages - page layout API\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_DB_PATH               SQLite database path (default: ./data/pages.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_SERVER_HOST           Listen host (default: localhost)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_SERVER_PORT           Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_ENV                   development|production|test (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_API_BASE_PATH         API route prefix (default: /api/v1)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_REDIS_URL             Redis URL for the page-name cache (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_WEBHOOK_URLS          Comma separated webhook endpoints (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_WEBHOOK_SECRET        HMAC secret for webhook signatures\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_EVENT_RETENTION_DAYS  Days of event log to keep (default: 90)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_DO_SEED               Create a default application on first start\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Println(version.Get().String())
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})
	slog.SetDefault(slog.New(textHandler))

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}()

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// From here on WARN and ERROR records are also persisted to the event log.
	slog.SetDefault(slog.New(logging.NewEventLogHandler(textHandler, db)))
	slog.Info("database ready")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.DoSeed {
		if err := store.Seed(ctx, db); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	pageCache := cache.New(cache.Config{
		RedisURL:        cfg.RedisURL,
		Prefix:          cfg.CachePrefix,
		DefaultTTL:      cfg.CacheTTL,
		MaxSize:         cfg.CacheMaxSize,
		CleanupInterval: time.Minute,
	})
	defer func() { _ = pageCache.Close() }()
	slog.Info("cache initialized", "backend", pageCache.Stats().Backend)

	dispatcher := webhook.NewDispatcher(webhook.Config{
		Endpoints:    cfg.WebhookURLs,
		Secret:       cfg.WebhookSecret,
		Workers:      cfg.WebhookWorkers,
		AllowPrivate: cfg.WebhookAllowPrivate,
	}, slog.Default())
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	events := service.NewEventService(db)
	deps := service.Deps{
		DB:         db,
		Summaries:  service.NewSummaryCache(pageCache, cfg.CacheTTL),
		Dispatcher: dispatcher,
		Events:     events,
	}
	pages := service.NewPageService(deps)
	appPages := service.NewApplicationPageService(deps)
	apps := service.NewApplicationService(deps)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	sched := scheduler.New(slog.Default())
	if err := sched.AddRetention(cfg.RetentionSchedule, events, cfg.EventRetentionDays); err != nil {
		return fmt.Errorf("scheduling event retention: %w", err)
	}
	if err := sched.Add("ratelimit-prune", "@every 10m", func(context.Context) error {
		rateLimiter.Prune()
		return nil
	}); err != nil {
		return fmt.Errorf("scheduling rate limiter prune: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	if cfg.MetricsEnabled {
		r.Use(middleware.Metrics)
	}

	health := api.NewHealthHandler(map[string]api.CheckFunc{
		"database": db.PingContext,
		"cache":    pageCache.Ping,
	})
	api.Mount(r, health.Routes())
	if cfg.MetricsEnabled {
		prometheus.MustRegister(cache.NewStatsCollector(pageCache))
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route(cfg.APIBasePath, func(r chi.Router) {
		r.Use(rateLimiter.Middleware)
		r.Use(middleware.Timeout(cfg.RequestTimeout))
		api.Mount(r,
			api.NewPageHandler(pages, appPages).Routes(),
			api.NewApplicationHandler(apps).Routes(),
		)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		api.WriteNotFound(w, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		api.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed", nil)
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "base_path", cfg.APIBasePath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
