// Package main is the entrypoint for the PropertyFlow API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/propertyflow/propertyflow/internal/cache"
	"github.com/propertyflow/propertyflow/internal/config"
	"github.com/propertyflow/propertyflow/internal/handler"
	"github.com/propertyflow/propertyflow/internal/metrics"
	"github.com/propertyflow/propertyflow/internal/middleware"
	"github.com/propertyflow/propertyflow/internal/repository"
	"github.com/propertyflow/propertyflow/internal/server"
	"github.com/propertyflow/propertyflow/internal/service"
	"github.com/propertyflow/propertyflow/internal/tenant"
)

func main() {
	// Initialize context
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	legacyMapping, err := cfg.ParseLegacyTenantMap()
	if err != nil {
		slog.Error("failed to parse legacy tenant map", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	// Initialize services
	metricsRecorder := metrics.NewInMemory()
	resolver := tenant.NewResolver(repo, legacyMapping, cfg.DefaultTenantID, cfg.StoreTimeout, logger, metricsRecorder)
	revenueService := service.NewRevenueService(repo, cacheClient, cfg.RevenueCacheTTL, cfg.StoreTimeout, logger, metricsRecorder)
	dashboardService := service.NewDashboardService(revenueService, cfg.DefaultTenantID, logger, metricsRecorder)
	reservationService := service.NewReservationService(repo, revenueService, cfg.StoreTimeout, logger, metricsRecorder)

	// Initialize handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, logger)
	reservationHandler := handler.NewReservationHandler(reservationService, logger)
	adminHandler := handler.NewAdminHandler(revenueService, logger)

	// Setup router
	r := setupRouter(h, healthHandler, dashboardHandler, reservationHandler, adminHandler, resolver, cacheClient, cfg, logger)

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"default_tenant", cfg.DefaultTenantID,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h *handler.Handler,
	healthHandler *handler.HealthHandler,
	dashboardHandler *handler.DashboardHandler,
	reservationHandler *handler.ReservationHandler,
	adminHandler *handler.AdminHandler,
	resolver *tenant.Resolver,
	cacheClient *cache.Cache,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))

	// Health endpoints (no auth required)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	// Root info endpoint
	r.Get("/", h.Hello)

	// Auth middleware configuration
	authCfg := middleware.AuthConfig{
		Logger:   logger,
		Resolver: resolver,
		Cache:    cacheClient,
	}

	// Rate limit middleware configuration
	rateLimitCfg := middleware.RateLimitConfig{
		Logger:            logger,
		Cache:             cacheClient,
		Enabled:           cfg.RateLimitEnabled,
		RequestsPerMinute: cfg.RateLimitRPM,
		Burst:             cfg.RateLimitBurst,
	}

	// API v1 routes (require authentication)
	r.Route("/api/v1", func(r chi.Router) {
		// Apply auth and rate limit middleware to all API routes
		r.Use(middleware.Auth(authCfg))
		r.Use(middleware.RateLimitTenant(rateLimitCfg))

		// Dashboard reads. The tenant guard is not applied here: the
		// dashboard service falls back to the default tenant itself so
		// pre-migration accounts keep a working dashboard.
		r.Get("/dashboard/summary", dashboardHandler.Summary)

		// Reservation writes require a properly resolved tenant; writing
		// under a guessed tenant is worse than rejecting the request.
		r.With(middleware.RequireResolvedTenant()).Post("/reservations", reservationHandler.Create)

		// Operator endpoints, guarded by the pre-shared admin key.
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.AdminAuth(logger, cfg.AdminAPIKeyHash))
			r.Post("/cache/invalidate", adminHandler.InvalidateCache)
		})
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
