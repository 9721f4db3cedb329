package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bookaio/backend/config"
	apierrors "github.com/bookaio/backend/pkg/api/errors"
	"github.com/bookaio/backend/pkg/api/handlers"
	apimw "github.com/bookaio/backend/pkg/api/middleware"
	"github.com/bookaio/backend/pkg/auth"
	"github.com/bookaio/backend/pkg/cache"
	"github.com/bookaio/backend/pkg/database"
	"github.com/bookaio/backend/pkg/engine"
	"github.com/bookaio/backend/pkg/history"
	"github.com/bookaio/backend/pkg/logger"
	"github.com/bookaio/backend/pkg/metrics"
	custommw "github.com/bookaio/backend/pkg/middleware"
	"github.com/bookaio/backend/pkg/models"
	"github.com/bookaio/backend/pkg/quota"
	"github.com/bookaio/backend/pkg/ratelimit"
	"github.com/bookaio/backend/pkg/validate"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	log.Info("configuration loaded", "environment", cfg.APIEnvironment)

	if cfg.UpstreamBaseURL == "" || cfg.UpstreamSecret == "" {
		log.Error("N8N_BASE_WEBHOOK_URL and N8N_WEBHOOK_SECRET must be set")
		os.Exit(1)
	}

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			AttachStacktrace: true,
		})
		if err != nil {
			log.Warn("failed to initialize sentry", "error", err)
		} else {
			log.Info("sentry initialized", "environment", cfg.SentryEnvironment)
			defer sentry.Flush(2 * time.Second)
		}
	}

	ctx := context.Background()

	// Postgres holds usage profiles and the generation history
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	db, err := database.NewClient(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	// Redis backs the token blacklist, and the rate limiter when selected
	var redisClient *cache.Client
	if cfg.RateLimitBackend == "redis" || cfg.RedisURL != "" {
		redisClient, err = cache.NewClient(cfg.RedisURL)
		if err != nil {
			if cfg.RateLimitBackend == "redis" {
				log.Error("failed to connect to redis", "error", err)
				os.Exit(1)
			}
			log.Warn("redis unavailable, continuing without token revocation", "error", err)
		} else {
			defer redisClient.Close()
			log.Info("redis connected")
		}
	}

	// Per-user rate limiter for the generate endpoint
	var limiter ratelimit.Limiter
	if cfg.RateLimitBackend == "redis" {
		limiter = ratelimit.NewRedisLimiter(redisClient.Redis, cfg.RateLimitMaxRequests, cfg.RateLimitWindow)
		log.Info("rate limiter initialized", "backend", "redis")
	} else {
		limiter = ratelimit.NewMemoryLimiter(cfg.RateLimitMaxRequests, cfg.RateLimitWindow)
		log.Info("rate limiter initialized", "backend", "memory")
	}

	// Services
	var blacklist *auth.TokenBlacklist
	if redisClient != nil {
		blacklist = auth.NewTokenBlacklist(redisClient)
	}
	verifier := auth.NewJWTVerifier(cfg.JWTSecret, blacklist)

	planLimits := models.PlanLimits{
		Free:      cfg.PlanLimitFree,
		Essential: cfg.PlanLimitEssential,
		Abundance: cfg.PlanLimitAbundance,
	}
	quotaService := quota.NewService(quota.NewPostgresStore(db.Pool), planLimits, log)
	historyService := history.NewService(db.Pool)
	engineClient := engine.New(cfg.UpstreamBaseURL, cfg.UpstreamSecret, cfg.UpstreamTimeout, log)

	prometheusMetrics := metrics.New(prometheus.DefaultRegisterer)

	// Handlers
	generateHandler := handlers.NewGenerateHandler(
		verifier,
		limiter,
		validate.New(cfg.MaxFieldLength),
		quotaService,
		engineClient,
		prometheusMetrics,
		log,
	)
	userHandler := handlers.NewUserHandler(quotaService, log)
	historyHandler := handlers.NewHistoryHandler(historyService, log)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = apierrors.ErrorHandler(log)

	e.Use(echomw.Recover())
	if cfg.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))
	}
	e.Use(prometheusMetrics.Middleware())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSAllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
	}))
	e.Use(echomw.Secure())

	// Coarse per-IP limit in front of everything
	globalRateLimiter := custommw.NewRateLimiter(60, 10)
	e.Use(globalRateLimiter.Middleware())

	// Health check
	e.GET("/health", func(c echo.Context) error {
		checkCtx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		dbStatus := "up"
		if err := db.Ping(checkCtx); err != nil {
			dbStatus = "down"
			status = http.StatusServiceUnavailable
		}

		redisStatus := "disabled"
		if redisClient != nil {
			redisStatus = "up"
			if err := redisClient.Ping(checkCtx); err != nil {
				redisStatus = "down"
				status = http.StatusServiceUnavailable
			}
		}

		return c.JSON(status, map[string]string{
			"status":   http.StatusText(status),
			"database": dbStatus,
			"redis":    redisStatus,
		})
	})

	// Prometheus metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// API routes
	v1 := e.Group("/api/v1")
	v1.POST("/generate", generateHandler.Generate)

	authed := v1.Group("", apimw.RequireAuth(verifier))
	authed.GET("/usage", userHandler.Usage)
	authed.GET("/history", historyHandler.List)
	authed.POST("/history", historyHandler.Record)

	// Start server with graceful shutdown
	go func() {
		addr := cfg.APIHost + ":" + cfg.APIPort
		log.Info("starting server", "addr", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
