package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/mercato-app/mercato/internal/admins"
	"github.com/mercato-app/mercato/internal/app"
	"github.com/mercato-app/mercato/internal/auth"
	"github.com/mercato-app/mercato/internal/cache"
	"github.com/mercato-app/mercato/internal/moderation"
	"github.com/mercato-app/mercato/internal/observability"
	platformcache "github.com/mercato-app/mercato/internal/platform/cache"
	"github.com/mercato-app/mercato/internal/platform/db"
	"github.com/mercato-app/mercato/internal/products"
	"github.com/mercato-app/mercato/internal/rbac"
	"github.com/mercato-app/mercato/internal/shared"
	"github.com/mercato-app/mercato/internal/users"
	"github.com/mercato-app/mercato/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := platformcache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, listing cache degraded", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	tokens, err := shared.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		logger.Error("init token manager", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()
	if err := cache.SetupMetrics(metrics.Registerer()); err != nil {
		logger.Warn("register cache metrics", slog.Any("error", err))
	}
	listingCache := cache.New(redisClient, cfg.CacheTTL, logger)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo, tokens, listingCache, logger)

	adminsRepo := admins.NewRepository(pool)
	adminsService := admins.NewService(adminsRepo, tokens)

	productsRepo := products.NewRepository(pool)
	productsService := products.NewService(productsRepo, listingCache, logger)

	guard := rbac.Middleware{Tokens: tokens, Logger: logger}

	authHandler := auth.NewHandler(logger, usersService, adminsService)
	productsHandler := products.NewHandler(logger, productsService, guard)
	moderationHandler := moderation.NewHandler(logger, usersService, productsService, guard)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		AuthHandler:       authHandler,
		ProductsHandler:   productsHandler,
		ModerationHandler: moderationHandler,
		JobHandler:        jobHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
