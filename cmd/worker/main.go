package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/mercato-app/mercato/internal/app"
	"github.com/mercato-app/mercato/internal/cache"
	platformcache "github.com/mercato-app/mercato/internal/platform/cache"
	"github.com/mercato-app/mercato/internal/platform/db"
	"github.com/mercato-app/mercato/internal/products"
	"github.com/mercato-app/mercato/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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
		logger.Error("connect database", slog.Any("error", err))
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

	listingCache := cache.New(redisClient, cfg.CacheTTL, logger)
	productsRepo := products.NewRepository(pool)
	productsService := products.NewService(productsRepo, listingCache, logger)

	warmupJob := jobs.NewCatalogWarmupJob(productsService, logger)
	warmupTask, err := jobs.NewCatalogWarmupTask(jobs.CatalogWarmupPayload{Pages: 1})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskCatalogWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "*/30 * * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	// Re-warm the catalog whenever a mutation bumps the products collection.
	queue, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init queue client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := queue.Close(); err != nil {
			logger.Warn("queue close", slog.Any("error", err))
		}
	}()
	go func() {
		err := listingCache.Subscribe(ctx, func(collection string) {
			if collection != products.Collection {
				return
			}
			if _, err := queue.EnqueueCatalogWarmup(ctx, jobs.CatalogWarmupPayload{Pages: 1}); err != nil {
				logger.Warn("enqueue catalog warmup", slog.Any("error", err))
			}
		})
		if err != nil {
			logger.Warn("cache subscription ended", slog.Any("error", err))
		}
	}()

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
