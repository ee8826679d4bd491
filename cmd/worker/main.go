package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"

	"github.com/marcusvale/bidforge/internal/config"
	"github.com/marcusvale/bidforge/internal/database"
	"github.com/marcusvale/bidforge/internal/prompt"
	"github.com/marcusvale/bidforge/internal/queue"
	"github.com/marcusvale/bidforge/internal/queue/workers"
	"github.com/marcusvale/bidforge/internal/tenant"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	registry := queue.NewHandlersRegistry()

	bootstrapWorker := workers.NewBootstrapWorker(
		tenant.NewService(db),
		prompt.NewPGStore(db),
		cfg.Seed.PromptsDir,
	)
	registry.Register(queue.TypeTenantBootstrap, asynq.HandlerFunc(bootstrapWorker.ProcessTask))

	slog.Info("starting worker", "concurrency", 10)
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
