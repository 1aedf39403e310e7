package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"

	"github.com/doorro/gatekeeper/internal/bus"
	"github.com/doorro/gatekeeper/internal/config"
	"github.com/doorro/gatekeeper/internal/database"
	"github.com/doorro/gatekeeper/internal/engine"
	"github.com/doorro/gatekeeper/internal/queue"
	"github.com/doorro/gatekeeper/internal/queue/workers"
	"github.com/doorro/gatekeeper/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Database.URL == "" {
		slog.Error("missing required env var DATABASE_URL")
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	mqttClient, err := bus.Connect(cfg.MQTT, nil)
	if err != nil {
		slog.Error("mqtt unavailable", "error", err)
		os.Exit(1)
	}
	defer mqttClient.Disconnect()

	st := store.New(db)
	resolver := engine.NewDoorResolver(st, cfg.Engine.DefaultDoorID)
	eng := engine.New(st, resolver, mqttClient, nil, cfg.MQTT.TopicBase)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: cfg.Engine.WorkerConcurrency,
		},
	)

	registry := queue.NewHandlersRegistry()
	registry.Register(queue.TypePinVerify, asynq.HandlerFunc(workers.NewPinWorker(eng).ProcessTask))

	slog.Info("starting pin verification worker", "concurrency", cfg.Engine.WorkerConcurrency)
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
