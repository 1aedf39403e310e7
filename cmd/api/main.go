package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/doorro/gatekeeper/internal/api"
	"github.com/doorro/gatekeeper/internal/bus"
	"github.com/doorro/gatekeeper/internal/config"
	"github.com/doorro/gatekeeper/internal/database"
	"github.com/doorro/gatekeeper/internal/engine"
	"github.com/doorro/gatekeeper/internal/queue"
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
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db, cfg.Database.MigrationsPath); err != nil {
		slog.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable, pin verification will stall until it returns", "error", err)
	}
	defer rdb.Close()

	st := store.New(db)
	resolver := engine.NewDoorResolver(st, cfg.Engine.DefaultDoorID)

	consumer := bus.NewConsumer(cfg.MQTT.TopicBase, cfg.Engine.BusHandlerLimit)
	mqttClient, err := bus.Connect(cfg.MQTT, consumer.Subscribe)
	if err != nil {
		slog.Error("mqtt unavailable", "error", err)
		os.Exit(1)
	}

	queueClient := queue.NewClient(cfg.Redis)
	defer queueClient.Close()

	eng := engine.New(st, resolver, mqttClient, queueClient, cfg.MQTT.TopicBase)
	consumer.Start(eng, cfg.Engine.BusHandlerLimit)

	router := api.NewRouter(db, rdb, cfg, st, resolver)
	handler := router.Setup()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting admin API", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}

	// Stop the inbound flow before draining in-flight handlers.
	mqttClient.Disconnect()
	consumer.Stop()

	slog.Info("stopped")
}
