package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/notzshop/order-relay/internal/config"
	"github.com/notzshop/order-relay/internal/notifier"
	"github.com/notzshop/order-relay/pkg/idempotency"
	"github.com/notzshop/order-relay/pkg/logging"
	"github.com/notzshop/order-relay/pkg/shutdown"
	"github.com/notzshop/order-relay/pkg/tracing"
)

func main() {
	log := logging.New(slog.LevelInfo)

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", "err", err)
		os.Exit(1)
	}

	tp, err := tracing.Init(ctx, "notifier-worker", cfg.OTLPEndpoint, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = tp.Shutdown(ctx) }()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	idem := idempotency.NewStore(rdb, 24*time.Hour)
	sink := notifier.NewLogSink(log)
	consumer := notifier.NewConsumer(log, cfg.KafkaBrokers, cfg.NotificationsTopic, cfg.ConsumerGroup, sink, idem)

	log.Info("notifier-worker consuming", "topic", cfg.NotificationsTopic, "group", cfg.ConsumerGroup)
	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("consumer stopped with error", "err", err)
		os.Exit(1)
	}
	log.Info("notifier-worker shutdown complete")
}
