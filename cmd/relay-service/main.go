package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/notzshop/order-relay/internal/auth"
	"github.com/notzshop/order-relay/internal/config"
	"github.com/notzshop/order-relay/internal/fulfillment"
	"github.com/notzshop/order-relay/internal/order/application"
	orderhttp "github.com/notzshop/order-relay/internal/order/infrastructure/http"
	orderkafka "github.com/notzshop/order-relay/internal/order/infrastructure/kafka"
	orderpg "github.com/notzshop/order-relay/internal/order/infrastructure/postgres"
	"github.com/notzshop/order-relay/internal/pricing"
	"github.com/notzshop/order-relay/pkg/logging"
	"github.com/notzshop/order-relay/pkg/outbox"
	"github.com/notzshop/order-relay/pkg/shutdown"
	"github.com/notzshop/order-relay/pkg/tracing"
)

func main() {
	log := logging.New(logLevel())

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", "err", err)
		os.Exit(1)
	}

	tp, err := tracing.Init(ctx, "relay-service", cfg.OTLPEndpoint, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = tp.Shutdown(ctx) }()

	// Schema migrations
	m, err := migrate.New(cfg.MigrationsPath, cfg.PGURL)
	if err != nil {
		log.Error("migrate init failed", "err", err)
		os.Exit(1)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Error("migrate up failed", "err", err)
		os.Exit(1)
	}

	// Postgres
	pool, err := pgxpool.New(ctx, cfg.PGURL)
	if err != nil {
		log.Error("pg connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Redis-backed admin sessions
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	gate := auth.NewGate(cfg.AdminCredentials, auth.NewRedisStore(rdb))

	// Notification outbox -> Kafka
	writer := orderkafka.NewWriter(cfg.KafkaBrokers)
	defer writer.Close()

	repo := orderpg.NewRepository(log, pool)
	store := orderpg.NewOutboxStore(log, pool)
	dispatch := outbox.NewDispatcher(log, writer, cfg.NotificationsTopic)
	relay := outbox.NewRelay(log, store, dispatch, "relay-service-"+uuid.NewString()[:8])

	// Fulfillment provider
	provider := fulfillment.NewClient(log, fulfillment.Config{
		BaseURL:   cfg.FulfillmentBaseURL,
		APIKey:    cfg.FulfillmentAPIKey,
		SecretKey: cfg.FulfillmentSecret,
	})

	prices := pricing.NewStore(pricing.NewResolver(pricing.DefaultTable()))
	svc := application.NewService(log, repo, provider)
	handler := orderhttp.NewHandler(log, svc, gate, provider, prices)

	r := chi.NewRouter()
	r.Mount("/", handler.Routes())
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := relay.Run(ctx); err != nil {
			log.Error("relay stopped with error", "err", err)
		}
	}()

	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	log.Info("relay-service shutdown complete")
}

func logLevel() slog.Level {
	if os.Getenv("LOG_DEBUG") != "" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
