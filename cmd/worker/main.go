package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/maldonadorepuestos/backend/internal/notifications"
	"github.com/maldonadorepuestos/backend/pkg/config"
	"github.com/maldonadorepuestos/backend/pkg/db"
	"github.com/maldonadorepuestos/backend/pkg/logger"
	"github.com/maldonadorepuestos/backend/pkg/metrics"
	"github.com/maldonadorepuestos/backend/pkg/pubsub"
	"github.com/maldonadorepuestos/backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	fatalOn(logg, "failed to load config", err)

	logg = logger.New(logger.Options{
		ServiceName: "worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	fatalOn(logg, "failed to bootstrap database", err)
	defer closeQuietly(logg, "database", dbClient.Close)

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	fatalOn(logg, "failed to bootstrap redis", err)
	defer closeQuietly(logg, "redis", redisClient.Close)

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	fatalOn(logg, "failed to bootstrap pubsub", err)
	defer closeQuietly(logg, "pubsub", pubsubClient.Close)

	workerMetrics := metrics.NewAPIMetrics(prometheus.NewRegistry())

	mailer, err := notifications.NewSMTPMailer(cfg.SMTP, workerMetrics, logg)
	fatalOn(logg, "failed to create mailer", err)

	consumer, err := notifications.NewConsumer(
		notifications.NewRepository(dbClient.DB()),
		pubsubClient.EventsSubscription(),
		mailer,
		redisClient,
		cfg.SMTP.AdminEmail,
		logg,
	)
	fatalOn(logg, "failed to create notification consumer", err)

	service, err := NewService(ServiceParams{
		Config:   cfg,
		Logger:   logg,
		DB:       dbClient,
		Redis:    redisClient,
		PubSub:   pubsubClient,
		Consumer: consumer,
	})
	fatalOn(logg, "failed to create worker service", err)

	logg.Info(logg.WithField(ctx, "env", cfg.App.Env), "starting worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(context.Background(), "worker stopped")
}

func fatalOn(logg *logger.Logger, msg string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), msg, err)
	os.Exit(1)
}

func closeQuietly(logg *logger.Logger, name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		ctx := logg.WithField(context.Background(), "resource", name)
		logg.Error(ctx, "error closing resource", err)
	}
}
