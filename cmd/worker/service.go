package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/maldonadorepuestos/backend/internal/notifications"
	"github.com/maldonadorepuestos/backend/pkg/config"
	"github.com/maldonadorepuestos/backend/pkg/db"
	"github.com/maldonadorepuestos/backend/pkg/logger"
	"github.com/maldonadorepuestos/backend/pkg/pubsub"
	"github.com/maldonadorepuestos/backend/pkg/redis"
)

// healthInterval controls how often the running worker re-pings its
// dependencies so a dead Redis shows up in the logs before emails stall.
const healthInterval = 30 * time.Second

type ServiceParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       *db.Client
	Redis    *redis.Client
	PubSub   *pubsub.Client
	Consumer *notifications.Consumer
}

// Service supervises the notification consumer for the lifetime of the
// worker process.
type Service struct {
	cfg      *config.Config
	logg     *logger.Logger
	db       *db.Client
	redis    *redis.Client
	pubsub   *pubsub.Client
	consumer *notifications.Consumer
}

func NewService(params ServiceParams) (*Service, error) {
	for name, missing := range map[string]bool{
		"config":                params.Config == nil,
		"logger":                params.Logger == nil,
		"database client":       params.DB == nil,
		"redis client":          params.Redis == nil,
		"pubsub client":         params.PubSub == nil,
		"notification consumer": params.Consumer == nil,
	} {
		if missing {
			return nil, fmt.Errorf("%s is required", name)
		}
	}

	return &Service{
		cfg:      params.Config,
		logg:     params.Logger,
		db:       params.DB,
		redis:    params.Redis,
		pubsub:   params.PubSub,
		consumer: params.Consumer,
	}, nil
}

func (s *Service) dependencies() map[string]func(context.Context) error {
	return map[string]func(context.Context) error{
		"database": s.db.Ping,
		"redis":    s.redis.Ping,
		"pubsub":   s.pubsub.Ping,
	}
}

// ensureReadiness fails fast at startup: a worker that cannot reach its
// backends should crash-loop visibly rather than consume and nack forever.
func (s *Service) ensureReadiness(ctx context.Context) error {
	for name, ping := range s.dependencies() {
		if err := ping(ctx); err != nil {
			s.logg.Error(ctx, fmt.Sprintf("%s ping failed", name), err)
			return fmt.Errorf("%s ping failed: %w", name, err)
		}
	}
	s.logg.Info(ctx, "all worker dependencies are ready")
	return nil
}

// Run blocks until the context is canceled or the consumer stops.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.ensureReadiness(ctx); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.consumer.Run(ctx)
	}()

	health := time.NewTicker(healthInterval)
	defer health.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "worker context canceled")
			return ctx.Err()
		case err := <-errCh:
			if err != nil && !errors.Is(err, context.Canceled) {
				s.logg.Error(ctx, "consumer stopped unexpectedly", err)
				return err
			}
			return err
		case <-health.C:
			for name, ping := range s.dependencies() {
				if err := ping(ctx); err != nil {
					s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
						"dependency": name,
						"error":      err.Error(),
					}), "worker dependency unhealthy")
				}
			}
		}
	}
}
