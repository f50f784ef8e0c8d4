package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/maldonadorepuestos/backend/api/routes"
	adminsvc "github.com/maldonadorepuestos/backend/internal/admin"
	authsvc "github.com/maldonadorepuestos/backend/internal/auth"
	cartsvc "github.com/maldonadorepuestos/backend/internal/cart"
	catalogsvc "github.com/maldonadorepuestos/backend/internal/catalog"
	"github.com/maldonadorepuestos/backend/internal/notifications"
	ordersvc "github.com/maldonadorepuestos/backend/internal/orders"
	paymentsvc "github.com/maldonadorepuestos/backend/internal/payments"
	quotesvc "github.com/maldonadorepuestos/backend/internal/quotes"
	"github.com/maldonadorepuestos/backend/pkg/config"
	"github.com/maldonadorepuestos/backend/pkg/db"
	"github.com/maldonadorepuestos/backend/pkg/logger"
	"github.com/maldonadorepuestos/backend/pkg/mercadopago"
	"github.com/maldonadorepuestos/backend/pkg/metrics"
	"github.com/maldonadorepuestos/backend/pkg/migrate"
	"github.com/maldonadorepuestos/backend/pkg/pubsub"
	"github.com/maldonadorepuestos/backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	fatalOn(logg, "failed to load config", err)

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	fatalOn(logg, "failed to bootstrap database", err)
	defer closeQuietly(logg, "database", dbClient.Close)

	err = migrate.MaybeRunDev(ctx, cfg, logg, dbClient)
	fatalOn(logg, "failed to run dev migrations", err)

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	fatalOn(logg, "failed to bootstrap redis", err)
	defer closeQuietly(logg, "redis", redisClient.Close)

	mpClient, err := mercadopago.NewClient(ctx, cfg.MercadoPago, logg)
	fatalOn(logg, "failed to bootstrap mercadopago client", err)

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	fatalOn(logg, "failed to bootstrap pubsub", err)
	defer closeQuietly(logg, "pubsub", pubsubClient.Close)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	apiMetrics := metrics.NewAPIMetrics(registry)

	eventsPublisher, err := notifications.NewPubSubPublisher(pubsubClient.EventsPublisher())
	fatalOn(logg, "failed to wire events publisher", err)
	dispatcher, err := notifications.NewDispatcher(eventsPublisher, logg)
	fatalOn(logg, "failed to create event dispatcher", err)

	gormDB := dbClient.DB()

	authService, err := authsvc.NewService(authsvc.NewRepository(gormDB), cfg.JWT, cfg.Password, logg)
	fatalOn(logg, "failed to create auth service", err)

	catalogService, err := catalogsvc.NewService(catalogsvc.NewRepository(gormDB), dbClient, logg)
	fatalOn(logg, "failed to create catalog service", err)

	cartService, err := cartsvc.NewService(cartsvc.NewRepository(gormDB), logg, cfg.Orders)
	fatalOn(logg, "failed to create cart service", err)

	ordersRepo := ordersvc.NewRepository(gormDB)
	ordersService, err := ordersvc.NewService(ordersRepo, dbClient, dispatcher, apiMetrics, logg, cfg.Orders)
	fatalOn(logg, "failed to create orders service", err)

	webhookGuard, err := paymentsvc.NewIdempotencyGuard(redisClient, cfg.MercadoPago.WebhookTTL, "mp-webhook")
	fatalOn(logg, "failed to create webhook guard", err)
	paymentsService, err := paymentsvc.NewService(
		ordersRepo,
		mpClient,
		webhookGuard,
		dispatcher,
		apiMetrics,
		logg,
		cfg.Store.FrontendURL,
		cfg.Store.PublicAPIURL,
	)
	fatalOn(logg, "failed to create payments service", err)

	quotesService, err := quotesvc.NewService(quotesvc.NewRepository(gormDB), dbClient, dispatcher, logg)
	fatalOn(logg, "failed to create quotes service", err)

	adminService, err := adminsvc.NewService(adminsvc.NewRepository(gormDB), logg)
	fatalOn(logg, "failed to create admin service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	startCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(startCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, registry, routes.Services{
			Auth:       authService,
			Catalog:    catalogService,
			Cart:       cartService,
			Orders:     ordersService,
			Payments:   paymentsService,
			Quotes:     quotesService,
			Admin:      adminService,
			OrdersRepo: ordersRepo,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logg.Info(startCtx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(startCtx, "graceful shutdown failed", err)
			os.Exit(1)
		}
		logg.Info(startCtx, "api server stopped")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(startCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	}
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
