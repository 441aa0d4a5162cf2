package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/bazarly/bazarly-backend/api/routes"
	"github.com/bazarly/bazarly-backend/internal/agents"
	"github.com/bazarly/bazarly-backend/internal/dispatch"
	"github.com/bazarly/bazarly-backend/internal/fulfillment"
	"github.com/bazarly/bazarly-backend/internal/notifications"
	"github.com/bazarly/bazarly-backend/internal/verification"
	pkgauth "github.com/bazarly/bazarly-backend/pkg/auth"
	"github.com/bazarly/bazarly-backend/pkg/config"
	"github.com/bazarly/bazarly-backend/pkg/db"
	"github.com/bazarly/bazarly-backend/pkg/logger"
	"github.com/bazarly/bazarly-backend/pkg/metrics"
	"github.com/bazarly/bazarly-backend/pkg/migrate"
	"github.com/bazarly/bazarly-backend/pkg/payments"
	"github.com/bazarly/bazarly-backend/pkg/realtime"
	"github.com/bazarly/bazarly-backend/pkg/redis"
	"github.com/bazarly/bazarly-backend/pkg/sms"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	meter := metrics.New()

	var smsSender sms.Sender
	if cfg.Verification.Sandbox {
		smsSender = sms.NewSandboxSender(logg)
	} else {
		smsSender = sms.NewHTTPSender(cfg.SMS, logg)
	}

	agentsRepo := agents.NewRepository(dbClient.DB())
	agentsService, err := agents.NewService(agentsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create agents service", err)
		os.Exit(1)
	}

	verificationService, err := verification.NewService(
		verification.NewRepository(dbClient.DB()),
		dbClient,
		smsSender,
		cfg.Verification,
		logg,
		meter,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create verification service", err)
		os.Exit(1)
	}

	rooms := realtime.NewPublisher(redisClient, cfg.Realtime, logg)
	notificationsService, err := notifications.NewService(
		notifications.NewRepository(dbClient.DB()),
		rooms,
		logg,
		meter,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	ordersRepo := fulfillment.NewRepository(dbClient.DB())
	fulfillmentService, err := fulfillment.NewService(
		ordersRepo,
		dbClient,
		verificationService,
		agentsService,
		notificationsService,
		payments.NewHTTPClient(cfg.Payments),
		meter,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create fulfillment service", err)
		os.Exit(1)
	}

	dispatchService, err := dispatch.NewService(
		dispatch.NewRepository(dbClient.DB()),
		ordersRepo,
		agentsService,
		agentsService,
		dbClient,
		redisClient,
		notificationsService,
		cfg.Dispatch,
		meter,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create dispatch service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:        cfg,
			Logger:        logg,
			DB:            dbClient,
			Redis:         redisClient,
			Tokens:        pkgauth.NewTokenManager(cfg.JWT),
			Metrics:       meter,
			Fulfillment:   fulfillmentService,
			Dispatch:      dispatchService,
			Verification:  verificationService,
			Agents:        agentsService,
			Notifications: notificationsService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
