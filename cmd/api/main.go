package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/assetdeskhq/assetdesk-backend/api/routes"
	"github.com/assetdeskhq/assetdesk-backend/internal/activity"
	"github.com/assetdeskhq/assetdesk-backend/internal/assets"
	"github.com/assetdeskhq/assetdesk-backend/internal/assignments"
	"github.com/assetdeskhq/assetdesk-backend/internal/notifications"
	"github.com/assetdeskhq/assetdesk-backend/pkg/config"
	"github.com/assetdeskhq/assetdesk-backend/pkg/db"
	"github.com/assetdeskhq/assetdesk-backend/pkg/logger"
	"github.com/assetdeskhq/assetdesk-backend/pkg/metrics"
	"github.com/assetdeskhq/assetdesk-backend/pkg/migrate"
	"github.com/assetdeskhq/assetdesk-backend/pkg/redis"
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

	assetsRepo := assets.NewRepository(dbClient.DB())
	assignmentsRepo := assignments.NewRepository(dbClient.DB())
	notificationsRepo := notifications.NewRepository(dbClient.DB())
	recorder := activity.NewRecorder(dbClient.DB())
	dispatcher := notifications.NewDispatcher(notificationsRepo, logg)
	lifecycleMetrics := metrics.NewLifecycleMetrics(prometheus.DefaultRegisterer)

	assetsService, err := assets.NewService(assetsRepo, dbClient, assignments.NewOpenCounter(assignmentsRepo))
	if err != nil {
		logg.Error(context.Background(), "failed to create assets service", err)
		os.Exit(1)
	}

	assignmentsService, err := assignments.NewService(
		assignmentsRepo,
		assetsRepo,
		notificationsRepo,
		dbClient,
		recorder,
		dispatcher,
		lifecycleMetrics,
		logg,
		cfg.Terms,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create assignments service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notificationsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
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
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			assetsService,
			assignmentsService,
			notificationsService,
			recorder,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
