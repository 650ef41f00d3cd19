package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/adiprasetyo/lokalmart-backend/internal/activity"
	"github.com/adiprasetyo/lokalmart-backend/internal/archive"
	"github.com/adiprasetyo/lokalmart-backend/internal/cron"
	"github.com/adiprasetyo/lokalmart-backend/internal/memberships"
	"github.com/adiprasetyo/lokalmart-backend/internal/orders"
	"github.com/adiprasetyo/lokalmart-backend/internal/points"
	"github.com/adiprasetyo/lokalmart-backend/internal/stores"
	"github.com/adiprasetyo/lokalmart-backend/internal/users"
	"github.com/adiprasetyo/lokalmart-backend/pkg/config"
	"github.com/adiprasetyo/lokalmart-backend/pkg/db"
	"github.com/adiprasetyo/lokalmart-backend/pkg/logger"
	"github.com/adiprasetyo/lokalmart-backend/pkg/metrics"
	"github.com/adiprasetyo/lokalmart-backend/pkg/migrate"
	"github.com/adiprasetyo/lokalmart-backend/pkg/outbox"
	"github.com/adiprasetyo/lokalmart-backend/pkg/redis"
)

const lockKeyFormat = "lm:cron-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	registry, err := buildRegistry(cfg, logg, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to build cron jobs", err)
		os.Exit(1)
	}

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

// buildRegistry wires the periodic sweeps: stale pending orders, aged row
// archival, lapsed memberships, and published outbox row retention.
func buildRegistry(cfg *config.Config, logg *logger.Logger, dbClient *db.Client) (*cron.Registry, error) {
	gdb := dbClient.DB()

	activityRepo := activity.NewRepository(gdb)
	usersRepo := users.NewRepository(gdb)
	ordersRepo := orders.NewRepository(gdb)
	pointsRepo := points.NewRepository(gdb)
	membershipsRepo := memberships.NewRepository(gdb)
	archiveRepo := archive.NewRepository(gdb)
	outboxRepo := outbox.NewRepository(gdb)

	outboxSvc := outbox.NewService(outboxRepo, logg)

	activitySvc, err := activity.NewService(activityRepo)
	if err != nil {
		return nil, err
	}
	pointsSvc, err := points.NewService(pointsRepo, dbClient, activitySvc)
	if err != nil {
		return nil, err
	}
	storesSvc, err := stores.NewService(usersRepo, dbClient, outboxSvc, activitySvc)
	if err != nil {
		return nil, err
	}
	ordersSvc, err := orders.NewService(ordersRepo, dbClient, outboxSvc, pointsSvc, storesSvc, orders.Config{
		RewardPoints:  int64(cfg.Commerce.OrderRewardPoints),
		ExpPerOrder:   cfg.Commerce.StoreExpPerOrder,
		NumberPrefix:  cfg.Commerce.OrderNumberPrefix,
		PendingMaxAge: cfg.Commerce.PendingOrderTTL,
	})
	if err != nil {
		return nil, err
	}
	membershipsSvc, err := memberships.NewService(membershipsRepo, pointsSvc, activitySvc, dbClient)
	if err != nil {
		return nil, err
	}
	archiveSvc, err := archive.NewService(archiveRepo, activityRepo, ordersRepo, dbClient, logg, archive.Config{
		MaxAge: cfg.Commerce.CleanupRetention,
	})
	if err != nil {
		return nil, err
	}

	pendingJob, err := cron.NewPendingOrderJob(cron.PendingOrderJobParams{
		Logger: logg,
		Orders: ordersSvc,
		TTL:    cfg.Commerce.PendingOrderTTL,
	})
	if err != nil {
		return nil, err
	}
	cleanupJob, err := cron.NewCleanupJob(cron.CleanupJobParams{
		Logger:  logg,
		Archive: archiveSvc,
	})
	if err != nil {
		return nil, err
	}
	reconcileJob, err := cron.NewMembershipReconcileJob(cron.MembershipReconcileJobParams{
		Logger:      logg,
		Memberships: membershipsSvc,
	})
	if err != nil {
		return nil, err
	}
	retentionJob, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: outboxRepo,
	})
	if err != nil {
		return nil, err
	}

	return cron.NewRegistry(pendingJob, cleanupJob, reconcileJob, retentionJob), nil
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
