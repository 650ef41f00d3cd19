package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/adiprasetyo/lokalmart-backend/api/controllers"
	"github.com/adiprasetyo/lokalmart-backend/api/routes"
	"github.com/adiprasetyo/lokalmart-backend/internal/activity"
	"github.com/adiprasetyo/lokalmart-backend/internal/archive"
	"github.com/adiprasetyo/lokalmart-backend/internal/auth"
	"github.com/adiprasetyo/lokalmart-backend/internal/cart"
	"github.com/adiprasetyo/lokalmart-backend/internal/chat"
	"github.com/adiprasetyo/lokalmart-backend/internal/checkout"
	"github.com/adiprasetyo/lokalmart-backend/internal/coupons"
	"github.com/adiprasetyo/lokalmart-backend/internal/events"
	"github.com/adiprasetyo/lokalmart-backend/internal/media"
	"github.com/adiprasetyo/lokalmart-backend/internal/memberships"
	"github.com/adiprasetyo/lokalmart-backend/internal/orders"
	"github.com/adiprasetyo/lokalmart-backend/internal/points"
	"github.com/adiprasetyo/lokalmart-backend/internal/products"
	"github.com/adiprasetyo/lokalmart-backend/internal/reviews"
	"github.com/adiprasetyo/lokalmart-backend/internal/stores"
	"github.com/adiprasetyo/lokalmart-backend/internal/support"
	"github.com/adiprasetyo/lokalmart-backend/internal/users"
	"github.com/adiprasetyo/lokalmart-backend/pkg/auth/session"
	"github.com/adiprasetyo/lokalmart-backend/pkg/config"
	"github.com/adiprasetyo/lokalmart-backend/pkg/db"
	"github.com/adiprasetyo/lokalmart-backend/pkg/logger"
	"github.com/adiprasetyo/lokalmart-backend/pkg/migrate"
	"github.com/adiprasetyo/lokalmart-backend/pkg/outbox"
	"github.com/adiprasetyo/lokalmart-backend/pkg/redis"
	"github.com/adiprasetyo/lokalmart-backend/pkg/storage/gcs"
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

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap object storage", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	deps, err := buildServices(cfg, logg, dbClient, redisClient, gcsClient, sessionManager)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}
	deps.HealthProbes = map[string]controllers.Pinger{
		"database": dbClient,
		"redis":    redisClient,
		"storage":  gcsClient,
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(deps),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

// buildServices constructs the repositories and the service graph in
// dependency order. The db client doubles as the transaction runner.
func buildServices(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	gcsClient *gcs.Client,
	sessionManager *session.Manager,
) (routes.Deps, error) {
	gdb := dbClient.DB()

	activityRepo := activity.NewRepository(gdb)
	usersRepo := users.NewRepository(gdb)
	productsRepo := products.NewRepository(gdb)
	cartRepo := cart.NewRepository(gdb)
	couponsRepo := coupons.NewRepository(gdb)
	ordersRepo := orders.NewRepository(gdb)
	pointsRepo := points.NewRepository(gdb)
	membershipsRepo := memberships.NewRepository(gdb)
	eventsRepo := events.NewRepository(gdb)
	chatRepo := chat.NewRepository(gdb)
	reviewsRepo := reviews.NewRepository(gdb)
	supportRepo := support.NewRepository(gdb)
	mediaRepo := media.NewRepository(gdb)
	archiveRepo := archive.NewRepository(gdb)

	outboxSvc := outbox.NewService(outbox.NewRepository(gdb), logg)

	activitySvc, err := activity.NewService(activityRepo)
	if err != nil {
		return routes.Deps{}, err
	}
	couponsSvc, err := coupons.NewService(couponsRepo)
	if err != nil {
		return routes.Deps{}, err
	}
	pointsSvc, err := points.NewService(pointsRepo, dbClient, activitySvc)
	if err != nil {
		return routes.Deps{}, err
	}
	usersSvc, err := users.NewService(usersRepo, dbClient, activitySvc)
	if err != nil {
		return routes.Deps{}, err
	}
	storesSvc, err := stores.NewService(usersRepo, dbClient, outboxSvc, activitySvc)
	if err != nil {
		return routes.Deps{}, err
	}
	productsSvc, err := products.NewService(productsRepo, usersRepo, dbClient, activitySvc)
	if err != nil {
		return routes.Deps{}, err
	}
	cartSvc, err := cart.NewService(cartRepo, productsRepo, couponsSvc)
	if err != nil {
		return routes.Deps{}, err
	}
	reviewsSvc, err := reviews.NewService(reviewsRepo, productsRepo)
	if err != nil {
		return routes.Deps{}, err
	}
	supportSvc, err := support.NewService(supportRepo, activitySvc)
	if err != nil {
		return routes.Deps{}, err
	}
	chatSvc, err := chat.NewService(chatRepo, dbClient, outboxSvc)
	if err != nil {
		return routes.Deps{}, err
	}
	eventsSvc, err := events.NewService(eventsRepo, pointsSvc, activitySvc, dbClient)
	if err != nil {
		return routes.Deps{}, err
	}
	membershipsSvc, err := memberships.NewService(membershipsRepo, pointsSvc, activitySvc, dbClient)
	if err != nil {
		return routes.Deps{}, err
	}
	mediaSvc, err := media.NewService(mediaRepo, gcsClient, cfg.Media)
	if err != nil {
		return routes.Deps{}, err
	}
	ordersSvc, err := orders.NewService(ordersRepo, dbClient, outboxSvc, pointsSvc, storesSvc, orders.Config{
		RewardPoints:  int64(cfg.Commerce.OrderRewardPoints),
		ExpPerOrder:   cfg.Commerce.StoreExpPerOrder,
		NumberPrefix:  cfg.Commerce.OrderNumberPrefix,
		PendingMaxAge: cfg.Commerce.PendingOrderTTL,
	})
	if err != nil {
		return routes.Deps{}, err
	}
	checkoutSvc, err := checkout.NewService(cartRepo, productsRepo, couponsSvc, ordersRepo, dbClient, outboxSvc, logg, checkout.Config{
		OrderNumberPrefix: cfg.Commerce.OrderNumberPrefix,
	})
	if err != nil {
		return routes.Deps{}, err
	}
	archiveSvc, err := archive.NewService(archiveRepo, activityRepo, ordersRepo, dbClient, logg, archive.Config{
		MaxAge: cfg.Commerce.CleanupRetention,
	})
	if err != nil {
		return routes.Deps{}, err
	}
	authSvc, err := auth.NewService(auth.ServiceParams{
		Users:       usersRepo,
		Activity:    activitySvc,
		Sessions:    sessionManager,
		Limiter:     redisClient,
		JWTConfig:   cfg.JWT,
		PasswordCfg: cfg.Password,
		RateLimits:  cfg.AuthRateLimit,
	})
	if err != nil {
		return routes.Deps{}, err
	}

	return routes.Deps{
		Config:      cfg,
		Logger:      logg,
		Redis:       redisClient,
		Sessions:    sessionManager,
		Auth:        authSvc,
		Users:       usersSvc,
		Stores:      storesSvc,
		Products:    productsSvc,
		Cart:        cartSvc,
		Checkout:    checkoutSvc,
		Coupons:     couponsSvc,
		Orders:      ordersSvc,
		Points:      pointsSvc,
		Memberships: membershipsSvc,
		Events:      eventsSvc,
		Chat:        chatSvc,
		Reviews:     reviewsSvc,
		Support:     supportSvc,
		Media:       mediaSvc,
		Activity:    activitySvc,
		Archive:     archiveSvc,
	}, nil
}
