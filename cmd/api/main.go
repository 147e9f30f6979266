package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud-kitchen-backend/configs"
	"cloud-kitchen-backend/internal/handlers"
	"cloud-kitchen-backend/internal/middleware"
	"cloud-kitchen-backend/internal/repositories"
	"cloud-kitchen-backend/internal/services"
	"cloud-kitchen-backend/pkg/auth"
	"cloud-kitchen-backend/pkg/cache"
	"cloud-kitchen-backend/pkg/database"
	"cloud-kitchen-backend/pkg/logger"
	"cloud-kitchen-backend/pkg/messaging"
	"cloud-kitchen-backend/pkg/orderlog"
	"cloud-kitchen-backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func main() {
	cfg, err := configs.LoadConfig()
	if err != nil {
		bootLog := logger.New(logger.Options{ServiceName: "cloud-kitchen-api"})
		bootLog.Fatal().Err(err).Msg("loading configuration")
	}

	log := logger.New(logger.Options{
		ServiceName: cfg.Tracing.ServiceName,
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("api stopped")
	}
}

func run(cfg *configs.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gin.SetMode(cfg.Server.Mode)

	if cfg.Tracing.Enabled {
		shutdownTracing, err := tracing.Init(ctx, cfg.Tracing.ServiceName, os.Stderr)
		if err != nil {
			return err
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(flushCtx); err != nil {
				log.Warn().Err(err).Msg("flushing traces")
			}
		}()
	}

	db, err := database.NewDatabase(ctx, cfg.Database.PostgresURL, cfg.Database.MongoURL, cfg.Database.MongoDBName, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repositories.AutoMigrate(db.Postgres); err != nil {
		return err
	}

	redisCache, err := cache.NewRedisCache(ctx, cfg.Redis.URL, cfg.Redis.Password, cfg.Redis.DB, "cloud-kitchen")
	if err != nil {
		return err
	}
	defer redisCache.Close()

	kafkaProducer := messaging.NewKafkaProducer(cfg.Kafka.Brokers)
	defer kafkaProducer.Close()

	orderLog, err := orderlog.Open(cfg.Store.OrderLogPath)
	if err != nil {
		return err
	}
	defer orderLog.Close()

	sessionManager := auth.NewSessionManager(cfg.JWT.SecretKey, cfg.JWT.ExpiryHours)
	adminAuth := auth.NewAdminAuthenticator(cfg.Admin.Username, cfg.Admin.PasswordHash)
	if !adminAuth.Enabled() {
		log.Warn().Msg("ADMIN_PASSWORD_HASH not set, admin endpoints will reject every request")
	}

	// Initialize repositories
	cartRepo := repositories.NewCartRepository(db.Postgres)
	orderRepo := repositories.NewOrderRepository(db.Postgres)
	menuRepo := repositories.NewMenuRepository(db.MongoDB)

	// Initialize services
	menuService := services.NewMenuService(menuRepo, redisCache, cfg.Redis.MenuTTL, log)
	if cfg.Store.MenuFile != "" {
		if _, err := menuService.SeedFromFile(ctx, cfg.Store.MenuFile); err != nil {
			return err
		}
	}

	cartService := services.NewCartService(menuService, cartRepo, redisCache, cfg.Redis.CartTTL, log)
	checkoutService := services.NewCheckoutService(cartService, orderRepo, orderLog, kafkaProducer, services.StoreSettings{
		RestaurantName: cfg.Store.RestaurantName,
		WhatsAppNumber: cfg.Store.WhatsAppNumber,
		UPIID:          cfg.Store.UPIID,
		DeliveryCharge: cfg.Store.DeliveryCharge,
		OrderTopic:     cfg.Kafka.OrderTopic,
	}, log)
	orderService := services.NewOrderService(orderRepo)

	sweeper := services.NewSessionSweeper(cartService, cfg.Server.SweepInterval, cfg.Server.IdleSessionTTL, log)
	sweeper.Start()
	defer sweeper.Stop()

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(sessionManager, adminAuth)

	router := gin.New()
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.CORSMiddleware(cfg.Server.CORSOrigins))
	if cfg.Tracing.Enabled {
		router.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}

	api := router.Group("/api/v1")

	handlers.NewHealthHandler(cfg.Tracing.ServiceName, map[string]handlers.HealthCheck{
		"redis": redisCache.Ping,
		"postgres": func(ctx context.Context) error {
			sqlDB, err := db.Postgres.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		"mongo": func(ctx context.Context) error {
			return db.MongoDB.Client().Ping(ctx, nil)
		},
	}).RegisterRoutes(api)
	handlers.NewSessionHandler(sessionManager, cartService, log).RegisterRoutes(api, authMiddleware)
	handlers.NewMenuHandler(menuService, log).RegisterRoutes(api)
	handlers.NewCartHandler(cartService, log).RegisterRoutes(api, authMiddleware)
	handlers.NewCheckoutHandler(checkoutService, log).RegisterRoutes(api, authMiddleware)
	handlers.NewAdminHandler(orderService, log).RegisterRoutes(api, authMiddleware)

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
