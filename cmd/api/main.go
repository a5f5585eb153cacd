package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/kursadbilgin/collections-engine/internal/config"
	"github.com/kursadbilgin/collections-engine/internal/gateway"
	"github.com/kursadbilgin/collections-engine/internal/handler"
	"github.com/kursadbilgin/collections-engine/internal/infra/postgresql"
	"github.com/kursadbilgin/collections-engine/internal/infra/postgresql/migrations"
	infraredis "github.com/kursadbilgin/collections-engine/internal/infra/redis"
	"github.com/kursadbilgin/collections-engine/internal/observability"
	"github.com/kursadbilgin/collections-engine/internal/queue"
	"github.com/kursadbilgin/collections-engine/internal/ratelimit"
	"github.com/kursadbilgin/collections-engine/internal/repository"
	"github.com/kursadbilgin/collections-engine/internal/service"
	"github.com/kursadbilgin/collections-engine/internal/transport"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("failed to initialize logger", zap.Error(err))
	}
	defer logger.Sync() //nolint:errcheck

	db, err := postgresql.NewPostgres(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("postgres initialization failed", zap.Error(err))
	}

	if err := migrations.Migrate(db); err != nil {
		logger.Fatal("database migrations failed", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("postgres underlying db init failed", zap.Error(err))
	}
	defer sqlDB.Close()

	rdb, err := infraredis.NewRedis(cfg.RedisURL)
	if err != nil {
		logger.Fatal("redis initialization failed", zap.Error(err))
	}
	defer rdb.Close()

	var limiter ratelimit.RateLimiter = ratelimit.Unlimited{}
	if cfg.DispatchRateLimitPerSec > 0 {
		redisLimiter, err := infraredis.NewRedisRateLimiter(rdb, cfg.DispatchRateLimitPerSec)
		if err != nil {
			logger.Fatal("rate limiter initialization failed", zap.Error(err))
		}
		limiter = redisLimiter
	}

	var publisher queue.Publisher = queue.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		rmq, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			logger.Fatal("rabbitmq initialization failed", zap.Error(err))
		}
		publisher = queue.NewRabbitMQPublisher(rmq)
	} else {
		logger.Warn("RABBITMQ_URL not set, lifecycle events are disabled")
	}
	defer publisher.Close() //nolint:errcheck

	dispatch, err := gateway.NewWebhookDispatch(cfg.DispatchWebhookURL)
	if err != nil {
		logger.Fatal("dispatch gateway initialization failed", zap.Error(err))
	}

	borrowers, err := gateway.NewHTTPBorrowerLookup(cfg.BorrowerAPIURL)
	if err != nil {
		logger.Fatal("borrower gateway initialization failed", zap.Error(err))
	}

	documents, err := gateway.NewLocalDocumentStore(cfg.DocumentStoreDir)
	if err != nil {
		logger.Fatal("document store initialization failed", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	store := repository.NewGormStore(db)
	clock := service.SystemClock()

	allocator, err := service.NewSequenceAllocator(store, clock, cfg.AllocatorMaxAttempts, metrics, logger)
	if err != nil {
		logger.Fatal("allocator initialization failed", zap.Error(err))
	}

	guard, err := service.NewDuplicateGuard(store.Notices(), cfg.SuppressionWindowDays, clock)
	if err != nil {
		logger.Fatal("duplicate guard initialization failed", zap.Error(err))
	}

	noticeService, err := service.NewNoticeService(
		store, borrowers, dispatch, documents, limiter,
		allocator, guard, publisher, metrics, clock, cfg.NoticeExpiryDays, logger,
	)
	if err != nil {
		logger.Fatal("notice service initialization failed", zap.Error(err))
	}

	caseService, err := service.NewCaseService(store, borrowers, allocator, publisher, metrics, clock, logger)
	if err != nil {
		logger.Fatal("case service initialization failed", zap.Error(err))
	}

	lawyerService, err := service.NewLawyerService(store, allocator, logger)
	if err != nil {
		logger.Fatal("lawyer service initialization failed", zap.Error(err))
	}

	scanner, err := service.NewExpiryScanner(
		store.Notices(), metrics, clock,
		time.Duration(cfg.ExpiryScanIntervalSec)*time.Second, 0, logger,
	)
	if err != nil {
		logger.Fatal("expiry scanner initialization failed", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: transport.ErrorHandler(logger),
	})
	app.Use(requestid.New())
	app.Use(metrics.HTTPMiddleware())

	handler.RegisterHealthRoutes(app, sqlDB, rdb)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	if err := handler.RegisterNoticeRoutes(app, noticeService); err != nil {
		logger.Fatal("notice route registration failed", zap.Error(err))
	}
	if err := handler.RegisterCaseRoutes(app, caseService); err != nil {
		logger.Fatal("case route registration failed", zap.Error(err))
	}
	if err := handler.RegisterLawyerRoutes(app, lawyerService); err != nil {
		logger.Fatal("lawyer route registration failed", zap.Error(err))
	}
	if err := handler.RegisterSequenceRoutes(app, allocator); err != nil {
		logger.Fatal("sequence route registration failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("collections-engine api started", zap.Int("port", cfg.APIPort))
		return app.Listen(fmt.Sprintf(":%d", cfg.APIPort))
	})

	group.Go(func() error {
		return scanner.Start(groupCtx)
	})

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := group.Wait(); err != nil {
		logger.Error("api stopped with error", zap.Error(err))
	}
}
