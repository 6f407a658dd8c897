package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/motorlot/financing/internal/adapter/http"
	"github.com/motorlot/financing/internal/adapter/http/handler"
	"github.com/motorlot/financing/internal/adapter/http/middleware"
	postgresRepo "github.com/motorlot/financing/internal/adapter/repository/postgres"
	redisRepo "github.com/motorlot/financing/internal/adapter/repository/redis"
	"github.com/motorlot/financing/internal/infrastructure/auth"
	"github.com/motorlot/financing/internal/infrastructure/config"
	"github.com/motorlot/financing/internal/infrastructure/eventpublisher"
	"github.com/motorlot/financing/internal/infrastructure/logger"
	"github.com/motorlot/financing/internal/infrastructure/metrics"
	"github.com/motorlot/financing/internal/infrastructure/postgres"
	"github.com/motorlot/financing/internal/infrastructure/redis"
	"github.com/motorlot/financing/internal/usecase"
)

const migrationsPath = "migrations"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger

	ctx := context.Background()

	// Connect to PostgreSQL
	connectCtx, connectCancel := context.WithTimeout(ctx, cfg.DatabaseTimeout)
	pool, err := postgres.NewPoolWithConfig(connectCtx, postgres.PoolConfig{
		DatabaseURL: cfg.DatabaseURL,
		MaxConns:    cfg.DatabaseMaxConns,
		MinConns:    cfg.DatabaseMinConns,
	})
	connectCancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, migrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	unitRepo := postgresRepo.NewUnitRepository(pool)
	periodRepo := postgresRepo.NewPeriodRepository(pool)
	paymentRepo := postgresRepo.NewPaymentRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()

	cache := redisRepo.NewCache(redisClient)
	unitLock := redisRepo.NewUnitLock(redisClient, cfg.UnitLockLeaseTTL, cfg.UnitLockRetryTimeout)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	appMetrics := metrics.New()

	// Initialize use cases
	unitUC := usecase.NewUnitUseCase(txManager, unitRepo, auditRepo, idGen, unitLock, cache, appMetrics)
	financingUC := usecase.NewFinancingUseCase(txManager, unitRepo, periodRepo, outboxRepo, auditRepo, idGen, unitLock, cache, appMetrics)
	paymentUC := usecase.NewPaymentUseCase(txManager, unitRepo, periodRepo, paymentRepo, outboxRepo, auditRepo, idGen, unitLock, cache, appMetrics)
	summaryUC := usecase.NewSummaryUseCase(txManager, unitRepo, periodRepo, cache, cfg.SummaryCacheTTL)
	consistencyUC := usecase.NewConsistencyUseCase(unitRepo, periodRepo, paymentRepo)

	// Initialize handlers
	unitHandler := handler.NewUnitHandler(unitUC)
	financingHandler := handler.NewFinancingHandler(financingUC, consistencyUC)
	paymentHandler := handler.NewPaymentHandler(paymentUC, summaryUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Optional JWT authentication
	var jwtManager *auth.JWTManager
	if cfg.AuthEnabled && cfg.JWTSecret != "" {
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		UnitHandler:      unitHandler,
		FinancingHandler: financingHandler,
		PaymentHandler:   paymentHandler,
		HealthHandler:    healthHandler,
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		JWTManager:       jwtManager,
		RateLimiter:      rateLimiter,
		Logger:           appLogger,
	})

	// Start outbox event publisher
	publisherCtx, stopPublisher := context.WithCancel(ctx)
	defer stopPublisher()

	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  eventpublisher.NewRedisPublisher(redisClient, ""),
	})
	go func() {
		if err := publisher.Start(publisherCtx); err != nil && publisherCtx.Err() == nil {
			log.Error().Err(err).Msg("event publisher stopped unexpectedly")
		}
	}()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	stopPublisher()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
