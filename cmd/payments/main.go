package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DanielPopoola/ficmart-payment-core/internal/application"
	"github.com/DanielPopoola/ficmart-payment-core/internal/application/services"
	"github.com/DanielPopoola/ficmart-payment-core/internal/config"
	"github.com/DanielPopoola/ficmart-payment-core/internal/infrastructure/gateway"
	"github.com/DanielPopoola/ficmart-payment-core/internal/infrastructure/idempotency"
	"github.com/DanielPopoola/ficmart-payment-core/internal/infrastructure/locking"
	"github.com/DanielPopoola/ficmart-payment-core/internal/infrastructure/metrics"
	"github.com/DanielPopoola/ficmart-payment-core/internal/infrastructure/notification"
	"github.com/DanielPopoola/ficmart-payment-core/internal/infrastructure/persistence/postgres"
	"github.com/DanielPopoola/ficmart-payment-core/internal/interfaces/rest/handlers"
	"github.com/DanielPopoola/ficmart-payment-core/internal/interfaces/rest/middleware"
	"github.com/DanielPopoola/ficmart-payment-core/internal/worker"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting payment service",
		"env", cfg.Primary.Env,
		"port", cfg.Server.Port,
		"log_level", cfg.Logger.Level,
		"idempotency_backend", cfg.Idempotency.Backend,
		"kafka_enabled", cfg.Kafka.Enabled,
	)

	ctx := context.Background()
	db, err := postgres.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	paymentRepo := postgres.NewPaymentRepository(db)
	logRepo := postgres.NewTransactionLogRepository(db)

	store, closeStore, err := newIdempotencyStore(ctx, cfg, db)
	if err != nil {
		logger.Error("failed to set up idempotency store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	httpGateway := gateway.NewHTTPGateway(cfg.Gateway)
	breakerGateway := gateway.NewBreakerGateway(httpGateway, cfg.Breaker, logger)
	paymentGateway := gateway.NewRetryGateway(breakerGateway, cfg.Retry)

	var notifier application.Notifier = notification.NewLogNotifier(logger)
	if cfg.Kafka.Enabled {
		kafkaNotifier := notification.NewKafkaNotifier(cfg.Kafka, logger)
		defer func() {
			if err := kafkaNotifier.Close(); err != nil {
				logger.Error("failed to close kafka writer", "error", err)
			}
		}()
		notifier = kafkaNotifier
	}

	processor := services.NewPaymentProcessingService(
		paymentRepo,
		logRepo,
		paymentGateway,
		store,
		locking.NewKeyedMutex(),
		services.RetryPolicy{MaxAttempts: cfg.Processing.MaxAttempts, Backoff: cfg.Processing.Backoff},
		logger,
	)
	paymentService := services.NewPaymentService(processor, notifier, logger)

	mux := http.NewServeMux()
	handlers.NewPaymentHandler(paymentService).RegisterRoutes(mux)
	handlers.RegisterHealth(mux, db)

	handler := middleware.Chain(mux,
		middleware.Recovery(logger),
		middleware.Logging(logger),
		middleware.Timeout(cfg.Server.RequestTimeout),
	)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	metricsServer := metrics.NewServer(cfg.Metrics.Addr, logger, metrics.WithReadinessCheck(db.Ping))

	reconciler := worker.NewReconciler(
		paymentRepo,
		paymentGateway,
		paymentService,
		store,
		cfg.Worker.Interval,
		cfg.Worker.BatchSize,
		cfg.Worker.StaleAfter,
		logger,
	)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	go reconciler.Start(workerCtx)

	go func() {
		if err := metricsServer.Start(); err != nil {
			logger.Error("metrics server error", "error", err)
		}
	}()

	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	cancelWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}

func newIdempotencyStore(ctx context.Context, cfg *config.Config, db *postgres.DB) (application.IdempotencyStore, func(), error) {
	switch cfg.Idempotency.Backend {
	case config.BackendMemory:
		return idempotency.NewMemoryStore(), func() {}, nil
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return idempotency.NewRedisStore(rdb, cfg.Idempotency.TTL), func() { _ = rdb.Close() }, nil
	default:
		return postgres.NewIdempotencyRepository(db), func() {}, nil
	}
}
