package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"payment-engine/config"
	"payment-engine/internal/adapter/gateway"
	httpHandler "payment-engine/internal/adapter/http/handler"
	"payment-engine/internal/adapter/http/middleware"
	"payment-engine/internal/adapter/storage/memory"
	pgStorage "payment-engine/internal/adapter/storage/postgres"
	redisStorage "payment-engine/internal/adapter/storage/redis"
	"payment-engine/internal/core/ports"
	"payment-engine/internal/service"
	"payment-engine/pkg/logger"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

func main() {
	// Load configuration
	cfg, err := config.Load(os.Getenv("PE_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	gin.SetMode(cfg.Server.Mode)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("lock_backend", cfg.Lock.Backend).
		Str("fraud_backend", cfg.Fraud.Backend).
		Str("gateway_mode", cfg.Gateway.Mode).
		Msg("Starting Payment Engine")

	ctx := context.Background()
	var checkers []ports.HealthChecker

	// Initialize Redis client when a component needs it
	var rdb *goredis.Client
	if cfg.UsesRedis() {
		rdb, err = redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		checkers = append(checkers, redisStorage.NewHealthCheck(rdb))
		log.Info().Msg("Redis connected")
	}

	// Account lock
	var locker ports.AccountLocker = memory.NewAccountLock()
	if cfg.Lock.Backend == config.BackendRedis {
		locker = redisStorage.NewAccountLock(rdb, cfg.Lock.TTL)
	}

	// Fraud window
	var window ports.FraudWindowStore = memory.NewFraudWindowStore()
	if cfg.Fraud.Backend == config.BackendRedis {
		window = redisStorage.NewFraudWindowStore(rdb, cfg.Fraud.Window)
	}

	// Attempt audit trail: a log line always, a Postgres row when enabled
	var attempts ports.AttemptRepository
	if cfg.Audit.Enabled {
		pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()
		if err := pgStorage.Migrate(cfg.Database, log); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate audit schema")
		}
		checkers = append(checkers, pgStorage.NewHealthCheck(pool))
		log.Info().Msg("PostgreSQL connected")

		attempts = pgStorage.NewAttemptRepo(pool)
	}
	auditor := service.NewAttemptAuditor(attempts, log)

	// Gateway
	var gw ports.GatewayClient
	switch cfg.Gateway.Mode {
	case config.GatewayModeHTTP:
		gw = gateway.NewHTTPClient(cfg.Gateway.URL, cfg.Gateway.Timeout, nil)
	default:
		gw = gateway.NewSimulator(gateway.SimulatorConfig{
			FailureRate:  cfg.Gateway.FailureRate,
			DeclineAbove: decimal.NewFromFloat(cfg.Gateway.DeclineAbove),
			MinLatency:   cfg.Gateway.MinLatency,
			MaxLatency:   cfg.Gateway.MaxLatency,
		}, nil)
	}

	// Core services
	converter := service.NewFixedRateConverter(service.DefaultRates())
	fraud := service.NewFraudDetector(window, service.FraudPolicy{
		LargeThreshold: decimal.NewFromFloat(cfg.Fraud.LargeThreshold),
		MaxLarge:       cfg.Fraud.MaxLarge,
		Window:         cfg.Fraud.Window,
	}, log)
	processor := service.NewPaymentProcessor(
		converter,
		fraud,
		locker,
		gw,
		auditor,
		service.ProcessorConfig{GatewayTimeout: cfg.Gateway.Timeout},
		log,
	)

	// Rate limiting
	var rateLimitStore *redisStorage.RateLimitStore
	if cfg.RateLimit.Enabled {
		rateLimitStore = redisStorage.NewRateLimitStore(rdb)
	}

	// Load OpenAPI spec for Swagger UI
	specBytes, err := os.ReadFile("docs/api/openapi.yaml")
	if err == nil {
		log.Info().Msg("OpenAPI spec loaded for Swagger UI at /swagger")
	} else {
		log.Warn().Err(err).Msg("OpenAPI spec not found, Swagger UI will be unavailable")
	}

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		Processor:      processor,
		RateLimitStore: rateLimitStore,
		PayLimit:       middleware.RateLimitRule{Limit: cfg.RateLimit.Limit, Window: cfg.RateLimit.Window},
		HealthCheckers: checkers,
		OpenAPISpec:    specBytes,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Flush pending audit writes before the pool closes
	auditor.Wait()

	log.Info().Msg("Server exited")
}
