package handler

import (
	"time"

	"payment-engine/internal/adapter/http/middleware"
	redisStore "payment-engine/internal/adapter/storage/redis"
	"payment-engine/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// maxBodyBytes caps every request body.
const maxBodyBytes = 64 << 10

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	Processor      ports.PaymentProcessor
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	PayLimit       middleware.RateLimitRule
	HealthCheckers []ports.HealthChecker
	OpenAPISpec    []byte
	Logger         zerolog.Logger
}

// DefaultPayLimit is applied to POST /pay when RouterDeps.PayLimit is zero.
func DefaultPayLimit() middleware.RateLimitRule {
	return middleware.RateLimitRule{Limit: 100, Window: time.Minute}
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(maxBodyBytes))

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec(deps.OpenAPISpec))
	}

	rule := deps.PayLimit
	if rule.Limit <= 0 || rule.Window <= 0 {
		rule = DefaultPayLimit()
	}
	limit := func(c *gin.Context) { c.Next() }
	if deps.RateLimitStore != nil {
		limit = middleware.RateLimiter(deps.RateLimitStore, "pay", rule, deps.Logger)
	}

	paymentHandler := NewPaymentHandler(deps.Processor, deps.Logger)
	r.POST("/pay", limit, paymentHandler.Pay)

	accountHandler := NewAccountHandler(deps.Processor)
	v1 := r.Group("/api/v1")
	{
		v1.GET("/accounts/:id/risk", accountHandler.Risk)
	}

	return r
}
