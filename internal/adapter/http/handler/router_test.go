package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"payment-engine/internal/adapter/gateway"
	"payment-engine/internal/adapter/storage/memory"
	redisStore "payment-engine/internal/adapter/storage/redis"
	"payment-engine/internal/adapter/http/middleware"
	"payment-engine/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, deps RouterDeps) *gin.Engine {
	t.Helper()
	if deps.Processor == nil {
		sim := gateway.NewSimulator(gateway.SimulatorConfig{
			DeclineAbove: decimal.NewFromInt(10000),
		}, nil)
		deps.Processor = service.NewPaymentProcessor(
			service.NewFixedRateConverter(service.DefaultRates()),
			service.NewFraudDetector(memory.NewFraudWindowStore(), service.DefaultFraudPolicy(), zerolog.Nop()),
			memory.NewAccountLock(),
			sim,
			nil,
			service.ProcessorConfig{GatewayTimeout: time.Second},
			zerolog.Nop(),
		)
	}
	deps.Logger = zerolog.Nop()
	return SetupRouter(deps)
}

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func payBody(amount float64, currency, accountID string, balance float64) string {
	return fmt.Sprintf(`{"amount":%v,"currency":%q,"accountId":%q,"accountBalance":%v}`, amount, currency, accountID, balance)
}

func TestRouter_PayFlow(t *testing.T) {
	r := newEngine(t, RouterDeps{})

	w := post(r, "/pay", payBody(100, "USD", "u1", 1000))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))
	assert.Contains(t, w.Body.String(), `"newBalance":900`)

	w = post(r, "/pay", payBody(100, "USD", "u1", 50))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"message":"Insufficient funds"`)
	assert.Contains(t, w.Body.String(), `"newBalance":50`)

	w = post(r, "/pay", payBody(20000, "USD", "u2", 30000))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Amount exceeds limit")
	assert.Contains(t, w.Body.String(), `"newBalance":30000`)

	w = post(r, "/pay", payBody(10, "JPY", "u1", 100))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Unsupported currency")
}

func TestRouter_FraudAfterThreeLarge(t *testing.T) {
	r := newEngine(t, RouterDeps{})

	for i := 0; i < 3; i++ {
		w := post(r, "/pay", payBody(6000, "USD", "whale", 100000))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w := post(r, "/pay", payBody(6000, "USD", "whale", 100000))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "FRAUD_SUSPECTED")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/accounts/whale/risk", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"largeInWindow":4`)
	assert.Contains(t, w.Body.String(), `"nextLargeBlocked":true`)
}

func TestRouter_ConcurrentSameAccount(t *testing.T) {
	sim := gateway.NewSimulator(gateway.SimulatorConfig{
		DeclineAbove: decimal.NewFromInt(10000),
		MinLatency:   100 * time.Millisecond,
		MaxLatency:   100 * time.Millisecond,
	}, nil)
	proc := service.NewPaymentProcessor(
		service.NewFixedRateConverter(service.DefaultRates()),
		service.NewFraudDetector(memory.NewFraudWindowStore(), service.DefaultFraudPolicy(), zerolog.Nop()),
		memory.NewAccountLock(),
		sim,
		nil,
		service.ProcessorConfig{},
		zerolog.Nop(),
	)
	r := newEngine(t, RouterDeps{Processor: proc})

	const n = 5
	codes := make([]int, n)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			codes[i] = post(r, "/pay", payBody(10, "USD", "shared", 100)).Code
		}(i)
	}
	close(start)
	wg.Wait()

	var ok, contended int
	for _, c := range codes {
		switch c {
		case http.StatusOK:
			ok++
		case http.StatusTooManyRequests:
			contended++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, contended)
}

func TestRouter_BodyTooLarge(t *testing.T) {
	r := newEngine(t, RouterDeps{})

	big := bytes.Repeat([]byte("a"), maxBodyBytes+1)
	body := `{"amount":1,"currency":"USD","accountId":"` + string(big) + `","accountBalance":10}`

	w := post(r, "/pay", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRouter_ChunkedBodyTooLarge(t *testing.T) {
	r := newEngine(t, RouterDeps{})

	big := strings.Repeat("a", maxBodyBytes+1)
	body := `{"amount":1,"currency":"USD","accountId":"` + big + `","accountBalance":10}`

	req := httptest.NewRequest(http.MethodPost, "/pay", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = -1
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "PAYLOAD_TOO_LARGE")
}

func TestRouter_RateLimited(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	r := newEngine(t, RouterDeps{
		RateLimitStore: redisStore.NewRateLimitStore(client),
		PayLimit:       middleware.RateLimitRule{Limit: 2, Window: time.Minute},
	})

	for i := 0; i < 2; i++ {
		w := post(r, "/pay", payBody(1, "USD", fmt.Sprintf("rl-%d", i), 10))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := post(r, "/pay", payBody(1, "USD", "rl-3", 10))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "RATE_LIMITED", resp["reasonCode"])
}

func TestRouter_Swagger(t *testing.T) {
	r := newEngine(t, RouterDeps{OpenAPISpec: []byte("openapi: 3.0.3\n")})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/spec", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "openapi: 3.0.3\n", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Payment Engine")

	bare := newEngine(t, RouterDeps{})
	w = httptest.NewRecorder()
	bare.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/spec", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_Health(t *testing.T) {
	r := newEngine(t, RouterDeps{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
