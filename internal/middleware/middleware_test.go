package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bryanwahyu/agentcy/internal/config"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(GetClientFromContext(r.Context())))
})

func TestAPIKeyAuth(t *testing.T) {
	h := APIKeyAuth(map[string]string{"ops": "secret-1"})(okHandler)

	tests := []struct {
		name   string
		method string
		auth   string
		status int
		body   string
	}{
		{"bearer", http.MethodPost, "Bearer secret-1", http.StatusOK, "ops"},
		{"raw key", http.MethodPost, "secret-1", http.StatusOK, "ops"},
		{"missing", http.MethodPost, "", http.StatusUnauthorized, ""},
		{"wrong", http.MethodPost, "Bearer nope", http.StatusUnauthorized, ""},
		{"preflight", http.MethodOptions, "", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/mission/execute", nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func newLimiter(t *testing.T, capacity, refill int) (*RateLimiter, *time.Time) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	rl := NewRateLimiter(ctx, config.RateLimit{Capacity: capacity, RefillRate: refill, IdleTTL: time.Minute})
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }
	return rl, &clock
}

func TestRateLimiterTake(t *testing.T) {
	rl, clock := newLimiter(t, 2, 1)

	ok, _ := rl.Take("a")
	assert.True(t, ok)
	ok, _ = rl.Take("a")
	assert.True(t, ok)
	ok, wait := rl.Take("a")
	assert.False(t, ok)
	assert.Equal(t, time.Second, wait)

	// other keys have their own bucket
	ok, _ = rl.Take("b")
	assert.True(t, ok)

	*clock = clock.Add(500 * time.Millisecond)
	ok, wait = rl.Take("a")
	assert.False(t, ok)
	assert.Equal(t, 500*time.Millisecond, wait)

	*clock = clock.Add(500 * time.Millisecond)
	ok, _ = rl.Take("a")
	assert.True(t, ok)
}

func TestRateLimiterEvict(t *testing.T) {
	rl, clock := newLimiter(t, 1, 1)
	rl.Take("old")
	*clock = clock.Add(2 * time.Minute)
	rl.Take("fresh")

	assert.Equal(t, 1, rl.Evict())
	assert.Len(t, rl.buckets, 1)
	assert.Contains(t, rl.buckets, "fresh")
}

func TestRateLimitMiddleware(t *testing.T) {
	rl, _ := newLimiter(t, 1, 1)
	h := rl.Middleware(okHandler)

	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/system/status", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/system/status", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))
	assert.Equal(t, "application/json", second.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, second.Body.String())

	preflight := httptest.NewRecorder()
	h.ServeHTTP(preflight, httptest.NewRequest(http.MethodOptions, "/api/system/status", nil))
	assert.Equal(t, http.StatusOK, preflight.Code)
}

func TestAPIKeyAuthRejectsWithJSON(t *testing.T) {
	h := APIKeyAuth(map[string]string{"ops": "secret-1"})(okHandler)

	cases := map[string]string{
		"":            "missing Authorization header",
		"Bearer ":     "invalid Authorization header format",
		"Bearer nope": "invalid API key",
	}
	for auth, msg := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/intel/gather", nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"error":"`+msg+`"}`, rec.Body.String())
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
}

func TestMetricsMiddleware(t *testing.T) {
	m := NewMetrics()
	h := LoggingMiddleware(zap.NewNop())(m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/fail" {
			w.WriteHeader(http.StatusInternalServerError)
		}
	})))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))
	m.ObserveGateway(nil)
	m.ObserveGateway(errors.New("down"))

	assert.EqualValues(t, 2, m.RequestsTotal.Load())
	assert.EqualValues(t, 1, m.RequestsSuccess.Load())
	assert.EqualValues(t, 1, m.RequestsFailed.Load())
	assert.EqualValues(t, 0, m.RequestsInProgress.Load())
	assert.EqualValues(t, 2, m.GatewayCalls.Load())
	assert.EqualValues(t, 1, m.GatewayFailures.Load())

	rec := httptest.NewRecorder()
	m.Handler(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	var snap map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.EqualValues(t, 2, snap["gateway_calls"])
}

type stubChecker struct{ err error }

func (s stubChecker) Check(context.Context) error { return s.err }

func TestHealthHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthHandler(map[string]HealthChecker{
		"gateway":  GatewayConfigured{Provider: "gemini", HasKey: true},
		"database": stubChecker{},
	})(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	HealthHandler(map[string]HealthChecker{
		"database": stubChecker{err: errors.New("ping timeout")},
	})(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "unhealthy", status.Status)
	assert.Equal(t, "ping timeout", status.Checks["database"].Message)
}
