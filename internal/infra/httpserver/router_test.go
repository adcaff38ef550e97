package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/agentcy/internal/application/router"
	"github.com/bryanwahyu/agentcy/internal/config"
	"github.com/bryanwahyu/agentcy/internal/domain/tactical"
	"github.com/bryanwahyu/agentcy/internal/middleware"
)

type echoExecutor struct{ calls int }

func (e *echoExecutor) Execute(ctx context.Context, c tactical.Category, content string) (tactical.Record, error) {
	e.calls++
	return tactical.MapResponse(c, content, "analysis of "+content, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
}

func newTestServer(t *testing.T, opts Options) (*httptest.Server, *echoExecutor) {
	t.Helper()
	exec := &echoExecutor{}
	core := router.New(exec, nil)
	ts := httptest.NewServer(NewRouter(Adapter(core), opts))
	t.Cleanup(ts.Close)
	return ts, exec
}

func TestAdapterWritesCoreResponse(t *testing.T) {
	exec := &echoExecutor{}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/mission/execute?trace=1", strings.NewReader(`{"mission":"Secure the north perimeter"}`))
	Adapter(router.New(exec, nil)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var out struct {
		Message string           `json:"message"`
		Mission tactical.Mission `json:"mission"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "Mission analysis completed", out.Message)
	assert.Equal(t, "analysis of Secure the north perimeter", out.Mission.AIAnalysis)
	assert.Equal(t, tactical.StatusPlanning, out.Mission.Status)
}

func TestRouterServesCoreAndHealth(t *testing.T) {
	ts, exec := newTestServer(t, Options{})

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(ts.URL+"/api/intel/gather", "application/json", strings.NewReader(`{"intel_request":"ridge"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))
	assert.Equal(t, 1, exec.calls)

	resp, err = http.Get(ts.URL + "/api/unknown")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouterCORS(t *testing.T) {
	ts, _ := newTestServer(t, Options{})

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/api/mission/execute", nil)
	req.Header.Set("Origin", "https://console.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", resp.Header.Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type, Authorization", resp.Header.Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "86400", resp.Header.Get("Access-Control-Max-Age"))

	req, _ = http.NewRequest(http.MethodGet, ts.URL+"/api/system/status", nil)
	req.Header.Set("Origin", "https://console.example")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRouterAPIKeys(t *testing.T) {
	ts, exec := newTestServer(t, Options{APIKeys: map[string]string{"console": "s3cret"}})

	resp, err := http.Post(ts.URL+"/api/mission/execute", "application/json", strings.NewReader(`{"mission":"m"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Zero(t, exec.calls)

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/mission/execute", strings.NewReader(`{"mission":"m"}`))
	req.Header.Set("Authorization", "Bearer s3cret")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req, _ = http.NewRequest(http.MethodOptions, ts.URL+"/api/mission/execute", nil)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/live")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouterRateLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	limiter := middleware.NewRateLimiter(ctx, config.RateLimit{Capacity: 1, RefillRate: 1})
	ts, _ := newTestServer(t, Options{RateLimiter: limiter})

	resp, err := http.Get(ts.URL + "/api/system/status")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/api/system/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "rate limit exceeded", out["error"])

	// health endpoints sit outside the limited group
	resp, err = http.Get(ts.URL + "/live")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
