package httpserver

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/bryanwahyu/agentcy/internal/application/router"
	"github.com/bryanwahyu/agentcy/internal/middleware"
)

const maxBodyBytes = 1 << 20

// Handler is the runtime-neutral core both adapters drive.
type Handler interface {
	Handle(ctx context.Context, req router.Request) router.Response
}

// Options configure the middleware stack shared by both runtimes.
type Options struct {
	Logger         *zap.Logger
	Metrics        *middleware.Metrics
	HealthCheckers map[string]middleware.HealthChecker
	APIKeys        map[string]string
	// RateLimiter is optional; nil disables limiting.
	RateLimiter *middleware.RateLimiter
}

// Adapter is the synchronous-server runtime: one goroutine per request,
// blocked for the duration of the gateway round-trip.
func Adapter(core Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, req.Body, maxBodyBytes))
		if err != nil {
			// an unreadable body is reported by the core as invalid JSON
			body = nil
		}
		resp := core.Handle(req.Context(), router.Request{
			Method: req.Method,
			Path:   req.URL.Path,
			Body:   body,
		})
		WriteResponse(w, resp)
	})
}

// WriteResponse copies a core response onto a ResponseWriter verbatim.
func WriteResponse(w http.ResponseWriter, resp router.Response) {
	for k, vs := range resp.Header {
		w.Header().Del(k)
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(resp.Status)
	w.Write(resp.Body)
}

// NewRouter wraps app (either runtime adapter) with health, metrics and the
// request middleware chain.
func NewRouter(app http.Handler, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = middleware.NewMetrics()
	}

	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.LoggingMiddleware(logger))
	mux.Use(metrics.Middleware)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:     []string{"*"},
		AllowedMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:     []string{"Content-Type", "Authorization"},
		MaxAge:             86400,
		OptionsPassthrough: true,
	}))

	mux.Get("/health", middleware.HealthHandler(opts.HealthCheckers))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/live", middleware.LivenessHandler)
	mux.Get("/metrics", metrics.Handler)

	mux.Group(func(rt chi.Router) {
		if len(opts.APIKeys) > 0 {
			rt.Use(middleware.APIKeyAuth(opts.APIKeys))
		}
		if opts.RateLimiter != nil {
			rt.Use(opts.RateLimiter.Middleware)
		}
		rt.Handle("/*", app)
	})

	return mux
}
