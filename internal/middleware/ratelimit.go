package middleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/bryanwahyu/agentcy/internal/config"
)

const msgRateLimited = "rate limit exceeded"

// bucket is one client's token bucket. Tokens are fractional so slow refill
// rates still accrue between requests.
type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// RateLimiter keeps a token bucket per client key.
type RateLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	capacity float64
	refill   float64 // tokens per second
	idleTTL  time.Duration
	now      func() time.Time
}

// NewRateLimiter builds a limiter from the rateLimit config section. The
// eviction loop runs until ctx is cancelled.
func NewRateLimiter(ctx context.Context, cfg config.RateLimit) *RateLimiter {
	rl := &RateLimiter{
		buckets:  make(map[string]*bucket),
		capacity: float64(cfg.Capacity),
		refill:   float64(cfg.RefillRate),
		idleTTL:  cfg.IdleTTL,
		now:      time.Now,
	}
	if rl.idleTTL <= 0 {
		rl.idleTTL = 10 * time.Minute
	}
	go rl.evictLoop(ctx)
	return rl
}

// Take spends one token for key. When the bucket is empty it reports how
// long until the next token is available.
func (rl *RateLimiter) Take(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{tokens: rl.capacity, lastSeen: now}
		rl.buckets[key] = b
	}
	b.tokens = math.Min(rl.capacity, b.tokens+now.Sub(b.lastSeen).Seconds()*rl.refill)
	b.lastSeen = now

	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	wait := time.Duration((1 - b.tokens) / rl.refill * float64(time.Second))
	return false, wait
}

// Evict drops buckets idle longer than the configured TTL.
func (rl *RateLimiter) Evict() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := rl.now().Add(-rl.idleTTL)
	n := 0
	for key, b := range rl.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(rl.buckets, key)
			n++
		}
	}
	return n
}

func (rl *RateLimiter) evictLoop(ctx context.Context) {
	ticker := time.NewTicker(max(rl.idleTTL/2, time.Second))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Evict()
		}
	}
}

// Middleware rejects over-limit requests with 429 and a JSON envelope.
// Preflight requests are never counted.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		key := GetClientFromContext(r.Context()) + ":" + clientIP(r)
		if ok, wait := rl.Take(key); !ok {
			secs := int(math.Ceil(wait.Seconds()))
			if secs < 1 {
				secs = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			writeError(w, http.StatusTooManyRequests, msgRateLimited)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
