package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"agroclimate-platform/pkg/logging"
	"agroclimate-platform/pkg/metrics"
)

// RequestIDMiddleware assigns every request a UUID and threads it through the
// context so all log lines for one request correlate.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), logging.RequestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RateLimiter is a fixed-window request limiter keyed by client address. The
// window resets wholesale rather than sliding, so bursts straddling a window
// boundary can briefly see up to twice the limit.
type RateLimiter struct {
	mu       sync.Mutex
	counts   map[string]int
	limit    int
	window   time.Duration
	windowAt time.Time
	metrics  *metrics.Collector
	now      func() time.Time
}

// NewRateLimiter creates a fixed-window limiter.
func NewRateLimiter(limit int, window time.Duration, metricsCollector *metrics.Collector) *RateLimiter {
	return &RateLimiter{
		counts:   make(map[string]int),
		limit:    limit,
		window:   window,
		windowAt: time.Now().UTC(),
		metrics:  metricsCollector,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Allow reports whether a request from the given client fits in the current
// window, counting it if so.
func (rl *RateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.windowAt) >= rl.window {
		rl.counts = make(map[string]int)
		rl.windowAt = now
	}

	if rl.counts[client] >= rl.limit {
		return false
	}
	rl.counts[client]++
	return true
}

// Middleware applies the limiter to an HTTP handler chain.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(r.RemoteAddr) {
			if rl.metrics != nil {
				rl.metrics.RateLimitedTotal.Inc()
			}
			w.Header().Set("Retry-After", rl.window.String())
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
