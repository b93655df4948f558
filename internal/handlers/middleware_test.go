package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"agroclimate-platform/pkg/logging"
	"agroclimate-platform/pkg/metrics"
)

// Shared across the package: promauto registers on the default registry, so
// a second collector with the same namespace would panic.
var testMetrics = metrics.NewCollector("handlers_test")

func testLogger() *logging.StructuredLogger {
	logger := logging.NewStructuredLogger("test", "test", logging.ErrorLevel)
	logger.SetOutput(io.Discard)
	return logger
}

func TestRateLimiterAllowWithinLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute, nil)

	for i := 0; i < 3; i++ {
		if !rl.Allow("client-a") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("client-a") {
		t.Error("fourth request should be denied")
	}
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute, nil)

	if !rl.Allow("client-a") {
		t.Fatal("first client should be allowed")
	}
	if !rl.Allow("client-b") {
		t.Error("second client should have its own budget")
	}
	if rl.Allow("client-a") {
		t.Error("first client should be over its budget")
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute, nil)

	current := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return current }
	rl.windowAt = current

	if !rl.Allow("client-a") {
		t.Fatal("first request should be allowed")
	}
	if rl.Allow("client-a") {
		t.Fatal("second request in the same window should be denied")
	}

	current = current.Add(61 * time.Second)
	if !rl.Allow("client-a") {
		t.Error("request after the window elapsed should be allowed")
	}
}

func TestRateLimiterMiddlewareReturns429(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute, testMetrics)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/counties", nil)
	req.RemoteAddr = "10.0.0.1:54321"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected a Retry-After header on a limited response")
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if v, ok := r.Context().Value(logging.RequestIDKey).(string); ok {
			seen = v
		}
	}))

	t.Run("generates an ID", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/health", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if seen == "" {
			t.Fatal("request ID missing from context")
		}
		if rec.Header().Get("X-Request-ID") != seen {
			t.Error("response header should echo the request ID")
		}
	})

	t.Run("preserves a supplied ID", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/health", nil)
		req.Header.Set("X-Request-ID", "caller-supplied")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if seen != "caller-supplied" {
			t.Errorf("request ID = %q, want caller-supplied", seen)
		}
	})
}
