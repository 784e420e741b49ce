package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytespace-io/bytespace/internal/middleware"
)

func TestRateLimiter_AllowsWithinBurst(t *testing.T) {
	rl := middleware.NewRateLimiter(1, 5)
	handler := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/spaces", http.NoBody)
		req.RemoteAddr = "10.0.0.1:12345"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, rec.Code)
		}
	}
}

func TestRateLimiter_RejectsOverBurst(t *testing.T) {
	rl := middleware.NewRateLimiter(0.001, 2)
	handler := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/spaces", http.NoBody)
		req.RemoteAddr = "10.0.0.2:12345"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/spaces", http.NoBody)
	req.RemoteAddr = "10.0.0.2:12345"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header on 429")
	}
}

func TestRateLimiter_IsolatesIPs(t *testing.T) {
	rl := middleware.NewRateLimiter(0.001, 1)
	handler := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/spaces", http.NoBody)
	req.RemoteAddr = "10.0.0.3:1"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// Same IP again: exhausted.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429 for exhausted IP", rec.Code)
	}

	// Different IP: fresh bucket.
	req2 := httptest.NewRequest(http.MethodGet, "/api/v1/spaces", http.NoBody)
	req2.RemoteAddr = "10.0.0.4:1"
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for fresh IP", rec2.Code)
	}
}

func TestRateLimiter_CleanupRemovesIdleBuckets(t *testing.T) {
	rl := middleware.NewRateLimiter(10, 10)
	handler := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/spaces", http.NoBody)
	req.RemoteAddr = "10.0.0.5:1"
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if rl.Len() != 1 {
		t.Fatalf("buckets = %d, want 1", rl.Len())
	}

	stop := rl.StartCleanup(10*time.Millisecond, time.Nanosecond)
	defer stop()

	deadline := time.Now().Add(2 * time.Second)
	for rl.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if rl.Len() != 0 {
		t.Errorf("buckets = %d after cleanup, want 0", rl.Len())
	}
}
