package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestLimiterRejectsOverBurst(t *testing.T) {
	l := New(Config{Rate: 1, Burst: 2, Period: time.Hour})
	handler := l.Middleware()(okHandler())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/x", nil))
		codes = append(codes, rec.Code)
	}

	if codes[0] != 200 || codes[1] != 200 {
		t.Errorf("first two requests should pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("third request = %d, want 429", codes[2])
	}

	stats := l.Stats()
	if stats["allowed"] != 2 || stats["rejected"] != 1 {
		t.Errorf("stats = %v", stats)
	}
}

func TestLimiterSkipsOtherPrefixes(t *testing.T) {
	l := New(Config{Rate: 1, Burst: 1, Period: time.Hour, PathPrefix: "/api/"})
	handler := l.Middleware()(okHandler())

	// Exhaust the bucket on the API prefix
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/x", nil))

	// Non-API paths are never limited
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/home", nil))
		if rec.Code != 200 {
			t.Fatalf("page request %d = %d, want 200", i, rec.Code)
		}
	}
}

func TestLimiterRejectionIsJSON(t *testing.T) {
	l := New(Config{Rate: 0, Burst: 0, Period: time.Second})
	handler := l.Middleware()(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("code = %d, want 429", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("rejection should carry Retry-After")
	}
}
