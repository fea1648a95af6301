package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pollster/pollster/internal/cache"
	"github.com/pollster/pollster/internal/metrics"
)

type stubLimiter struct {
	result *cache.RateLimitResult
	err    error
	gotIP  string
}

func (s *stubLimiter) CheckAuthRateLimit(_ context.Context, ip string, _, _ int) (*cache.RateLimitResult, error) {
	s.gotIP = ip
	return s.result, s.err
}

func TestRateLimitAuth(t *testing.T) {
	tests := []struct {
		name       string
		enabled    bool
		result     *cache.RateLimitResult
		err        error
		wantStatus int
	}{
		{"disabled", false, nil, nil, http.StatusOK},
		{"allowed", true, &cache.RateLimitResult{Allowed: true, Remaining: 4, ResetAt: time.Now()}, nil, http.StatusOK},
		{"limited", true, &cache.RateLimitResult{Allowed: false, RetryAfter: 2 * time.Second, ResetAt: time.Now()}, nil, http.StatusTooManyRequests},
		{"limiter error fails open", true, nil, errors.New("redis down"), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := &stubLimiter{result: tt.result, err: tt.err}
			rec := metrics.NewInMemory()

			handler := RateLimitAuth(RateLimitConfig{
				Logger:  discardLogger(),
				Limiter: limiter,
				Metrics: rec,
				Enabled: tt.enabled,
				RPM:     30,
				Burst:   5,
			})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPost, "/auth/v1/signin", nil)
			req.RemoteAddr = "203.0.113.7:51234"
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.enabled && limiter.gotIP != "203.0.113.7" {
				t.Errorf("limiter ip = %q, want 203.0.113.7", limiter.gotIP)
			}
			if tt.wantStatus == http.StatusTooManyRequests {
				if w.Header().Get("Retry-After") != "2" {
					t.Errorf("Retry-After = %q, want 2", w.Header().Get("Retry-After"))
				}
				if rec.Snapshot().AuthRateLimited != 1 {
					t.Error("expected rate limited counter to increment")
				}
			}
		})
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		xff        string
		xri        string
		remoteAddr string
		want       string
	}{
		{"forwarded chain", "198.51.100.1, 10.0.0.1", "", "10.0.0.2:80", "198.51.100.1"},
		{"real ip", "", "198.51.100.2", "10.0.0.2:80", "198.51.100.2"},
		{"remote addr with port", "", "", "192.0.2.5:4444", "192.0.2.5"},
		{"ipv6 remote addr", "", "", "[::1]:4444", "::1"},
		{"remote addr without port", "", "", "192.0.2.5", "192.0.2.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}

			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
