package app

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/crypto/bcrypt"
)

func TestIPRateLimiterAllow(t *testing.T) {
	l := NewIPRateLimiter(2, 0)
	if !l.Allow("k") || !l.Allow("k") {
		t.Fatalf("first two requests should pass")
	}
	if l.Allow("k") {
		t.Fatalf("third request should be blocked")
	}
	if !l.Allow("other") {
		t.Fatalf("other keys have their own bucket")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	mw := RateLimitMiddleware(NewIPRateLimiter(1, 0))
	next := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/me/scores", nil)
		w := httptest.NewRecorder()
		next.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence: %v", codes)
	}
}

func TestRateLimitMiddlewareSharesBucketAcrossPorts(t *testing.T) {
	limited := middleware.RealIP(RateLimitMiddleware(NewIPRateLimiter(2, time.Minute))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	))

	allowed := 0
	for port := 40000; port < 40010; port++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/me/scores", nil)
		req.RemoteAddr = fmt.Sprintf("10.0.0.1:%d", port)
		w := httptest.NewRecorder()
		limited.ServeHTTP(w, req)
		if w.Code == http.StatusOK {
			allowed++
		}
	}
	if allowed != 2 {
		t.Fatalf("expected 2 requests allowed for one host, got %d", allowed)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me/scores", nil)
	req.RemoteAddr = "10.0.0.2:40000"
	w := httptest.NewRecorder()
	limited.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("another host must have its own bucket, got %d", w.Code)
	}
}

func TestClientKey(t *testing.T) {
	tests := []struct {
		remote string
		want   string
	}{
		{remote: "10.0.0.1:5555", want: "10.0.0.1"},
		{remote: "[::1]:8080", want: "::1"},
		{remote: "10.0.0.1", want: "10.0.0.1"},
	}
	for _, tc := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tc.remote
		if got := clientKey(req); got != tc.want {
			t.Fatalf("clientKey(%q) = %q, want %q", tc.remote, got, tc.want)
		}
	}
}

func mustHash(t *testing.T, secret string) string {
	t.Helper()
	b, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return string(b)
}

func TestAdminGate(t *testing.T) {
	gate := NewAdminGate(mustHash(t, "s3cret"))
	next := gate.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		header     string
		query      string
		wantStatus int
	}{
		{name: "header token", header: "s3cret", wantStatus: http.StatusOK},
		{name: "query token", query: "s3cret", wantStatus: http.StatusOK},
		{name: "wrong token", header: "nope", wantStatus: http.StatusUnauthorized},
		{name: "missing token", wantStatus: http.StatusUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			target := "/api/v1/admin/students"
			if tc.query != "" {
				target += "?admin=" + tc.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tc.header != "" {
				req.Header.Set(adminTokenHeader, tc.header)
			}
			w := httptest.NewRecorder()
			next.ServeHTTP(w, req)
			if w.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, w.Code)
			}
		})
	}
}

func TestAdminGateDisabledWithoutHash(t *testing.T) {
	gate := NewAdminGate("")
	if gate.Check("anything") {
		t.Fatalf("disabled gate must refuse every token")
	}
	next := gate.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/students", nil)
	req.Header.Set(adminTokenHeader, "CHANGE_ME_ADMIN")
	w := httptest.NewRecorder()
	next.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}
