package app

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"scoreboard/internal/app/apiresp"

	"golang.org/x/crypto/bcrypt"
)

const adminTokenHeader = "X-Admin-Token"

type rateBucket struct {
	Count      int
	WindowEnds time.Time
}

type IPRateLimiter struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	store  map[string]rateBucket
}

func NewIPRateLimiter(max int, window time.Duration) *IPRateLimiter {
	if max <= 0 {
		max = 120
	}
	if window <= 0 {
		window = time.Minute
	}
	return &IPRateLimiter{
		max:    max,
		window: window,
		store:  make(map[string]rateBucket),
	}
}

func (l *IPRateLimiter) Allow(key string) bool {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.store[key]
	if now.After(b.WindowEnds) {
		b = rateBucket{Count: 0, WindowEnds: now.Add(l.window)}
	}
	if b.Count >= l.max {
		l.store[key] = b
		return false
	}
	b.Count++
	l.store[key] = b
	return true
}

// RateLimitMiddleware limits requests per client address. Token guessing on
// the student and admin endpoints is what it guards against.
func RateLimitMiddleware(l *IPRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(clientKey(r)) {
				apiresp.WriteError(w, r, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientKey drops the source port so every connection from one host shares
// a bucket.
func clientKey(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

// AdminGate checks the admin token against a bcrypt hash. The token may come
// from the X-Admin-Token header or the admin query parameter used by the
// dashboard links. With no hash configured every admin request is refused.
type AdminGate struct {
	hash []byte
}

func NewAdminGate(hash string) *AdminGate {
	return &AdminGate{hash: []byte(strings.TrimSpace(hash))}
}

func (g *AdminGate) Enabled() bool {
	return len(g.hash) > 0
}

func (g *AdminGate) Check(token string) bool {
	if !g.Enabled() || token == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(g.hash, []byte(token)) == nil
}

func (g *AdminGate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.Enabled() {
			apiresp.WriteError(w, r, http.StatusForbidden, "admin access is disabled")
			return
		}
		if !g.Check(readAdminToken(r)) {
			apiresp.WriteError(w, r, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func readAdminToken(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get(adminTokenHeader)); v != "" {
		return v
	}
	return strings.TrimSpace(r.URL.Query().Get("admin"))
}
