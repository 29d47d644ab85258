package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RealIP extracts the client's real IP address, preferring Cloudflare's
// CF-Connecting-IP header, then X-Forwarded-For, and falling back to RemoteAddr.
func RealIP(r *http.Request) string {
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		return ip
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// First IP in the chain is the original client
		if i := strings.IndexByte(xff, ','); i > 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type window struct {
	count   int
	resetAt time.Time
}

// cleanupThreshold caps how many client windows accumulate before expired
// ones are swept out.
const cleanupThreshold = 1024

// RateLimiter counts requests per key in fixed windows. It guards the login
// endpoints against credential stuffing; the limit and window are fixed at
// construction.
type RateLimiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	windows map[string]*window
}

func NewRateLimiter(limit int, dur time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		window:  dur,
		windows: make(map[string]*window),
	}
}

// Allow reports whether the key may make another request, and how long until
// its window resets when it may not.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w, ok := rl.windows[key]
	if !ok || now.After(w.resetAt) {
		if len(rl.windows) >= cleanupThreshold {
			rl.removeExpired(now)
		}
		rl.windows[key] = &window{count: 1, resetAt: now.Add(rl.window)}
		return true, 0
	}
	w.count++
	if w.count > rl.limit {
		return false, time.Until(w.resetAt)
	}
	return true, 0
}

// removeExpired drops windows past their reset time. The caller holds mu.
func (rl *RateLimiter) removeExpired(now time.Time) {
	for key, w := range rl.windows {
		if now.After(w.resetAt) {
			delete(rl.windows, key)
		}
	}
}

// RateLimit returns middleware that rate-limits requests by a key function,
// answering 429 with a Retry-After hint when the limit is exceeded.
func RateLimit(limiter *RateLimiter, keyFunc func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, retryIn := limiter.Allow(keyFunc(r))
			if !ok {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", strconv.Itoa(int(retryIn.Seconds())+1))
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"too many requests"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
