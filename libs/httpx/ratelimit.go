package httpx

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter is a per-client token bucket kept in process memory. It suits a
// single instance; RedisRateLimiter covers several instances behind a balancer.
type RateLimiter struct {
	limit  rate.Limit
	burst  int
	idle   time.Duration
	now    func() time.Time
	mu     sync.Mutex
	byKey  map[string]*visitor
	sweeps int
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// sweepEvery is the number of allow calls between idle visitor evictions.
const sweepEvery = 256

// NewRateLimiter allows limit requests per window for each client, with the
// whole allowance usable as a burst.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		limit: rate.Every(window / time.Duration(limit)),
		burst: limit,
		idle:  2 * window,
		now:   time.Now,
		byKey: map[string]*visitor{},
	}
}

func (rl *RateLimiter) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.allow(clientKey(r)) {
				WriteError(w, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweeps++
	if rl.sweeps >= sweepEvery {
		rl.sweeps = 0
		for k, v := range rl.byKey {
			if now.Sub(v.lastSeen) > rl.idle {
				delete(rl.byKey, k)
			}
		}
	}

	v := rl.byKey[key]
	if v == nil {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.byKey[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

func clientKey(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		parts := strings.Split(ip, ",")
		if first := strings.TrimSpace(parts[0]); first != "" {
			return first
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}
