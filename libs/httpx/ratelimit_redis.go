package httpx

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter counts requests per client in fixed windows shared by every
// booking-service replica.
type RedisRateLimiter struct {
	rdb    redis.Scripter
	limit  int
	window time.Duration
	prefix string
	now    func() time.Time
}

// Returns {count, remaining ttl in ms}.
var windowCounter = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {n, redis.call("PTTL", KEYS[1])}
`)

func NewRedisRateLimiter(rdb redis.Scripter, limit int, window time.Duration, prefix string) *RedisRateLimiter {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "rl"
	}
	return &RedisRateLimiter{rdb: rdb, limit: limit, window: window, prefix: prefix, now: time.Now}
}

// Middleware rejects requests over the limit. When Redis is unreachable the
// request passes if failOpen is set and gets a 503 otherwise.
func (rl *RedisRateLimiter) Middleware(logger *slog.Logger, failOpen bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			count, ttl, err := rl.hit(r.Context(), clientKey(r))
			if err != nil {
				if logger != nil {
					logger.WarnContext(r.Context(), "redis rate limiter error", "err", err, "fail_open", failOpen)
				}
				if failOpen {
					next.ServeHTTP(w, r)
					return
				}
				WriteError(w, http.StatusServiceUnavailable, "rate limiter unavailable")
				return
			}
			if count > int64(rl.limit) {
				w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(ttl, rl.window)))
				WriteError(w, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// hit bumps the counter of the window that contains now.
func (rl *RedisRateLimiter) hit(ctx context.Context, client string) (int64, time.Duration, error) {
	bucket := rl.now().UnixMilli() / rl.window.Milliseconds()
	key := fmt.Sprintf("%s:%s:%d", rl.prefix, client, bucket)

	res, err := windowCounter.Run(ctx, rl.rdb, []string{key}, rl.window.Milliseconds()).Slice()
	if err != nil {
		return 0, 0, err
	}
	if len(res) != 2 {
		return 0, 0, fmt.Errorf("rate limit script returned %d values", len(res))
	}
	count, err := toInt64(res[0])
	if err != nil {
		return 0, 0, err
	}
	pttl, err := toInt64(res[1])
	if err != nil {
		return 0, 0, err
	}
	return count, time.Duration(pttl) * time.Millisecond, nil
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case string:
		return strconv.ParseInt(n, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected rate limit value %T", v)
	}
}

func retryAfterSeconds(ttl, window time.Duration) int {
	if ttl <= 0 {
		ttl = window
	}
	secs := int((ttl + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
