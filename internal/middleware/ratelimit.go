package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/aparcame/parking-reservation/internal/config"
)

// tokenBucketScript refills and consumes one token atomically.
// KEYS[1] holds the bucket hash {tokens, ts}. ARGV: capacity,
// refill tokens, refill interval ms, now ms, ttl seconds.
// Returns 1 when a token was consumed, 0 when the bucket is empty.
const tokenBucketScript = `
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local refill = tonumber(ARGV[2])
local interval = tonumber(ARGV[3])
local now = tonumber(ARGV[4])
local ttl = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'ts')
local tokens = tonumber(state[1])
local ts = tonumber(state[2])
if tokens == nil then
  tokens = capacity
  ts = now
end

local elapsed = now - ts
if elapsed >= interval then
  local cycles = math.floor(elapsed / interval)
  tokens = math.min(capacity, tokens + cycles * refill)
  ts = ts + cycles * interval
end

local allowed = 0
if tokens > 0 then
  tokens = tokens - 1
  allowed = 1
end

redis.call('HMSET', key, 'tokens', tokens, 'ts', ts)
redis.call('EXPIRE', key, ttl)
return allowed
`

var bucketScript = redis.NewScript(tokenBucketScript)

// NewRateLimiter returns a middleware that enforces a per-client
// token bucket stored in Redis. The bucket key combines the client IP
// with the matched route so a noisy client cannot starve other
// endpoints. With a nil client or a disabled config the middleware is
// a no-op; if Redis fails at request time the request is allowed
// through rather than rejected.
func NewRateLimiter(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	ttlSecs := int64(cfg.TTL / time.Second)
	if ttlSecs < 1 {
		ttlSecs = 1
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			key := fmt.Sprintf("%s:%s:%s", cfg.Prefix, c.RealIP(), c.Path())

			allowed, err := bucketScript.Run(ctx, rdb, []string{key},
				cfg.Capacity,
				cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(),
				time.Now().UnixMilli(),
				ttlSecs,
			).Int()
			if err != nil {
				// Fail open; limiting is protection, not correctness.
				return next(c)
			}
			if allowed == 0 {
				return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "demasiadas solicitudes, intenta más tarde"})
			}
			return next(c)
		}
	}
}
