package middleware

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/seatbook/internal/config"
)

// tokenBucketScript refills and takes one token atomically.  It returns
// {allowed, remaining, retry_after_ms}.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local refill_tokens = tonumber(ARGV[3])
	local interval_ms = tonumber(ARGV[4])
	local ttl_seconds = tonumber(ARGV[5])

	local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
	local tokens = tonumber(state[1])
	local last_refill = tonumber(state[2])

	if tokens == nil or last_refill == nil then
	    tokens = capacity
	    last_refill = now_ms
	end

	if interval_ms > 0 and refill_tokens > 0 then
	    local elapsed = math.max(0, now_ms - last_refill)
	    local intervals = math.floor(elapsed / interval_ms)
	    if intervals > 0 then
	        tokens = math.min(capacity, tokens + (intervals * refill_tokens))
	        last_refill = last_refill + (intervals * interval_ms)
	    end
	end

	local allowed = 0
	local retry_after_ms = 0
	if tokens > 0 then
	    allowed = 1
	    tokens = tokens - 1
	else
	    local until_next = interval_ms - (now_ms - last_refill)
	    if until_next < 0 then until_next = 0 end
	    retry_after_ms = until_next
	end

	redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
	redis.call('EXPIRE', key, ttl_seconds)

	return { allowed, tokens, retry_after_ms }
`)

// NewTokenBucket limits requests per key built from cfg.KeyStrategy.
// Redis errors let the request through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passThrough
	}
	ttlSeconds := int64(cfg.TTL / time.Second)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := rateKey(cfg, c)
			vals, err := tokenBucketScript.Run(c.Request().Context(), rdb, []string{key},
				time.Now().UnixMilli(), cfg.Capacity, cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(), ttlSeconds).Result()
			if err != nil {
				slog.Warn("rate limit script failed", "component", "ratelimit", "key", key, "error", err)
				return next(c)
			}
			res, ok := parseBucket(vals)
			if !ok {
				slog.Warn("unexpected rate limit result", "component", "ratelimit", "key", key, "result", fmt.Sprintf("%#v", vals))
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(res.remaining, 10))
			if cfg.Debug {
				h.Set("X-RateLimit-Key", key)
			}
			if res.allowed {
				return next(c)
			}

			secs := int(math.Ceil(float64(res.retryMs) / 1000.0))
			if secs < 0 {
				secs = 0
			}
			h.Set("Retry-After", strconv.Itoa(secs))
			if cfg.Debug {
				slog.Info("rate limited", "component", "ratelimit", "key", key, "retry_ms", res.retryMs)
			}
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"error":       "rate limit exceeded",
				"retry_after": secs,
			})
		}
	}
}

type bucketResult struct {
	allowed   bool
	remaining int64
	retryMs   int64
}

func parseBucket(v interface{}) (bucketResult, bool) {
	arr, ok := v.([]interface{})
	if !ok || len(arr) != 3 {
		return bucketResult{}, false
	}
	return bucketResult{
		allowed:   asInt64(arr[0]) == 1,
		remaining: asInt64(arr[1]),
		retryMs:   asInt64(arr[2]),
	}, true
}

func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

// rateKey joins the request attributes selected by the key strategy:
// ip, user, route or combinations such as ip_user_route (the default).
func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	attrs := map[string][]string{
		"ip":    {"ip", ip},
		"user":  {"user", accountID(c)},
		"route": {"route", c.Request().Method + " " + c.Path()},
	}
	fields := strings.Split(strings.ToLower(cfg.KeyStrategy), "_")
	for _, f := range fields {
		if _, ok := attrs[f]; !ok {
			fields = []string{"ip", "user", "route"}
			break
		}
	}
	parts := []string{cfg.Prefix}
	for _, f := range fields {
		parts = append(parts, attrs[f]...)
	}
	return strings.Join(parts, ":")
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }
