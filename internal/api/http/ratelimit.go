package http

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spec-kit/etutor-gateway/internal/config"
	apperrors "github.com/spec-kit/etutor-gateway/pkg/util/errorutil"
)

// tokenBucketScript refills by whole intervals and takes one token.
// Returns {allowed, remaining, retry_after_ms}.
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
    retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('EXPIRE', key, ttl_seconds)

return { allowed, tokens, retry_after_ms }
`)

type bucketResult struct {
	allowed    bool
	remaining  int64
	retryAfter time.Duration
}

// RateLimiter is a per-client token bucket kept in Redis, with an in-process
// fallback used when Redis is not configured or fails.
type RateLimiter struct {
	cfg    config.RateLimitConfig
	redis  *redis.Client
	local  sync.Map
	logger *zap.Logger
	now    func() time.Time
}

// NewRateLimiter builds a limiter. A nil client selects the in-process buckets.
func NewRateLimiter(cfg config.RateLimitConfig, client *redis.Client, logger *zap.Logger) *RateLimiter {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 1
	}
	if cfg.RefillTokens <= 0 {
		cfg.RefillTokens = 1
	}
	if cfg.RefillInterval <= 0 {
		cfg.RefillInterval = time.Second
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Minute
	}
	if cfg.Backend != config.RateLimitRedis {
		client = nil
	}
	return &RateLimiter{cfg: cfg, redis: client, logger: logger, now: time.Now}
}

// Handler returns the fiber middleware. Disabled limiters pass everything through.
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !rl.cfg.Enabled {
			return c.Next()
		}

		key := rl.cfg.Prefix + ":" + c.IP() + ":" + c.Method() + " " + c.Route().Path
		res := rl.take(c.UserContext(), key)

		c.Set("X-RateLimit-Limit", strconv.Itoa(rl.cfg.Capacity))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(res.remaining, 10))
		if !res.allowed {
			secs := int(math.Ceil(res.retryAfter.Seconds()))
			if secs < 1 {
				secs = 1
			}
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(secs))
			return apperrors.NewDomainError("RATE_LIMITED", "rate limit exceeded", fiber.StatusTooManyRequests,
				map[string]any{"retry_after": secs})
		}
		return c.Next()
	}
}

func (rl *RateLimiter) take(ctx context.Context, key string) bucketResult {
	if rl.redis != nil {
		res, err := rl.takeRedis(ctx, key)
		if err == nil {
			return res
		}
		rl.logger.Warn("rate limit redis failure, using local bucket", zap.String("key", key), zap.Error(err))
	}
	return rl.takeLocal(key)
}

func (rl *RateLimiter) takeRedis(ctx context.Context, key string) (bucketResult, error) {
	vals, err := tokenBucketScript.Run(ctx, rl.redis, []string{key},
		rl.now().UnixMilli(),
		rl.cfg.Capacity,
		rl.cfg.RefillTokens,
		rl.cfg.RefillInterval.Milliseconds(),
		int64(rl.cfg.TTL/time.Second),
	).Int64Slice()
	if err != nil {
		return bucketResult{}, err
	}
	if len(vals) != 3 {
		return bucketResult{}, redis.Nil
	}
	return bucketResult{
		allowed:    vals[0] == 1,
		remaining:  vals[1],
		retryAfter: time.Duration(vals[2]) * time.Millisecond,
	}, nil
}

func (rl *RateLimiter) takeLocal(key string) bucketResult {
	limiter := rl.localLimiter(key)
	now := rl.now()

	reservation := limiter.ReserveN(now, 1)
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return bucketResult{allowed: false, retryAfter: delay}
	}
	remaining := int64(limiter.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	return bucketResult{allowed: true, remaining: remaining}
}

func (rl *RateLimiter) localLimiter(key string) *rate.Limiter {
	if existing, ok := rl.local.Load(key); ok {
		return existing.(*rate.Limiter)
	}
	every := rl.cfg.RefillInterval / time.Duration(rl.cfg.RefillTokens)
	limiter, _ := rl.local.LoadOrStore(key, rate.NewLimiter(rate.Every(every), rl.cfg.Capacity))
	return limiter.(*rate.Limiter)
}
