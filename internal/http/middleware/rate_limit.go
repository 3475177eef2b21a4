package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/snapurl/snapurl/internal/app/cache"
	infraprom "github.com/snapurl/snapurl/internal/infra/prometheus"
	"go.uber.org/zap"
)

// RateLimitConfig holds fixed-window rate limiting configuration.
type RateLimitConfig struct {
	MaxRequests int
	Window      time.Duration
}

// DefaultRateLimitConfig returns the default limits for the hot endpoints.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxRequests: 10,
		Window:      time.Minute,
	}
}

// RateLimit creates a fixed-window limiter keyed by client IP, backed by
// the cache. The first request of a window arms the counter's expiry;
// the window then resets implicitly when the key expires. A burst at a
// window boundary may admit up to twice the limit; that is the accepted
// fixed-window tradeoff.
func RateLimit(c cache.Cache, config RateLimitConfig, logger *zap.Logger) fiber.Handler {
	if config.MaxRequests <= 0 {
		config.MaxRequests = 10
	}
	if config.Window <= 0 {
		config.Window = time.Minute
	}

	return func(ctx *fiber.Ctx) error {
		key := cache.RatePrefix + ctx.IP()

		count, err := c.Incr(ctx.Context(), key)
		if err != nil {
			logger.Error("rate limit cache error", zap.Error(err))
			// Fail open: admit the request if the cache is unavailable.
			return ctx.Next()
		}

		// Only the first request in a window arms the reset.
		if count == 1 {
			if err := c.Expire(ctx.Context(), key, config.Window); err != nil {
				logger.Warn("failed to arm rate limit window", zap.Error(err))
			}
		}

		remaining := config.MaxRequests - int(count)
		ctx.Set("X-RateLimit-Limit", strconv.Itoa(config.MaxRequests))
		ctx.Set("X-RateLimit-Remaining", strconv.Itoa(max(0, remaining)))
		ctx.Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(config.Window).Unix(), 10))

		if count > int64(config.MaxRequests) {
			infraprom.RequestsThrottled.Inc()
			return ctx.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests",
			})
		}

		return ctx.Next()
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
