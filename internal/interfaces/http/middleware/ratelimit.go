package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/database/redis"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

// Limiter counts requests per key.
type Limiter interface {
	Allow(ctx context.Context, key string) (redis.RateLimit, error)
}

// RateLimitKey identifies the caller: the profile when authenticated,
// otherwise the client address.
func RateLimitKey(c *gin.Context) string {
	if actor, ok := ActorFrom(c); ok {
		return "profile:" + actor.ProfileID.String()
	}
	return "ip:" + c.ClientIP()
}

// RateLimit rejects callers over their window quota with 429.  Limiter
// failures let the request through.
func RateLimit(limiter Limiter, logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rl, err := limiter.Allow(c.Request.Context(), RateLimitKey(c))
		if err != nil {
			logger.Warn("Rate limiter unavailable, admitting request", logging.Err(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(rl.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(rl.ResetAt.Unix(), 10))

		if !rl.Allowed {
			retryAfter := int(time.Until(rl.ResetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			AbortWithError(c, errors.RateLimit("rate limit exceeded, please retry later"))
			return
		}
		c.Next()
	}
}
