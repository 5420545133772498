package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nadi-health/core/internal/pkg/response"
)

const rateLimitWindow = time.Minute

// Counter increments a windowed counter. pkg/redis.Client satisfies it.
type Counter interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// RateLimit caps each caller to max requests per minute under scope. The
// caller is the authenticated user, falling back to the client IP. Counter
// failures let the request through.
func RateLimit(counter Counter, scope string, max int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if counter == nil || max <= 0 {
			c.Next()
			return
		}

		who := CurrentUserID(c)
		if who == "" {
			who = c.ClientIP()
		}
		window := time.Now().Truncate(rateLimitWindow).Unix()
		key := fmt.Sprintf("nadi:rate_limit:%s:%s:%d", scope, who, window)

		count, err := counter.Incr(c.Request.Context(), key, rateLimitWindow+time.Second)
		if err != nil {
			c.Next()
			return
		}

		if count > int64(max) {
			retry := time.Until(time.Unix(window, 0).Add(rateLimitWindow))
			c.Header("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
			response.TooManyRequests(c, "too many generation requests, try again shortly")
			return
		}

		c.Next()
	}
}
