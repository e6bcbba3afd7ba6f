package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rinawarp/downloads/internal/services"
	"github.com/rinawarp/downloads/pkg/models"
)

// RateLimit throttles by client IP using the Redis-backed fixed-window
// counter. If the counter store itself is down the limiter fails open:
// slightly weaker abuse protection beats refusing every legitimate
// customer.
func RateLimit(rateLimitService services.RateLimitServiceInterface, metrics *services.MetricsService, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := clientIP(c)

		allowed, info, err := rateLimitService.IsAllowed(c.Request.Context(), ip)
		if err != nil {
			logger.WithError(err).Error("Failed to check rate limit")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime, 10))

		if !allowed {
			logger.WithFields(logrus.Fields{
				"client_ip": ip,
				"limit":     info.Limit,
			}).Warn("Rate limit exceeded")

			if metrics != nil {
				metrics.RateLimitRejected()
			}

			retryAfter := int(rateLimitService.RetryAfter().Seconds())
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.JSON(http.StatusTooManyRequests, models.NewErrorResponse(models.ErrCodeRateLimited))
			c.Abort()
			return
		}

		c.Next()
	}
}

// clientIP resolves the true client address: the edge-injected header
// first, then the first hop of X-Forwarded-For, then the literal
// "unknown". Unidentifiable clients sharing one bucket is the intended
// fail-safe: over-throttling unknowns beats not throttling them.
func clientIP(c *gin.Context) string {
	if ip := c.GetHeader("CF-Connecting-IP"); ip != "" {
		return ip
	}

	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	return "unknown"
}
