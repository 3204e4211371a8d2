package middleware

import (
	"math"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/formcraft/formcraft-backend/errors"
	"github.com/formcraft/formcraft-backend/internal/ratelimit"
	"github.com/formcraft/formcraft-backend/logger"
	"github.com/formcraft/formcraft-backend/services"
	"github.com/gin-gonic/gin"
)

const msgTooManyRequests = "Too many requests. Please try again later."

// SubmissionRateLimiter caps public submissions per client IP using the
// shared Redis counter. When Redis is unavailable the request is let through.
func SubmissionRateLimiter(limiter services.RateLimiterInterface, perWindow int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := getClientIP(c)
		allowed, retryAfter, err := limiter.CheckLimit(c.Request.Context(), "submit:"+ip, perWindow, window)
		if err != nil {
			logger.GetLogger().Warnw("Submission rate limit check failed, allowing request",
				"error", err, "client_ip", logger.MaskIP(ip))
			c.Next()
			return
		}
		if !allowed {
			rejectRateLimited(c, perWindow, retryAfter)
			return
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(perWindow))
		c.Next()
	}
}

// EmbedLoadRateLimiter applies the in-process token bucket to embed page
// loads and uploads, keyed by client IP.
func EmbedLoadRateLimiter(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := limiter.Allow(getClientIP(c))
		if !decision.Allowed {
			rejectRateLimited(c, decision.Limit, decision.RetryAfter)
			return
		}
		c.Next()
	}
}

func rejectRateLimited(c *gin.Context, limit int, retryAfter time.Duration) {
	secs := int(math.Ceil(retryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Header("X-RateLimit-Remaining", "0")
	c.Header("Retry-After", strconv.Itoa(secs))
	_ = c.Error(apperrors.RateLimitExceeded(msgTooManyRequests, secs).WithData("retryAfter", secs))
	c.Abort()
}

// getClientIP prefers the first X-Forwarded-For entry, then X-Real-IP, then
// the connection address.
func getClientIP(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if realIP := strings.TrimSpace(c.GetHeader("X-Real-IP")); realIP != "" {
		return realIP
	}
	return c.ClientIP()
}
