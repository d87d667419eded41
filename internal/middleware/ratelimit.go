package middleware

import (
	"strconv"

	"go-coin-wallet/internal/commons/response"
	"go-coin-wallet/pkg/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type RateLimitMiddleware struct {
	limiter *ratelimit.Limiter
	rules   ratelimit.Rules
	logger  *logrus.Logger
}

func NewRateLimitMiddleware(limiter *ratelimit.Limiter, rules ratelimit.Rules, logger *logrus.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter: limiter,
		rules:   rules,
		logger:  logger,
	}
}

// Limit counts requests under name per authenticated user, or per client IP when
// the route is public. Redis errors let the request through.
func (m *RateLimitMiddleware) Limit(name string) gin.HandlerFunc {
	rule := m.rules.For(name)

	return func(c *gin.Context) {
		identifier := "ip:" + c.ClientIP()
		if userID, ok := c.Get(ContextUserID); ok {
			if id, ok := userID.(uuid.UUID); ok {
				identifier = "uid:" + id.String()
			}
		}

		res, err := m.limiter.Allow(c.Request.Context(), name, identifier, rule)
		if err != nil {
			m.logger.WithError(err).WithField("scope", name).Warn("Rate limiter unavailable, allowing request")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))

		if !res.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())))
			m.logger.WithFields(logrus.Fields{
				"scope":      name,
				"identifier": identifier,
			}).Warn("Rate limit exceeded")
			resp := response.TooManyRequestsError("too many requests, try again in " + res.RetryAfter.String())
			c.AbortWithStatusJSON(resp.StatusCode, resp)
			return
		}

		c.Next()
	}
}
