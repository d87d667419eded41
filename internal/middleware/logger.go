package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func LoggerMiddleware(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		statusCode := c.Writer.Status()
		fields := logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     statusCode,
			"latency":    time.Since(start),
			"ip":         c.ClientIP(),
			"user_agent": c.Request.UserAgent(),
		}
		if userID, ok := c.Get(ContextUserID); ok {
			fields["user_id"] = userID
		}

		entry := logger.WithFields(fields)
		switch {
		case statusCode >= 500:
			entry.Error("HTTP request completed with error")
		case statusCode >= 400:
			entry.Warn("HTTP request rejected")
		default:
			entry.Info("HTTP request completed")
		}
	}
}
