package middleware

import (
	"crypto/subtle"

	"go-coin-wallet/internal/commons/response"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const GatewaySecretHeader = "X-Gateway-Secret"

// GatewaySecret authenticates payment gateway callbacks by a shared secret. An
// empty secret rejects every callback.
func GatewaySecret(secret string, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(GatewaySecretHeader)
		if secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			logger.WithField("ip", c.ClientIP()).Warn("Rejected payment callback with invalid secret")
			resp := response.UnauthorizedErrorWithAdditionalInfo(nil, "invalid gateway secret")
			c.AbortWithStatusJSON(resp.StatusCode, resp)
			return
		}
		c.Next()
	}
}
