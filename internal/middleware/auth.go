package middleware

import (
	"strings"

	"go-coin-wallet/internal/commons/response"
	"go-coin-wallet/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Context keys set by JWTAuth.
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

type AuthMiddleware struct {
	logger     *logrus.Logger
	jwtManager *token.TokenManager
}

func NewAuthMiddleware(logger *logrus.Logger, jwtManager *token.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{
		logger:     logger,
		jwtManager: jwtManager,
	}
}

func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			resp := response.UnauthorizedErrorWithAdditionalInfo(nil, "Authorization header is required")
			c.AbortWithStatusJSON(resp.StatusCode, resp)
			return
		}

		bearerToken, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || bearerToken == "" {
			resp := response.UnauthorizedErrorWithAdditionalInfo(nil, "Authorization header must be a bearer token")
			c.AbortWithStatusJSON(resp.StatusCode, resp)
			return
		}

		payload, err := m.jwtManager.ValidateToken(bearerToken)
		if err != nil {
			resp := response.UnauthorizedErrorWithAdditionalInfo(err.Error())
			c.AbortWithStatusJSON(resp.StatusCode, resp)
			return
		}

		userID, err := uuid.Parse(payload.AuthId)
		if err != nil {
			resp := response.UnauthorizedErrorWithAdditionalInfo(nil, "Invalid user ID in token")
			c.AbortWithStatusJSON(resp.StatusCode, resp)
			return
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextRole, payload.Role)
		c.Next()
	}
}

// RequireRole rejects requests whose token role is not one of roles. It must run after JWTAuth.
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		m.logger.WithFields(logrus.Fields{
			"role": role,
			"path": c.FullPath(),
		}).Warn("Request rejected by role check")
		resp := response.ForbiddenError("insufficient permissions")
		c.AbortWithStatusJSON(resp.StatusCode, resp)
	}
}
