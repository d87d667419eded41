package handler

import (
	"errors"
	"net/http"

	"go-coin-wallet/internal/commons/response"
	"go-coin-wallet/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// bindJSON decodes and validates the request body, writing the 400 response itself
// when either step fails.
func bindJSON(c *gin.Context, logger *logrus.Logger, validate *validator.Validate, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		logger.WithError(err).Warn("Invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  false,
			"message": "Invalid request payload",
		})
		return false
	}
	return validateRequest(c, validate, req)
}

func bindQuery(c *gin.Context, logger *logrus.Logger, validate *validator.Validate, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		logger.WithError(err).Warn("Invalid query parameters")
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  false,
			"message": "Invalid query parameters",
		})
		return false
	}
	return validateRequest(c, validate, req)
}

func validateRequest(c *gin.Context, validate *validator.Validate, req interface{}) bool {
	err := validate.Struct(req)
	if err == nil {
		return true
	}

	details := make(map[string]string)
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, fieldErr := range validationErrs {
			details[fieldErr.Field()] = getValidationErrorMessage(fieldErr)
		}
	}

	c.JSON(http.StatusBadRequest, gin.H{
		"status":  false,
		"message": "Validation failed",
		"errors":  details,
	})
	return false
}

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "max":
		return "This field exceeds maximum length of " + err.Param()
	case "min":
		return "This field must be at least " + err.Param() + " characters"
	case "gt":
		return "This field must be greater than " + err.Param()
	case "gte":
		return "This field must be at least " + err.Param()
	case "lte":
		return "This field must be at most " + err.Param()
	case "len":
		return "This field must be exactly " + err.Param() + " characters"
	case "email":
		return "This field must be a valid email"
	case "oneof":
		return "This field must be one of: " + err.Param()
	case "datetime":
		return "This field must be a date formatted as " + err.Param()
	default:
		return "This field is invalid"
	}
}

func userIDFromContext(c *gin.Context, logger *logrus.Logger) (uuid.UUID, bool) {
	userIDVal, exists := c.Get(middleware.ContextUserID)
	userID, ok := userIDVal.(uuid.UUID)
	if !exists || !ok {
		logger.Error("user_id missing from request context")
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":  false,
			"message": "Unauthorized",
		})
		return uuid.Nil, false
	}
	return userID, true
}

func roleFromContext(c *gin.Context) string {
	return c.GetString(middleware.ContextRole)
}

// idParam parses the :id path parameter.
func idParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abort(c, response.BadRequestError("invalid id"))
		return uuid.Nil, false
	}
	return id, true
}

func abort(c *gin.Context, custErr *response.CustomError) {
	c.AbortWithStatusJSON(custErr.StatusCode, custErr)
}

func respondOK(c *gin.Context, message string, payload interface{}) {
	resp := response.GeneralSuccessCustomMessageAndPayload(message, payload)
	c.JSON(resp.StatusCode, resp)
}
