package handler

import (
	"go-coin-wallet/internal/commons/response"
	"go-coin-wallet/internal/params"
	"go-coin-wallet/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

type AuthHandler interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
}

type AuthHandlerImpl struct {
	authService usecase.AuthUsecase
	logger      *logrus.Logger
	validator   *validator.Validate
}

func NewAuthHandler(authService usecase.AuthUsecase, logger *logrus.Logger, validator *validator.Validate) AuthHandler {
	return &AuthHandlerImpl{
		authService: authService,
		logger:      logger,
		validator:   validator,
	}
}

func (h *AuthHandlerImpl) Register(c *gin.Context) {
	var req params.RegisterRequest
	if !bindJSON(c, h.logger, h.validator, &req) {
		return
	}

	authResponse, custErr := h.authService.Register(c.Request.Context(), &req)
	if custErr != nil {
		abort(c, custErr)
		return
	}

	resp := response.CreatedSuccessWithPayload(authResponse)
	c.JSON(resp.StatusCode, resp)
}

func (h *AuthHandlerImpl) Login(c *gin.Context) {
	var req params.LoginRequest
	if !bindJSON(c, h.logger, h.validator, &req) {
		return
	}

	authResponse, custErr := h.authService.Login(c.Request.Context(), &req)
	if custErr != nil {
		abort(c, custErr)
		return
	}

	respondOK(c, "Success login user", authResponse)
}
