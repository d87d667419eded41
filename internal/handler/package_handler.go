package handler

import (
	"context"
	"net/http"

	"go-coin-wallet/internal/commons/response"
	"go-coin-wallet/internal/params"
	"go-coin-wallet/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type PackageHandler interface {
	ListCoinPackages(c *gin.Context)
	BuyCoinPackage(c *gin.Context)
	ListSMSPackages(c *gin.Context)
	BuySMSPackage(c *gin.Context)
	CreateCoinPackage(c *gin.Context)
	CreateSMSPackage(c *gin.Context)
	ActivateCoinPackage(c *gin.Context)
	DeactivateCoinPackage(c *gin.Context)
	ActivateSMSPackage(c *gin.Context)
	DeactivateSMSPackage(c *gin.Context)
}

type PackageHandlerImpl struct {
	usecase   usecase.PackageUsecase
	logger    *logrus.Logger
	validator *validator.Validate
}

func NewPackageHandler(usecase usecase.PackageUsecase, logger *logrus.Logger, validator *validator.Validate) PackageHandler {
	return &PackageHandlerImpl{
		usecase:   usecase,
		logger:    logger,
		validator: validator,
	}
}

func (h *PackageHandlerImpl) ListCoinPackages(c *gin.Context) {
	list, custErr := h.usecase.ListCoinPackages(c.Request.Context(), roleFromContext(c))
	if custErr != nil {
		abort(c, custErr)
		return
	}
	respondOK(c, "Coin packages retrieved successfully", list)
}

func (h *PackageHandlerImpl) BuyCoinPackage(c *gin.Context) {
	userID, ok := userIDFromContext(c, h.logger)
	if !ok {
		return
	}
	packageID, ok := idParam(c)
	if !ok {
		return
	}

	var req params.BuyCoinPackageRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, h.logger, h.validator, &req) {
		return
	}

	result, custErr := h.usecase.BuyCoinPackage(c.Request.Context(), userID, roleFromContext(c), packageID, &req)
	if custErr != nil {
		abort(c, custErr)
		return
	}

	if pending, isPending := result.(*params.PendingPaymentResponse); isPending {
		resp := response.AcceptedWithPayload("Coin package awaiting payment confirmation", pending)
		c.JSON(resp.StatusCode, resp)
		return
	}
	respondOK(c, "Coin package purchased successfully", result)
}

func (h *PackageHandlerImpl) ListSMSPackages(c *gin.Context) {
	list, custErr := h.usecase.ListSMSPackages(c.Request.Context(), roleFromContext(c))
	if custErr != nil {
		abort(c, custErr)
		return
	}
	respondOK(c, "SMS packages retrieved successfully", list)
}

func (h *PackageHandlerImpl) BuySMSPackage(c *gin.Context) {
	userID, ok := userIDFromContext(c, h.logger)
	if !ok {
		return
	}
	packageID, ok := idParam(c)
	if !ok {
		return
	}

	txResp, custErr := h.usecase.BuySMSPackage(c.Request.Context(), userID, roleFromContext(c), packageID)
	if custErr != nil {
		abort(c, custErr)
		return
	}
	respondOK(c, "SMS package purchased successfully", txResp)
}

func (h *PackageHandlerImpl) CreateCoinPackage(c *gin.Context) {
	var req params.CoinPackageRequest
	if !bindJSON(c, h.logger, h.validator, &req) {
		return
	}

	pkg, custErr := h.usecase.CreateCoinPackage(c.Request.Context(), &req)
	if custErr != nil {
		abort(c, custErr)
		return
	}
	resp := response.CreatedSuccessWithPayload(pkg)
	c.JSON(resp.StatusCode, resp)
}

func (h *PackageHandlerImpl) CreateSMSPackage(c *gin.Context) {
	var req params.SMSPackageRequest
	if !bindJSON(c, h.logger, h.validator, &req) {
		return
	}

	pkg, custErr := h.usecase.CreateSMSPackage(c.Request.Context(), &req)
	if custErr != nil {
		abort(c, custErr)
		return
	}
	resp := response.CreatedSuccessWithPayload(pkg)
	c.JSON(resp.StatusCode, resp)
}

func (h *PackageHandlerImpl) ActivateCoinPackage(c *gin.Context) {
	h.toggle(c, h.usecase.SetCoinPackageActive, true)
}

func (h *PackageHandlerImpl) DeactivateCoinPackage(c *gin.Context) {
	h.toggle(c, h.usecase.SetCoinPackageActive, false)
}

func (h *PackageHandlerImpl) ActivateSMSPackage(c *gin.Context) {
	h.toggle(c, h.usecase.SetSMSPackageActive, true)
}

func (h *PackageHandlerImpl) DeactivateSMSPackage(c *gin.Context) {
	h.toggle(c, h.usecase.SetSMSPackageActive, false)
}

type packageToggle func(ctx context.Context, id uuid.UUID, active bool) *response.CustomError

func (h *PackageHandlerImpl) toggle(c *gin.Context, set packageToggle, active bool) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if custErr := set(c.Request.Context(), id, active); custErr != nil {
		abort(c, custErr)
		return
	}
	c.JSON(http.StatusOK, response.GeneralSuccess())
}
