package handler

import (
	"go-coin-wallet/internal/commons/response"
	"go-coin-wallet/internal/params"
	"go-coin-wallet/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

type WalletHandler interface {
	CreateWallet(c *gin.Context)
	GetBalance(c *gin.Context)
	GetTransactionHistory(c *gin.Context)
	Deposit(c *gin.Context)
	Withdraw(c *gin.Context)
	PurchaseCoins(c *gin.Context)
	UseCoins(c *gin.Context)
	ConvertCoins(c *gin.Context)
	ChargeAIChat(c *gin.Context)
	UseSMS(c *gin.Context)
	GetExchangeRate(c *gin.Context)
}

type WalletHandlerImpl struct {
	usecase   usecase.WalletUsecase
	settings  usecase.CoinSettingsUsecase
	logger    *logrus.Logger
	validator *validator.Validate
}

func NewWalletHandler(usecase usecase.WalletUsecase, settings usecase.CoinSettingsUsecase, logger *logrus.Logger, validator *validator.Validate) WalletHandler {
	return &WalletHandlerImpl{
		usecase:   usecase,
		settings:  settings,
		logger:    logger,
		validator: validator,
	}
}

func (h *WalletHandlerImpl) CreateWallet(c *gin.Context) {
	userID, ok := userIDFromContext(c, h.logger)
	if !ok {
		return
	}

	var req params.CreateWalletRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, h.logger, h.validator, &req) {
		return
	}

	walletResp, created, custErr := h.usecase.CreateWallet(c.Request.Context(), userID, &req)
	if custErr != nil {
		abort(c, custErr)
		return
	}

	if !created {
		respondOK(c, "Wallet already exists", walletResp)
		return
	}
	resp := response.CreatedSuccessWithPayload(walletResp)
	c.JSON(resp.StatusCode, resp)
}

func (h *WalletHandlerImpl) GetBalance(c *gin.Context) {
	userID, ok := userIDFromContext(c, h.logger)
	if !ok {
		return
	}

	balanceResp, custErr := h.usecase.GetBalance(c.Request.Context(), userID)
	if custErr != nil {
		abort(c, custErr)
		return
	}

	respondOK(c, "Balance retrieved successfully", balanceResp)
}

func (h *WalletHandlerImpl) GetTransactionHistory(c *gin.Context) {
	userID, ok := userIDFromContext(c, h.logger)
	if !ok {
		return
	}

	var query params.TransactionHistoryQuery
	if !bindQuery(c, h.logger, h.validator, &query) {
		return
	}

	historyResp, custErr := h.usecase.GetTransactionHistory(c.Request.Context(), userID, &query)
	if custErr != nil {
		abort(c, custErr)
		return
	}

	respondOK(c, "Transaction history retrieved successfully", historyResp)
}

func (h *WalletHandlerImpl) Deposit(c *gin.Context) {
	userID, ok := userIDFromContext(c, h.logger)
	if !ok {
		return
	}

	var req params.DepositRequest
	if !bindJSON(c, h.logger, h.validator, &req) {
		return
	}

	depositResp, custErr := h.usecase.Deposit(c.Request.Context(), userID, &req)
	if custErr != nil {
		abort(c, custErr)
		return
	}

	resp := response.AcceptedWithPayload("Deposit awaiting payment confirmation", depositResp)
	c.JSON(resp.StatusCode, resp)
}

func (h *WalletHandlerImpl) Withdraw(c *gin.Context) {
	userID, ok := userIDFromContext(c, h.logger)
	if !ok {
		return
	}

	var req params.WithdrawRequest
	if !bindJSON(c, h.logger, h.validator, &req) {
		return
	}

	txResp, custErr := h.usecase.Withdraw(c.Request.Context(), userID, &req)
	if custErr != nil {
		abort(c, custErr)
		return
	}

	respondOK(c, "Withdrawal completed successfully", txResp)
}

func (h *WalletHandlerImpl) PurchaseCoins(c *gin.Context) {
	userID, ok := userIDFromContext(c, h.logger)
	if !ok {
		return
	}

	var req params.PurchaseCoinsRequest
	if !bindJSON(c, h.logger, h.validator, &req) {
		return
	}

	txResp, custErr := h.usecase.PurchaseCoins(c.Request.Context(), userID, &req)
	if custErr != nil {
		abort(c, custErr)
		return
	}

	respondOK(c, "Coins purchased successfully", txResp)
}

func (h *WalletHandlerImpl) UseCoins(c *gin.Context) {
	userID, ok := userIDFromContext(c, h.logger)
	if !ok {
		return
	}

	var req params.UseCoinsRequest
	if !bindJSON(c, h.logger, h.validator, &req) {
		return
	}

	txResp, custErr := h.usecase.UseCoins(c.Request.Context(), userID, &req)
	if custErr != nil {
		abort(c, custErr)
		return
	}

	respondOK(c, "Coins used successfully", txResp)
}

func (h *WalletHandlerImpl) ConvertCoins(c *gin.Context) {
	var req params.ConvertRequest
	if !bindJSON(c, h.logger, h.validator, &req) {
		return
	}

	convertResp, custErr := h.usecase.ConvertPreview(c.Request.Context(), &req)
	if custErr != nil {
		abort(c, custErr)
		return
	}

	respondOK(c, "Conversion calculated", convertResp)
}

func (h *WalletHandlerImpl) ChargeAIChat(c *gin.Context) {
	userID, ok := userIDFromContext(c, h.logger)
	if !ok {
		return
	}

	var req params.AIChatChargeRequest
	if !bindJSON(c, h.logger, h.validator, &req) {
		return
	}

	txResp, custErr := h.usecase.ChargeAIChat(c.Request.Context(), userID, &req)
	if custErr != nil {
		abort(c, custErr)
		return
	}

	respondOK(c, "AI chat charged successfully", txResp)
}

func (h *WalletHandlerImpl) UseSMS(c *gin.Context) {
	userID, ok := userIDFromContext(c, h.logger)
	if !ok {
		return
	}

	var req params.UseSMSRequest
	if !bindJSON(c, h.logger, h.validator, &req) {
		return
	}

	txResp, custErr := h.usecase.UseSMS(c.Request.Context(), userID, &req)
	if custErr != nil {
		abort(c, custErr)
		return
	}

	respondOK(c, "SMS credits used successfully", txResp)
}

func (h *WalletHandlerImpl) GetExchangeRate(c *gin.Context) {
	rateResp, custErr := h.settings.Current(c.Request.Context())
	if custErr != nil {
		abort(c, custErr)
		return
	}

	respondOK(c, "Exchange rate retrieved successfully", rateResp)
}
