package handler

import (
	"net/http"
	"strconv"

	"go-coin-wallet/internal/commons/response"
	"go-coin-wallet/internal/entity"
	"go-coin-wallet/internal/params"
	"go-coin-wallet/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// AdminHandler serves the operator surface: direct ledger writes, wallet status,
// exchange rate management and reporting.
type AdminHandler interface {
	ApplyTransaction(c *gin.Context)
	ReverseTransaction(c *gin.Context)
	CancelTransaction(c *gin.Context)
	GetWallet(c *gin.Context)
	ActivateWallet(c *gin.Context)
	DeactivateWallet(c *gin.Context)
	CreateCoinSettings(c *gin.Context)
	ListCoinSettings(c *gin.Context)
	GetCoinSettings(c *gin.Context)
	SetDefaultCoinSettings(c *gin.Context)
	ActivateCoinSettings(c *gin.Context)
	DeactivateCoinSettings(c *gin.Context)
	Summary(c *gin.Context)
}

type AdminHandlerImpl struct {
	ledger    usecase.LedgerUsecase
	wallets   usecase.WalletUsecase
	settings  usecase.CoinSettingsUsecase
	reports   usecase.ReportUsecase
	logger    *logrus.Logger
	validator *validator.Validate
}

func NewAdminHandler(ledger usecase.LedgerUsecase, wallets usecase.WalletUsecase, settings usecase.CoinSettingsUsecase, reports usecase.ReportUsecase, logger *logrus.Logger, validator *validator.Validate) AdminHandler {
	return &AdminHandlerImpl{
		ledger:    ledger,
		wallets:   wallets,
		settings:  settings,
		reports:   reports,
		logger:    logger,
		validator: validator,
	}
}

func (h *AdminHandlerImpl) ApplyTransaction(c *gin.Context) {
	var req params.ApplyTransactionRequest
	if !bindJSON(c, h.logger, h.validator, &req) {
		return
	}

	txType, err := entity.ParseTransactionType(req.Type)
	if err != nil {
		abort(c, response.BadRequestError("invalid transaction type"))
		return
	}

	transaction, err := h.ledger.Apply(c.Request.Context(), usecase.LedgerEntry{
		WalletID:    req.WalletID,
		Type:        txType,
		Magnitudes:  entity.Magnitudes{Rial: req.Amount, Coin: req.CoinAmount, SMS: req.SMSAmount},
		Description: req.Description,
		ReferenceID: req.ReferenceID,
		Metadata:    req.Metadata,
	})
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"wallet_id": req.WalletID,
			"type":      txType,
		}).Warn("Admin transaction rejected")
		abort(c, response.FromDomainError(err, "failed to apply transaction"))
		return
	}

	resp := response.CreatedSuccessWithPayload(params.NewTransactionResponse(transaction))
	c.JSON(resp.StatusCode, resp)
}

func (h *AdminHandlerImpl) ReverseTransaction(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req params.ReverseTransactionRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, h.logger, h.validator, &req) {
		return
	}

	reversal, err := h.ledger.Reverse(c.Request.Context(), id, req.Description)
	if err != nil {
		abort(c, response.FromDomainError(err, "failed to reverse transaction"))
		return
	}

	resp := response.CreatedSuccessWithPayload(params.NewTransactionResponse(reversal))
	c.JSON(resp.StatusCode, resp)
}

func (h *AdminHandlerImpl) CancelTransaction(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	transaction, err := h.ledger.Cancel(c.Request.Context(), id)
	if err != nil {
		abort(c, response.FromDomainError(err, "failed to cancel transaction"))
		return
	}
	respondOK(c, "Transaction canceled", params.NewTransactionResponse(transaction))
}

func (h *AdminHandlerImpl) GetWallet(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	walletResp, custErr := h.wallets.GetWallet(c.Request.Context(), id)
	if custErr != nil {
		abort(c, custErr)
		return
	}
	respondOK(c, "Wallet retrieved successfully", walletResp)
}

func (h *AdminHandlerImpl) ActivateWallet(c *gin.Context) {
	h.setWalletActive(c, true)
}

func (h *AdminHandlerImpl) DeactivateWallet(c *gin.Context) {
	h.setWalletActive(c, false)
}

func (h *AdminHandlerImpl) setWalletActive(c *gin.Context, active bool) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	walletResp, custErr := h.wallets.SetWalletActive(c.Request.Context(), id, active)
	if custErr != nil {
		abort(c, custErr)
		return
	}
	respondOK(c, "Wallet updated", walletResp)
}

func (h *AdminHandlerImpl) CreateCoinSettings(c *gin.Context) {
	var req params.CoinSettingsRequest
	if !bindJSON(c, h.logger, h.validator, &req) {
		return
	}

	settings, custErr := h.settings.Create(c.Request.Context(), &req)
	if custErr != nil {
		abort(c, custErr)
		return
	}
	resp := response.CreatedSuccessWithPayload(settings)
	c.JSON(resp.StatusCode, resp)
}

func (h *AdminHandlerImpl) ListCoinSettings(c *gin.Context) {
	activeOnly, _ := strconv.ParseBool(c.Query("active_only"))

	list, custErr := h.settings.List(c.Request.Context(), activeOnly)
	if custErr != nil {
		abort(c, custErr)
		return
	}
	respondOK(c, "Coin settings retrieved successfully", list)
}

func (h *AdminHandlerImpl) GetCoinSettings(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	settings, custErr := h.settings.Get(c.Request.Context(), id)
	if custErr != nil {
		abort(c, custErr)
		return
	}
	respondOK(c, "Coin settings retrieved successfully", settings)
}

func (h *AdminHandlerImpl) SetDefaultCoinSettings(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	settings, custErr := h.settings.SetDefault(c.Request.Context(), id)
	if custErr != nil {
		abort(c, custErr)
		return
	}
	respondOK(c, "Default exchange rate updated", settings)
}

func (h *AdminHandlerImpl) ActivateCoinSettings(c *gin.Context) {
	h.setSettingsActive(c, true)
}

func (h *AdminHandlerImpl) DeactivateCoinSettings(c *gin.Context) {
	h.setSettingsActive(c, false)
}

func (h *AdminHandlerImpl) setSettingsActive(c *gin.Context, active bool) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	settings, custErr := h.settings.SetActive(c.Request.Context(), id, active)
	if custErr != nil {
		abort(c, custErr)
		return
	}
	respondOK(c, "Coin settings updated", settings)
}

func (h *AdminHandlerImpl) Summary(c *gin.Context) {
	var query params.SummaryQuery
	if !bindQuery(c, h.logger, h.validator, &query) {
		return
	}

	summary, custErr := h.reports.Summary(c.Request.Context(), &query)
	if custErr != nil {
		abort(c, custErr)
		return
	}
	c.JSON(http.StatusOK, response.GeneralSuccessCustomMessageAndPayload("Transaction summary", summary))
}
