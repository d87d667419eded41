package handler

import (
	"go-coin-wallet/internal/commons/response"
	"go-coin-wallet/internal/entity"
	"go-coin-wallet/internal/params"
	"go-coin-wallet/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// PaymentHandler receives outcomes for pending transactions from the payment gateway.
type PaymentHandler interface {
	Callback(c *gin.Context)
}

type PaymentHandlerImpl struct {
	ledger    usecase.LedgerUsecase
	logger    *logrus.Logger
	validator *validator.Validate
}

func NewPaymentHandler(ledger usecase.LedgerUsecase, logger *logrus.Logger, validator *validator.Validate) PaymentHandler {
	return &PaymentHandlerImpl{
		ledger:    ledger,
		logger:    logger,
		validator: validator,
	}
}

func (h *PaymentHandlerImpl) Callback(c *gin.Context) {
	var req params.PaymentCallbackRequest
	if !bindJSON(c, h.logger, h.validator, &req) {
		return
	}

	outcome, err := entity.ParseOutcome(req.Status)
	if err != nil {
		abort(c, response.BadRequestError("invalid payment status"))
		return
	}

	transaction, err := h.ledger.Confirm(c.Request.Context(), req.ReferenceID, outcome)
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"reference_id": req.ReferenceID,
			"status":       outcome,
		}).Warn("Payment callback rejected")
		abort(c, response.FromDomainError(err, "failed to confirm payment"))
		return
	}

	respondOK(c, "Payment processed", params.NewTransactionResponse(transaction))
}
