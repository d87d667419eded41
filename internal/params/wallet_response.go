package params

import (
	"time"

	"go-coin-wallet/internal/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type WalletResponse struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	Balance     decimal.Decimal `json:"balance"`
	CoinBalance int64           `json:"coin_balance"`
	SMSBalance  int64           `json:"sms_balance"`
	Currency    string          `json:"currency"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func NewWalletResponse(w *entity.Wallet) *WalletResponse {
	return &WalletResponse{
		ID:          w.ID,
		UserID:      w.UserID,
		Balance:     w.Balance,
		CoinBalance: w.CoinBalance,
		SMSBalance:  w.SMSBalance,
		Currency:    w.Currency,
		IsActive:    w.IsActive,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}

type BalanceResponse struct {
	UserID      uuid.UUID       `json:"user_id"`
	WalletID    uuid.UUID       `json:"wallet_id"`
	Balance     decimal.Decimal `json:"balance"`
	CoinBalance int64           `json:"coin_balance"`
	SMSBalance  int64           `json:"sms_balance"`
	Currency    string          `json:"currency"`
	Timestamp   time.Time       `json:"timestamp"`
}

type TransactionResponse struct {
	ID           uuid.UUID                `json:"id"`
	WalletID     uuid.UUID                `json:"wallet_id"`
	Type         entity.TransactionType   `json:"type"`
	Amount       decimal.Decimal          `json:"amount"`
	CoinAmount   int64                    `json:"coin_amount"`
	SMSAmount    int64                    `json:"sms_amount"`
	Status       entity.TransactionStatus `json:"status"`
	ExchangeRate *decimal.Decimal         `json:"exchange_rate,omitempty"`
	ReferenceID  *string                  `json:"reference_id,omitempty"`
	ReversalOfID *uuid.UUID               `json:"reversal_of_id,omitempty"`
	Description  *string                  `json:"description,omitempty"`
	Metadata     map[string]interface{}   `json:"metadata,omitempty"`
	CreatedAt    time.Time                `json:"created_at"`
	UpdatedAt    time.Time                `json:"updated_at"`
}

func NewTransactionResponse(t *entity.Transaction) *TransactionResponse {
	resp := &TransactionResponse{
		ID:           t.ID,
		WalletID:     t.WalletID,
		Type:         t.Type,
		Amount:       t.Amount,
		CoinAmount:   t.CoinAmount,
		SMSAmount:    t.SMSAmount,
		Status:       t.Status,
		ExchangeRate: t.ExchangeRate,
		ReferenceID:  t.ReferenceID,
		ReversalOfID: t.ReversalOfID,
		Metadata:     t.Metadata,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
	if t.Description != "" {
		desc := t.Description
		resp.Description = &desc
	}
	return resp
}

type TransactionHistoryResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Total        int64                  `json:"total"`
	Page         int                    `json:"page"`
	Limit        int                    `json:"limit"`
	TotalPages   int                    `json:"total_pages"`
}

// PendingPaymentResponse is returned for gateway-funded flows. The client hands
// ReferenceID to the gateway, which reports the outcome through the callback.
type PendingPaymentResponse struct {
	TransactionID uuid.UUID                `json:"transaction_id"`
	ReferenceID   string                   `json:"reference_id"`
	Amount        decimal.Decimal          `json:"amount"`
	CoinAmount    int64                    `json:"coin_amount,omitempty"`
	Status        entity.TransactionStatus `json:"status"`
	Timestamp     time.Time                `json:"timestamp"`
}

type ConvertResponse struct {
	Amount       decimal.Decimal `json:"amount"`
	Coins        int64           `json:"coins"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
}
