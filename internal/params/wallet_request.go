package params

import "github.com/shopspring/decimal"

// Rial amounts are decimals and are checked by the usecases; validator tags cover the rest.

type CreateWalletRequest struct {
	Currency string `json:"currency" validate:"omitempty,len=3"`
}

type DepositRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty" validate:"max=500"`
}

type WithdrawRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty" validate:"max=500"`
	ReferenceID string          `json:"reference_id,omitempty" validate:"max=100"`
}

type PurchaseCoinsRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty" validate:"max=500"`
	ReferenceID string          `json:"reference_id,omitempty" validate:"max=100"`
}

type UseCoinsRequest struct {
	Coins       int64  `json:"coins" validate:"required,gt=0"`
	Description string `json:"description,omitempty" validate:"max=500"`
	ReferenceID string `json:"reference_id,omitempty" validate:"max=100"`
}

type AIChatChargeRequest struct {
	Coins       int64  `json:"coins" validate:"required,gt=0"`
	SessionID   string `json:"session_id" validate:"required,max=100"`
	Description string `json:"description,omitempty" validate:"max=500"`
}

type UseSMSRequest struct {
	Count       int64  `json:"count" validate:"required,gt=0"`
	Description string `json:"description,omitempty" validate:"max=500"`
	ReferenceID string `json:"reference_id,omitempty" validate:"max=100"`
}

type ConvertRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type TransactionHistoryQuery struct {
	Page     int    `form:"page" validate:"omitempty,gte=1"`
	Limit    int    `form:"limit" validate:"omitempty,gte=1,lte=100"`
	Type     string `form:"type" validate:"omitempty,max=20"`
	CoinOnly bool   `form:"coin_only"`
}

type BuyCoinPackageRequest struct {
	Method string `json:"method" validate:"omitempty,oneof=wallet gateway"`
}
