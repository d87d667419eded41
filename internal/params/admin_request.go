package params

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ApplyTransactionRequest struct {
	WalletID    uuid.UUID              `json:"wallet_id" validate:"required"`
	Type        string                 `json:"type" validate:"required,max=20"`
	Amount      decimal.Decimal        `json:"amount"`
	CoinAmount  int64                  `json:"coin_amount" validate:"gte=0"`
	SMSAmount   int64                  `json:"sms_amount" validate:"gte=0"`
	Description string                 `json:"description,omitempty" validate:"max=500"`
	ReferenceID string                 `json:"reference_id,omitempty" validate:"max=100"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

type ReverseTransactionRequest struct {
	Description string `json:"description,omitempty" validate:"max=500"`
}

type CoinSettingsRequest struct {
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	Description  string          `json:"description,omitempty" validate:"max=500"`
	IsDefault    bool            `json:"is_default"`
	IsActive     *bool           `json:"is_active,omitempty"`
}

type CoinPackageRequest struct {
	Value       int64           `json:"value" validate:"required,gt=0"`
	Label       string          `json:"label" validate:"required,max=100"`
	Price       decimal.Decimal `json:"price"`
	Order       int             `json:"order" validate:"gte=0"`
	Description string          `json:"description,omitempty" validate:"max=500"`
	Role        string          `json:"role,omitempty" validate:"omitempty,oneof=client lawyer admin"`
}

type SMSPackageRequest struct {
	Value       int64  `json:"value" validate:"required,gt=0"`
	Label       string `json:"label" validate:"required,max=100"`
	CoinCost    int64  `json:"coin_cost" validate:"required,gt=0"`
	Order       int    `json:"order" validate:"gte=0"`
	Description string `json:"description,omitempty" validate:"max=500"`
	Role        string `json:"role,omitempty" validate:"omitempty,oneof=client lawyer admin"`
}

type SummaryQuery struct {
	From string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `form:"to" validate:"omitempty,datetime=2006-01-02"`
}

type PaymentCallbackRequest struct {
	ReferenceID string `json:"reference_id" validate:"required,max=100"`
	Status      string `json:"status" validate:"required,oneof=completed failed canceled"`
}
