package params

import (
	"time"

	"go-coin-wallet/internal/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CoinSettingsResponse struct {
	ID           uuid.UUID       `json:"id"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	Description  string          `json:"description,omitempty"`
	IsActive     bool            `json:"is_active"`
	IsDefault    bool            `json:"is_default"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func NewCoinSettingsResponse(s *entity.CoinSettings) *CoinSettingsResponse {
	return &CoinSettingsResponse{
		ID:           s.ID,
		ExchangeRate: s.ExchangeRate,
		Description:  s.Description,
		IsActive:     s.IsActive,
		IsDefault:    s.IsDefault,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

type CoinPackageResponse struct {
	ID           uuid.UUID       `json:"id"`
	Value        int64           `json:"value"`
	Label        string          `json:"label"`
	Price        decimal.Decimal `json:"price"`
	PricePerCoin decimal.Decimal `json:"price_per_coin"`
	Order        int             `json:"order"`
	Description  string          `json:"description,omitempty"`
	Role         *string         `json:"role,omitempty"`
	IsActive     bool            `json:"is_active"`
}

func NewCoinPackageResponse(p *entity.CoinPackage) *CoinPackageResponse {
	return &CoinPackageResponse{
		ID:           p.ID,
		Value:        p.Value,
		Label:        p.Label,
		Price:        p.Price,
		PricePerCoin: p.PricePerCoin(),
		Order:        p.Order,
		Description:  p.Description,
		Role:         p.Role,
		IsActive:     p.IsActive,
	}
}

type SMSPackageResponse struct {
	ID          uuid.UUID `json:"id"`
	Value       int64     `json:"value"`
	Label       string    `json:"label"`
	CoinCost    int64     `json:"coin_cost"`
	Order       int       `json:"order"`
	Description string    `json:"description,omitempty"`
	Role        *string   `json:"role,omitempty"`
	IsActive    bool      `json:"is_active"`
}

func NewSMSPackageResponse(p *entity.SMSPackage) *SMSPackageResponse {
	return &SMSPackageResponse{
		ID:          p.ID,
		Value:       p.Value,
		Label:       p.Label,
		CoinCost:    p.CoinCost,
		Order:       p.Order,
		Description: p.Description,
		Role:        p.Role,
		IsActive:    p.IsActive,
	}
}

type SummaryResponse struct {
	From *time.Time                  `json:"from,omitempty"`
	To   *time.Time                  `json:"to,omitempty"`
	Rows []entity.TransactionSummary `json:"rows"`
}
