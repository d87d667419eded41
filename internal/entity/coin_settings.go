package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CoinSettings struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	ExchangeRate decimal.Decimal `gorm:"type:decimal(12,0);not null;check:exchange_rate > 0" json:"exchange_rate"`
	Description  string          `gorm:"type:text" json:"description"`
	IsActive     bool            `gorm:"not null" json:"is_active"`
	IsDefault    bool            `gorm:"not null;default:false;uniqueIndex:idx_coin_settings_single_default,where:is_default" json:"is_default"`
	CreatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (c *CoinSettings) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (CoinSettings) TableName() string {
	return "coin_settings"
}

// ConvertRialToCoin returns floor(rial / rate). Non-positive rial converts to zero coins.
func ConvertRialToCoin(rial, rate decimal.Decimal) (int64, error) {
	if !rate.IsPositive() {
		return 0, ErrInvalidExchangeRate
	}
	if !rial.IsPositive() {
		return 0, nil
	}
	return rial.Div(rate).Floor().IntPart(), nil
}

// ConvertCoinToRial returns coins * rate.
func ConvertCoinToRial(coins int64, rate decimal.Decimal) (decimal.Decimal, error) {
	if !rate.IsPositive() {
		return decimal.Zero, ErrInvalidExchangeRate
	}
	if coins <= 0 {
		return decimal.Zero, nil
	}
	return decimal.NewFromInt(coins).Mul(rate), nil
}
