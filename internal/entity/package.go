package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CoinPackage struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Value       int64           `gorm:"not null;check:value > 0" json:"value"`
	Label       string          `gorm:"type:varchar(50);not null" json:"label"`
	Price       decimal.Decimal `gorm:"type:decimal(12,0);not null;default:0" json:"price"`
	Order       int             `gorm:"column:display_order;not null;default:0" json:"order"`
	Description string          `gorm:"type:text" json:"description,omitempty"`
	Role        *string         `gorm:"type:varchar(20);index" json:"role,omitempty"`
	IsActive    bool            `gorm:"not null" json:"is_active"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (p *CoinPackage) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (CoinPackage) TableName() string {
	return "coin_packages"
}

func (p CoinPackage) AvailableTo(role string) bool {
	return p.IsActive && (p.Role == nil || *p.Role == role)
}

// PricePerCoin is zero for an empty package.
func (p CoinPackage) PricePerCoin() decimal.Decimal {
	if p.Value <= 0 {
		return decimal.Zero
	}
	return p.Price.Div(decimal.NewFromInt(p.Value))
}

type SMSPackage struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Value       int64     `gorm:"not null;check:value > 0" json:"value"`
	Label       string    `gorm:"type:varchar(50);not null" json:"label"`
	CoinCost    int64     `gorm:"not null;default:0;check:coin_cost >= 0" json:"coin_cost"`
	Order       int       `gorm:"column:display_order;not null;default:0" json:"order"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Role        *string   `gorm:"type:varchar(20);index" json:"role,omitempty"`
	IsActive    bool      `gorm:"not null" json:"is_active"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (p *SMSPackage) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (SMSPackage) TableName() string {
	return "sms_packages"
}

func (p SMSPackage) AvailableTo(role string) bool {
	return p.IsActive && (p.Role == nil || *p.Role == role)
}
