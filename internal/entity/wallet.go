package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const DefaultCurrency = "IRR"

type Wallet struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Balance     decimal.Decimal `gorm:"type:decimal(20,0);not null;default:0;check:balance >= 0" json:"balance"`
	CoinBalance int64           `gorm:"not null;default:0;check:coin_balance >= 0" json:"coin_balance"`
	SMSBalance  int64           `gorm:"column:sms_balance;not null;default:0;check:sms_balance >= 0" json:"sms_balance"`
	Currency    string          `gorm:"type:varchar(3);not null;default:'IRR'" json:"currency"`
	IsActive    bool            `gorm:"not null" json:"is_active"`
	Version     int             `gorm:"not null;default:1" json:"version"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relations
	Transactions []Transaction `gorm:"foreignKey:WalletID;constraint:OnDelete:CASCADE" json:"transactions,omitempty"`
}

func NewWallet(userID uuid.UUID, currency string) *Wallet {
	if currency == "" {
		currency = DefaultCurrency
	}
	return &Wallet{
		ID:       uuid.New(),
		UserID:   userID,
		Balance:  decimal.Zero,
		Currency: currency,
		IsActive: true,
		Version:  1,
	}
}

func (w *Wallet) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

func (Wallet) TableName() string {
	return "wallets"
}

// CanAfford reports whether debiting the given magnitudes keeps every balance non-negative.
func (w Wallet) CanAfford(amount decimal.Decimal, coins, sms int64) bool {
	return w.Balance.GreaterThanOrEqual(amount) && w.CoinBalance >= coins && w.SMSBalance >= sms
}

// Balances is a snapshot of the three wallet balances.
type Balances struct {
	Rial decimal.Decimal
	Coin int64
	SMS  int64
}

func (w Wallet) Balances() Balances {
	return Balances{Rial: w.Balance, Coin: w.CoinBalance, SMS: w.SMSBalance}
}

// Add returns the balances after applying d. The result may be negative; callers check Valid.
func (b Balances) Add(d Delta) Balances {
	return Balances{
		Rial: b.Rial.Add(d.Rial),
		Coin: b.Coin + d.Coin,
		SMS:  b.SMS + d.SMS,
	}
}

func (b Balances) Valid() bool {
	return !b.Rial.IsNegative() && b.Coin >= 0 && b.SMS >= 0
}
