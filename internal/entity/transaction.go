package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TransactionType string

const (
	TransactionTypeDeposit         TransactionType = "deposit"
	TransactionTypeWithdrawal      TransactionType = "withdrawal"
	TransactionTypePayment         TransactionType = "payment"
	TransactionTypeRefund          TransactionType = "refund"
	TransactionTypeConsultationFee TransactionType = "consultation_fee"
	TransactionTypeCoinPurchase    TransactionType = "coin_purchase"
	TransactionTypeCoinUsage       TransactionType = "coin_usage"
	TransactionTypeCoinRefund      TransactionType = "coin_refund"
	TransactionTypeCoinReward      TransactionType = "coin_reward"
	TransactionTypeAIChat          TransactionType = "ai_chat"
	TransactionTypeSMSBuying       TransactionType = "sms_buying"
	TransactionTypeSMSUsage        TransactionType = "sms_usage"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusCanceled  TransactionStatus = "canceled"
)

// Metadata keys written by the ledger.
const (
	MetadataReversedBy = "reversed_by"
	MetadataReverses   = "reverses"
)

type Transaction struct {
	ID           uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	WalletID     uuid.UUID         `gorm:"type:uuid;not null;index;index:idx_transactions_reference,priority:1" json:"wallet_id"`
	Type         TransactionType   `gorm:"type:varchar(20);not null;index:idx_transactions_reference,priority:2" json:"type"`
	Amount       decimal.Decimal   `gorm:"type:decimal(20,0);not null;default:0" json:"amount"`
	CoinAmount   int64             `gorm:"not null;default:0" json:"coin_amount"`
	SMSAmount    int64             `gorm:"column:sms_amount;not null;default:0" json:"sms_amount"`
	Status       TransactionStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	ExchangeRate *decimal.Decimal  `gorm:"type:decimal(12,0)" json:"exchange_rate,omitempty"`
	ReferenceID  *string           `gorm:"type:varchar(100);index:idx_transactions_reference,priority:3;uniqueIndex:idx_transactions_pending_reference,where:status = 'pending'" json:"reference_id,omitempty"`
	ReversalOfID *uuid.UUID        `gorm:"type:uuid;uniqueIndex" json:"reversal_of_id,omitempty"`
	Description  string            `gorm:"type:text" json:"description"`
	Metadata     datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_transactions_created_at,sort:desc" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Wallet Wallet `gorm:"foreignKey:WalletID;constraint:OnDelete:CASCADE" json:"-"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (Transaction) TableName() string {
	return "transactions"
}

func (t Transaction) Delta() Delta {
	return Delta{Rial: t.Amount, Coin: t.CoinAmount, SMS: t.SMSAmount}
}

// Delta is a signed change to a wallet's balances.
type Delta struct {
	Rial decimal.Decimal
	Coin int64
	SMS  int64
}

func (d Delta) Neg() Delta {
	return Delta{Rial: d.Rial.Neg(), Coin: -d.Coin, SMS: -d.SMS}
}

func (d Delta) IsZero() bool {
	return d.Rial.IsZero() && d.Coin == 0 && d.SMS == 0
}

// Magnitudes are the unsigned quantities a caller asks the ledger to move.
type Magnitudes struct {
	Rial decimal.Decimal
	Coin int64
	SMS  int64
}

// sign is the direction a transaction type moves each balance: +1 credit, -1 debit,
// 0 when the type never touches that balance.
type sign struct {
	rial, coin, sms int
}

var transactionSigns = map[TransactionType]sign{
	TransactionTypeDeposit:         {rial: 1},
	TransactionTypeWithdrawal:      {rial: -1},
	TransactionTypePayment:         {rial: -1, coin: -1},
	TransactionTypeRefund:          {rial: 1, coin: 1},
	TransactionTypeConsultationFee: {rial: -1, coin: -1},
	TransactionTypeCoinPurchase:    {rial: -1, coin: 1},
	TransactionTypeCoinUsage:       {coin: -1},
	TransactionTypeCoinRefund:      {coin: 1},
	TransactionTypeCoinReward:      {coin: 1},
	TransactionTypeAIChat:          {coin: -1},
	TransactionTypeSMSBuying:       {coin: -1, sms: 1},
	TransactionTypeSMSUsage:        {sms: -1},
}

var reversalTypes = map[TransactionType]TransactionType{
	TransactionTypeDeposit:         TransactionTypeWithdrawal,
	TransactionTypeWithdrawal:      TransactionTypeDeposit,
	TransactionTypePayment:         TransactionTypeRefund,
	TransactionTypeConsultationFee: TransactionTypeRefund,
	TransactionTypeCoinPurchase:    TransactionTypeRefund,
	TransactionTypeRefund:          TransactionTypePayment,
	TransactionTypeCoinUsage:       TransactionTypeCoinRefund,
	TransactionTypeAIChat:          TransactionTypeCoinRefund,
	TransactionTypeCoinReward:      TransactionTypeCoinUsage,
	TransactionTypeCoinRefund:      TransactionTypeCoinUsage,
	TransactionTypeSMSBuying:       TransactionTypeRefund,
	TransactionTypeSMSUsage:        TransactionTypeSMSBuying,
}

func ParseTransactionType(raw string) (TransactionType, error) {
	t := TransactionType(raw)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTransactionType, raw)
	}
	return t, nil
}

func (t TransactionType) Valid() bool {
	_, ok := transactionSigns[t]
	return ok
}

// ReversalType is the type recorded on the transaction that undoes one of type t.
func (t TransactionType) ReversalType() (TransactionType, error) {
	r, ok := reversalTypes[t]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidTransactionType, t)
	}
	return r, nil
}

// SignedDelta turns caller magnitudes into the signed delta for type t.
func (t TransactionType) SignedDelta(m Magnitudes) (Delta, error) {
	s, ok := transactionSigns[t]
	if !ok {
		return Delta{}, fmt.Errorf("%w: %q", ErrInvalidTransactionType, t)
	}
	if m.Rial.IsNegative() || m.Coin < 0 || m.SMS < 0 {
		return Delta{}, fmt.Errorf("%w: magnitudes must not be negative", ErrInvalidAmount)
	}
	if !m.Rial.Equal(m.Rial.Truncate(0)) {
		return Delta{}, fmt.Errorf("%w: rial amounts are whole numbers", ErrInvalidAmount)
	}
	if (s.rial == 0 && !m.Rial.IsZero()) || (s.coin == 0 && m.Coin != 0) || (s.sms == 0 && m.SMS != 0) {
		return Delta{}, fmt.Errorf("%w: %s does not move that balance", ErrInvalidAmount, t)
	}
	return Delta{
		Rial: m.Rial.Mul(decimal.NewFromInt(int64(s.rial))),
		Coin: m.Coin * int64(s.coin),
		SMS:  m.SMS * int64(s.sms),
	}, nil
}

func (s TransactionStatus) Terminal() bool {
	switch s {
	case TransactionStatusCompleted, TransactionStatusFailed, TransactionStatusCanceled:
		return true
	}
	return false
}

// CanTransition reports whether a transaction may move from s to next.
// Only pending transactions move, and only into a terminal status.
func (s TransactionStatus) CanTransition(next TransactionStatus) bool {
	return s == TransactionStatusPending && next.Terminal()
}

func ParseOutcome(raw string) (TransactionStatus, error) {
	status := TransactionStatus(raw)
	if !status.Terminal() {
		return "", fmt.Errorf("%w: unknown outcome %q", ErrInvalidStateTransition, raw)
	}
	return status, nil
}

func AllTransactionTypes() []TransactionType {
	return []TransactionType{
		TransactionTypeDeposit, TransactionTypeWithdrawal, TransactionTypePayment, TransactionTypeRefund,
		TransactionTypeConsultationFee, TransactionTypeCoinPurchase, TransactionTypeCoinUsage,
		TransactionTypeCoinRefund, TransactionTypeCoinReward, TransactionTypeAIChat,
		TransactionTypeSMSBuying, TransactionTypeSMSUsage,
	}
}
