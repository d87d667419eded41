package entity

import "github.com/shopspring/decimal"

// TransactionSummary is one (type, status, reversal) bucket of the admin report.
// Reversal rows carry the negated deltas of the transaction they undo, so their
// totals can run against the usual direction of their type and are kept apart.
type TransactionSummary struct {
	Type        TransactionType   `json:"type"`
	Status      TransactionStatus `json:"status"`
	Reversal    bool              `json:"reversal"`
	Count       int64             `json:"count"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	TotalCoins  int64             `json:"total_coins"`
	TotalSMS    int64             `json:"total_sms"`
}
