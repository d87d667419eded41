package entity

import "errors"

// Ledger errors. Callers match them with errors.Is.
var (
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrInactiveWallet         = errors.New("wallet is inactive")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvalidStateTransition = errors.New("invalid transaction state transition")
	ErrNoActiveRateConfigured = errors.New("no active exchange rate configured")

	ErrWalletNotFound      = errors.New("wallet not found")
	ErrWalletExists        = errors.New("wallet already exists")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrSettingsNotFound    = errors.New("coin settings not found")
	ErrPackageNotFound     = errors.New("package not found")
	ErrPackageForbidden    = errors.New("package is not available for this role")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidExchangeRate = errors.New("invalid exchange rate")
	ErrAlreadyReversed     = errors.New("transaction already reversed")
	ErrDuplicateReference  = errors.New("duplicate reference id")
	ErrDefaultRateInUse    = errors.New("default exchange rate cannot be deactivated")
	ErrConcurrentUpdate    = errors.New("wallet was modified by another transaction")

	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("user with this email already exists")
)
