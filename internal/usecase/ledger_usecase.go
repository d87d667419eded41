package usecase

import (
	"context"
	"errors"
	"fmt"

	"go-coin-wallet/internal/entity"
	"go-coin-wallet/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LedgerEntry describes one balance-affecting event. Magnitudes are unsigned; the
// transaction type decides the direction of each balance.
type LedgerEntry struct {
	WalletID    uuid.UUID
	Type        entity.TransactionType
	Magnitudes  entity.Magnitudes
	Description string
	ReferenceID string
	Metadata    map[string]interface{}
	// ExchangeRate overrides the active rate when a coin purchase is priced in rial only.
	ExchangeRate *decimal.Decimal
}

// LedgerUsecase is the only writer of wallet balances.
type LedgerUsecase interface {
	Apply(ctx context.Context, entry LedgerEntry) (*entity.Transaction, error)
	CreatePending(ctx context.Context, entry LedgerEntry) (*entity.Transaction, error)
	Confirm(ctx context.Context, referenceID string, outcome entity.TransactionStatus) (*entity.Transaction, error)
	Cancel(ctx context.Context, transactionID uuid.UUID) (*entity.Transaction, error)
	Reverse(ctx context.Context, transactionID uuid.UUID, description string) (*entity.Transaction, error)
	ActiveRate(ctx context.Context) (*entity.CoinSettings, error)
	ConvertRialToCoin(ctx context.Context, rial decimal.Decimal, rate *decimal.Decimal) (int64, decimal.Decimal, error)
}

type LedgerUsecaseImpl struct {
	walletRepo   repository.WalletRepository
	settingsRepo repository.CoinSettingsRepository
	logger       *logrus.Logger
	cache        *cache
}

func NewLedgerUsecase(walletRepo repository.WalletRepository, settingsRepo repository.CoinSettingsRepository, logger *logrus.Logger, rdb *redis.Client) LedgerUsecase {
	return &LedgerUsecaseImpl{
		walletRepo:   walletRepo,
		settingsRepo: settingsRepo,
		logger:       logger,
		cache:        newCache(rdb, logger),
	}
}

// Apply records a completed transaction and moves the wallet balances in one
// database transaction. A repeated reference id returns the first result.
func (u *LedgerUsecaseImpl) Apply(ctx context.Context, entry LedgerEntry) (*entity.Transaction, error) {
	if !entry.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", entity.ErrInvalidTransactionType, entry.Type)
	}

	tx := u.walletRepo.BeginTx(ctx)
	if tx.Error != nil {
		u.logger.WithError(tx.Error).Error("Failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer tx.Rollback()

	wallet, err := u.lockActiveWallet(ctx, tx, entry.WalletID)
	if err != nil {
		return nil, err
	}

	if entry.ReferenceID != "" {
		existing, err := u.walletRepo.FindTransactionByReference(ctx, tx, wallet.ID, entry.Type, entry.ReferenceID)
		switch {
		case err == nil && existing.Status == entity.TransactionStatusCompleted:
			u.logger.WithFields(logrus.Fields{
				"wallet_id":      wallet.ID,
				"reference_id":   entry.ReferenceID,
				"transaction_id": existing.ID,
			}).Info("Transaction already applied for reference")
			return existing, nil
		case err == nil:
			return nil, fmt.Errorf("%w: %s is %s", entity.ErrDuplicateReference, entry.ReferenceID, existing.Status)
		case !errors.Is(err, entity.ErrTransactionNotFound):
			return nil, err
		}
	}

	transaction, err := u.build(ctx, tx, wallet, entry, entity.TransactionStatusCompleted)
	if err != nil {
		return nil, err
	}

	next, err := u.checkSufficient(wallet, transaction.Delta())
	if err != nil {
		return nil, err
	}

	if err := u.walletRepo.CreateTransaction(ctx, tx, transaction); err != nil {
		return nil, err
	}

	if err := u.walletRepo.UpdateBalances(ctx, tx, wallet, next); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.logger.WithError(err).Error("Failed to commit transaction")
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.cache.invalidateHistory(ctx, wallet.ID)

	u.logger.WithFields(logrus.Fields{
		"wallet_id":      wallet.ID,
		"transaction_id": transaction.ID,
		"type":           transaction.Type,
		"amount":         transaction.Amount.String(),
		"coin_amount":    transaction.CoinAmount,
		"sms_amount":     transaction.SMSAmount,
	}).Info("Transaction applied")

	return transaction, nil
}

// CreatePending records a transaction that moves no balance until it is confirmed.
// A missing reference id is generated.
func (u *LedgerUsecaseImpl) CreatePending(ctx context.Context, entry LedgerEntry) (*entity.Transaction, error) {
	if !entry.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", entity.ErrInvalidTransactionType, entry.Type)
	}
	if entry.ReferenceID == "" {
		entry.ReferenceID = uuid.NewString()
	}

	tx := u.walletRepo.BeginTx(ctx)
	if tx.Error != nil {
		u.logger.WithError(tx.Error).Error("Failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer tx.Rollback()

	wallet, err := u.lockActiveWallet(ctx, tx, entry.WalletID)
	if err != nil {
		return nil, err
	}

	_, err = u.walletRepo.FindTransactionByReference(ctx, tx, wallet.ID, entry.Type, entry.ReferenceID)
	if err == nil {
		return nil, fmt.Errorf("%w: %s", entity.ErrDuplicateReference, entry.ReferenceID)
	}
	if !errors.Is(err, entity.ErrTransactionNotFound) {
		return nil, err
	}

	transaction, err := u.build(ctx, tx, wallet, entry, entity.TransactionStatusPending)
	if err != nil {
		return nil, err
	}

	if err := u.walletRepo.CreateTransaction(ctx, tx, transaction); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.logger.WithError(err).Error("Failed to commit transaction")
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.cache.invalidateHistory(ctx, wallet.ID)

	u.logger.WithFields(logrus.Fields{
		"wallet_id":      wallet.ID,
		"transaction_id": transaction.ID,
		"type":           transaction.Type,
		"reference_id":   entry.ReferenceID,
	}).Info("Pending transaction created")

	return transaction, nil
}

// Confirm settles the pending transaction carrying referenceID. A completed outcome
// applies its deltas; when the wallet cannot cover them the transaction stays pending.
func (u *LedgerUsecaseImpl) Confirm(ctx context.Context, referenceID string, outcome entity.TransactionStatus) (*entity.Transaction, error) {
	if !outcome.Terminal() {
		return nil, fmt.Errorf("%w: unknown outcome %q", entity.ErrInvalidStateTransition, outcome)
	}

	tx := u.walletRepo.BeginTx(ctx)
	if tx.Error != nil {
		u.logger.WithError(tx.Error).Error("Failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer tx.Rollback()

	transaction, err := u.walletRepo.GetTransactionByReferenceForUpdate(ctx, tx, referenceID)
	if err != nil {
		return nil, err
	}
	if !transaction.Status.CanTransition(outcome) {
		return nil, fmt.Errorf("%w: transaction is %s", entity.ErrInvalidStateTransition, transaction.Status)
	}

	if outcome == entity.TransactionStatusCompleted {
		wallet, err := u.lockActiveWallet(ctx, tx, transaction.WalletID)
		if err != nil {
			return nil, err
		}
		next, err := u.checkSufficient(wallet, transaction.Delta())
		if err != nil {
			return nil, err
		}
		if err := u.walletRepo.UpdateBalances(ctx, tx, wallet, next); err != nil {
			return nil, err
		}
	}

	if err := u.walletRepo.UpdateTransactionStatus(ctx, tx, transaction.ID, transaction.Status, outcome); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.logger.WithError(err).Error("Failed to commit transaction")
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	transaction.Status = outcome
	u.cache.invalidateHistory(ctx, transaction.WalletID)

	u.logger.WithFields(logrus.Fields{
		"transaction_id": transaction.ID,
		"reference_id":   referenceID,
		"status":         outcome,
	}).Info("Pending transaction settled")

	return transaction, nil
}

func (u *LedgerUsecaseImpl) Cancel(ctx context.Context, transactionID uuid.UUID) (*entity.Transaction, error) {
	tx := u.walletRepo.BeginTx(ctx)
	if tx.Error != nil {
		u.logger.WithError(tx.Error).Error("Failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer tx.Rollback()

	transaction, err := u.walletRepo.GetTransactionForUpdate(ctx, tx, transactionID)
	if err != nil {
		return nil, err
	}

	err = u.walletRepo.UpdateTransactionStatus(ctx, tx, transaction.ID, transaction.Status, entity.TransactionStatusCanceled)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.logger.WithError(err).Error("Failed to commit transaction")
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	transaction.Status = entity.TransactionStatusCanceled
	u.cache.invalidateHistory(ctx, transaction.WalletID)
	return transaction, nil
}

// Reverse undoes a completed transaction by recording its negated deltas under the
// linked reversal type. A transaction is reversed at most once and reversals are final.
// The deltas are copied exactly, so a reversal row may move a balance against the
// usual direction of its type (reversing a coin_purchase writes a refund that adds
// rial and removes coins). Reports tell such rows apart by reversal_of_id.
func (u *LedgerUsecaseImpl) Reverse(ctx context.Context, transactionID uuid.UUID, description string) (*entity.Transaction, error) {
	tx := u.walletRepo.BeginTx(ctx)
	if tx.Error != nil {
		u.logger.WithError(tx.Error).Error("Failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer tx.Rollback()

	original, err := u.walletRepo.GetTransactionForUpdate(ctx, tx, transactionID)
	if err != nil {
		return nil, err
	}
	if original.Status != entity.TransactionStatusCompleted {
		return nil, fmt.Errorf("%w: only completed transactions can be reversed", entity.ErrInvalidStateTransition)
	}
	if original.ReversalOfID != nil {
		return nil, fmt.Errorf("%w: a reversal cannot be reversed", entity.ErrInvalidStateTransition)
	}
	if _, ok := original.Metadata[entity.MetadataReversedBy]; ok {
		return nil, entity.ErrAlreadyReversed
	}

	reversalType, err := original.Type.ReversalType()
	if err != nil {
		return nil, err
	}

	wallet, err := u.lockActiveWallet(ctx, tx, original.WalletID)
	if err != nil {
		return nil, err
	}

	delta := original.Delta().Neg()
	next, err := u.checkSufficient(wallet, delta)
	if err != nil {
		return nil, err
	}

	if description == "" {
		description = fmt.Sprintf("Reversal of %s", original.ID)
	}
	reversal := &entity.Transaction{
		ID:           uuid.New(),
		WalletID:     wallet.ID,
		Type:         reversalType,
		Amount:       delta.Rial,
		CoinAmount:   delta.Coin,
		SMSAmount:    delta.SMS,
		Status:       entity.TransactionStatusCompleted,
		ExchangeRate: original.ExchangeRate,
		ReversalOfID: &original.ID,
		Description:  description,
		Metadata:     datatypes.JSONMap{entity.MetadataReverses: original.ID.String()},
	}

	if err := u.walletRepo.CreateTransaction(ctx, tx, reversal); err != nil {
		return nil, err
	}

	if err := u.walletRepo.UpdateBalances(ctx, tx, wallet, next); err != nil {
		return nil, err
	}

	annotated := datatypes.JSONMap{}
	for k, v := range original.Metadata {
		annotated[k] = v
	}
	annotated[entity.MetadataReversedBy] = reversal.ID.String()
	if err := u.walletRepo.UpdateTransactionMetadata(ctx, tx, original.ID, annotated); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.logger.WithError(err).Error("Failed to commit transaction")
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.cache.invalidateHistory(ctx, wallet.ID)

	u.logger.WithFields(logrus.Fields{
		"wallet_id":      wallet.ID,
		"original_id":    original.ID,
		"transaction_id": reversal.ID,
		"type":           reversal.Type,
	}).Info("Transaction reversed")

	return reversal, nil
}

func (u *LedgerUsecaseImpl) ActiveRate(ctx context.Context) (*entity.CoinSettings, error) {
	return u.settingsRepo.GetActive(ctx, nil)
}

// ConvertRialToCoin converts at rate, or at the active rate when rate is nil. The
// rate used is returned alongside the coins.
func (u *LedgerUsecaseImpl) ConvertRialToCoin(ctx context.Context, rial decimal.Decimal, rate *decimal.Decimal) (int64, decimal.Decimal, error) {
	var r decimal.Decimal
	if rate != nil {
		r = *rate
	} else {
		settings, err := u.settingsRepo.GetActive(ctx, nil)
		if err != nil {
			return 0, decimal.Zero, err
		}
		r = settings.ExchangeRate
	}

	coins, err := entity.ConvertRialToCoin(rial, r)
	if err != nil {
		return 0, decimal.Zero, err
	}
	return coins, r, nil
}

func (u *LedgerUsecaseImpl) lockActiveWallet(ctx context.Context, tx *gorm.DB, walletID uuid.UUID) (*entity.Wallet, error) {
	wallet, err := u.walletRepo.GetByIDForUpdate(ctx, tx, walletID)
	if err != nil {
		return nil, err
	}
	if !wallet.IsActive {
		return nil, entity.ErrInactiveWallet
	}
	return wallet, nil
}

// build turns an entry into an unsaved transaction, resolving the exchange rate for
// coin purchases priced in rial only.
func (u *LedgerUsecaseImpl) build(ctx context.Context, tx *gorm.DB, wallet *entity.Wallet, entry LedgerEntry, status entity.TransactionStatus) (*entity.Transaction, error) {
	magnitudes := entry.Magnitudes
	var rate *decimal.Decimal

	if entry.Type == entity.TransactionTypeCoinPurchase && magnitudes.Coin == 0 {
		r := entry.ExchangeRate
		if r == nil {
			settings, err := u.settingsRepo.GetActive(ctx, tx)
			if err != nil {
				return nil, err
			}
			r = &settings.ExchangeRate
		}
		coins, err := entity.ConvertRialToCoin(magnitudes.Rial, *r)
		if err != nil {
			return nil, err
		}
		if coins == 0 {
			return nil, fmt.Errorf("%w: amount buys no coins at rate %s", entity.ErrInvalidAmount, r.String())
		}
		magnitudes.Coin = coins
		snapshot := *r
		rate = &snapshot
	}

	delta, err := entry.Type.SignedDelta(magnitudes)
	if err != nil {
		return nil, err
	}
	if delta.IsZero() {
		return nil, fmt.Errorf("%w: transaction moves no balance", entity.ErrInvalidAmount)
	}

	transaction := &entity.Transaction{
		ID:           uuid.New(),
		WalletID:     wallet.ID,
		Type:         entry.Type,
		Amount:       delta.Rial,
		CoinAmount:   delta.Coin,
		SMSAmount:    delta.SMS,
		Status:       status,
		ExchangeRate: rate,
		Description:  entry.Description,
	}
	if entry.ReferenceID != "" {
		ref := entry.ReferenceID
		transaction.ReferenceID = &ref
	}
	if len(entry.Metadata) > 0 {
		transaction.Metadata = datatypes.JSONMap(entry.Metadata)
	}
	return transaction, nil
}

func (u *LedgerUsecaseImpl) checkSufficient(wallet *entity.Wallet, delta entity.Delta) (entity.Balances, error) {
	next := wallet.Balances().Add(delta)
	if !next.Valid() {
		u.logger.WithFields(logrus.Fields{
			"wallet_id":    wallet.ID,
			"balance":      wallet.Balance.String(),
			"coin_balance": wallet.CoinBalance,
			"sms_balance":  wallet.SMSBalance,
		}).Warn("Insufficient balance for transaction")
		return entity.Balances{}, entity.ErrInsufficientFunds
	}
	return next, nil
}
