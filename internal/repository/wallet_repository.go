package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-coin-wallet/internal/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TransactionFilter narrows a wallet's transaction history.
type TransactionFilter struct {
	Type     entity.TransactionType
	CoinOnly bool
}

type WalletRepository interface {
	Create(ctx context.Context, wallet *entity.Wallet) error
	GetOrCreate(ctx context.Context, userID uuid.UUID, currency string) (*entity.Wallet, bool, error)
	GetByID(ctx context.Context, walletID uuid.UUID) (*entity.Wallet, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*entity.Wallet, error)
	GetByIDForUpdate(ctx context.Context, tx *gorm.DB, walletID uuid.UUID) (*entity.Wallet, error)
	UpdateBalances(ctx context.Context, tx *gorm.DB, wallet *entity.Wallet, next entity.Balances) error
	SetActive(ctx context.Context, walletID uuid.UUID, active bool) error
	CreateTransaction(ctx context.Context, tx *gorm.DB, transaction *entity.Transaction) error
	GetTransactionByID(ctx context.Context, transactionID uuid.UUID) (*entity.Transaction, error)
	GetTransactionForUpdate(ctx context.Context, tx *gorm.DB, transactionID uuid.UUID) (*entity.Transaction, error)
	GetTransactionByReferenceForUpdate(ctx context.Context, tx *gorm.DB, referenceID string) (*entity.Transaction, error)
	FindTransactionByReference(ctx context.Context, tx *gorm.DB, walletID uuid.UUID, txType entity.TransactionType, referenceID string) (*entity.Transaction, error)
	UpdateTransactionStatus(ctx context.Context, tx *gorm.DB, transactionID uuid.UUID, from, to entity.TransactionStatus) error
	UpdateTransactionMetadata(ctx context.Context, tx *gorm.DB, transactionID uuid.UUID, metadata datatypes.JSONMap) error
	GetTransactionsByWalletID(ctx context.Context, walletID uuid.UUID, filter TransactionFilter, limit, offset int) ([]*entity.Transaction, error)
	CountTransactionsByWalletID(ctx context.Context, walletID uuid.UUID, filter TransactionFilter) (int64, error)
	SummarizeTransactions(ctx context.Context, from, to *time.Time) ([]entity.TransactionSummary, error)
	BeginTx(ctx context.Context) *gorm.DB
}

type WalletRepositoryImpl struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewWalletRepository(db *gorm.DB, logger *logrus.Logger) WalletRepository {
	return &WalletRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *WalletRepositoryImpl) Create(ctx context.Context, wallet *entity.Wallet) error {
	if err := r.db.WithContext(ctx).Create(wallet).Error; err != nil {
		if isUniqueViolation(err) {
			return entity.ErrWalletExists
		}
		r.logger.WithError(err).Error("Failed to create wallet in database")
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	return nil
}

// GetOrCreate returns the user's wallet, inserting a zero-balance one when absent.
// A concurrent creator that loses the insert reads the winner's row.
func (r *WalletRepositoryImpl) GetOrCreate(ctx context.Context, userID uuid.UUID, currency string) (*entity.Wallet, bool, error) {
	wallet, err := r.GetByUserID(ctx, userID)
	if err == nil {
		return wallet, false, nil
	}
	if !errors.Is(err, entity.ErrWalletNotFound) {
		return nil, false, err
	}

	candidate := entity.NewWallet(userID, currency)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(candidate)
	if result.Error != nil {
		r.logger.WithError(result.Error).WithField("user_id", userID).Error("Failed to create wallet in database")
		return nil, false, fmt.Errorf("failed to create wallet: %w", result.Error)
	}

	if result.RowsAffected == 1 {
		r.logger.WithFields(logrus.Fields{
			"user_id":   userID,
			"wallet_id": candidate.ID,
		}).Info("Wallet created")
		return candidate, true, nil
	}

	wallet, err = r.GetByUserID(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	return wallet, false, nil
}

func (r *WalletRepositoryImpl) GetByID(ctx context.Context, walletID uuid.UUID) (*entity.Wallet, error) {
	var wallet entity.Wallet

	err := r.db.WithContext(ctx).Where("id = ?", walletID).First(&wallet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrWalletNotFound
		}
		r.logger.WithError(err).WithField("wallet_id", walletID).Error("Failed to get wallet by ID")
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	return &wallet, nil
}

func (r *WalletRepositoryImpl) GetByUserID(ctx context.Context, userID uuid.UUID) (*entity.Wallet, error) {
	var wallet entity.Wallet

	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&wallet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrWalletNotFound
		}
		r.logger.WithError(err).WithField("user_id", userID).Error("Failed to get wallet by user ID")
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	return &wallet, nil
}

func (r *WalletRepositoryImpl) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, walletID uuid.UUID) (*entity.Wallet, error) {
	var wallet entity.Wallet

	err := dbOrTx(r.db, tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", walletID).
		First(&wallet).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrWalletNotFound
		}
		r.logger.WithError(err).WithField("wallet_id", walletID).Error("Failed to get wallet for update")
		return nil, fmt.Errorf("failed to get wallet for update: %w", err)
	}

	return &wallet, nil
}

// UpdateBalances writes next and bumps the version. The row must still carry
// wallet.Version, otherwise ErrConcurrentUpdate is returned.
func (r *WalletRepositoryImpl) UpdateBalances(ctx context.Context, tx *gorm.DB, wallet *entity.Wallet, next entity.Balances) error {
	result := dbOrTx(r.db, tx).WithContext(ctx).
		Model(&entity.Wallet{}).
		Where("id = ? AND version = ?", wallet.ID, wallet.Version).
		Updates(map[string]interface{}{
			"balance":      next.Rial,
			"coin_balance": next.Coin,
			"sms_balance":  next.SMS,
			"version":      wallet.Version + 1,
			"updated_at":   time.Now(),
		})

	if result.Error != nil {
		r.logger.WithError(result.Error).WithField("wallet_id", wallet.ID).Error("Failed to update wallet balance")
		return fmt.Errorf("failed to update wallet balance: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return entity.ErrConcurrentUpdate
	}

	wallet.Balance = next.Rial
	wallet.CoinBalance = next.Coin
	wallet.SMSBalance = next.SMS
	wallet.Version++
	return nil
}

func (r *WalletRepositoryImpl) SetActive(ctx context.Context, walletID uuid.UUID, active bool) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Wallet{}).
		Where("id = ?", walletID).
		Update("is_active", active)
	if result.Error != nil {
		r.logger.WithError(result.Error).WithField("wallet_id", walletID).Error("Failed to update wallet state")
		return fmt.Errorf("failed to update wallet state: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return entity.ErrWalletNotFound
	}
	return nil
}

func (r *WalletRepositoryImpl) CreateTransaction(ctx context.Context, tx *gorm.DB, transaction *entity.Transaction) error {
	if err := dbOrTx(r.db, tx).WithContext(ctx).Create(transaction).Error; err != nil {
		if transaction.ReversalOfID != nil && isUniqueViolation(err) {
			return entity.ErrAlreadyReversed
		}
		if transaction.Status == entity.TransactionStatusPending && transaction.ReferenceID != nil && isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", entity.ErrDuplicateReference, *transaction.ReferenceID)
		}
		r.logger.WithError(err).Error("Failed to create transaction in database")
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

func (r *WalletRepositoryImpl) GetTransactionByID(ctx context.Context, transactionID uuid.UUID) (*entity.Transaction, error) {
	var transaction entity.Transaction
	err := r.db.WithContext(ctx).Where("id = ?", transactionID).First(&transaction).Error
	if err != nil {
		return nil, r.transactionLookupError(err, "transaction_id", transactionID)
	}
	return &transaction, nil
}

func (r *WalletRepositoryImpl) GetTransactionForUpdate(ctx context.Context, tx *gorm.DB, transactionID uuid.UUID) (*entity.Transaction, error) {
	var transaction entity.Transaction
	err := dbOrTx(r.db, tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", transactionID).
		First(&transaction).Error
	if err != nil {
		return nil, r.transactionLookupError(err, "transaction_id", transactionID)
	}
	return &transaction, nil
}

// GetTransactionByReferenceForUpdate locks the pending transaction carrying referenceID.
// At most one pending row holds a given reference; when none is pending the most recent
// settled one is returned so a repeated callback sees its final status.
func (r *WalletRepositoryImpl) GetTransactionByReferenceForUpdate(ctx context.Context, tx *gorm.DB, referenceID string) (*entity.Transaction, error) {
	var transaction entity.Transaction
	err := dbOrTx(r.db, tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("reference_id = ?", referenceID).
		Order("CASE WHEN status = 'pending' THEN 0 ELSE 1 END, created_at DESC").
		First(&transaction).Error
	if err != nil {
		return nil, r.transactionLookupError(err, "reference_id", referenceID)
	}
	return &transaction, nil
}

func (r *WalletRepositoryImpl) FindTransactionByReference(ctx context.Context, tx *gorm.DB, walletID uuid.UUID, txType entity.TransactionType, referenceID string) (*entity.Transaction, error) {
	var transaction entity.Transaction
	err := dbOrTx(r.db, tx).WithContext(ctx).
		Where("wallet_id = ? AND type = ? AND reference_id = ?", walletID, txType, referenceID).
		Order("created_at DESC").
		First(&transaction).Error
	if err != nil {
		return nil, r.transactionLookupError(err, "reference_id", referenceID)
	}
	return &transaction, nil
}

// UpdateTransactionStatus moves a transaction from one status to another. The
// update only matches rows still in from, so a terminal status is never overwritten.
func (r *WalletRepositoryImpl) UpdateTransactionStatus(ctx context.Context, tx *gorm.DB, transactionID uuid.UUID, from, to entity.TransactionStatus) error {
	if !from.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", entity.ErrInvalidStateTransition, from, to)
	}

	result := dbOrTx(r.db, tx).WithContext(ctx).
		Model(&entity.Transaction{}).
		Where("id = ? AND status = ?", transactionID, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		r.logger.WithError(result.Error).WithField("transaction_id", transactionID).
			Error("Failed to update transaction status")
		return fmt.Errorf("failed to update transaction status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: transaction is no longer %s", entity.ErrInvalidStateTransition, from)
	}

	return nil
}

func (r *WalletRepositoryImpl) UpdateTransactionMetadata(ctx context.Context, tx *gorm.DB, transactionID uuid.UUID, metadata datatypes.JSONMap) error {
	err := dbOrTx(r.db, tx).WithContext(ctx).
		Model(&entity.Transaction{}).
		Where("id = ?", transactionID).
		Update("metadata", metadata).Error
	if err != nil {
		r.logger.WithError(err).WithField("transaction_id", transactionID).Error("Failed to update transaction metadata")
		return fmt.Errorf("failed to update transaction metadata: %w", err)
	}
	return nil
}

func (r *WalletRepositoryImpl) GetTransactionsByWalletID(ctx context.Context, walletID uuid.UUID, filter TransactionFilter, limit, offset int) ([]*entity.Transaction, error) {
	var transactions []*entity.Transaction

	err := r.filtered(ctx, walletID, filter).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&transactions).Error

	if err != nil {
		r.logger.WithError(err).WithField("wallet_id", walletID).Error("Failed to get transactions")
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}

	return transactions, nil
}

func (r *WalletRepositoryImpl) CountTransactionsByWalletID(ctx context.Context, walletID uuid.UUID, filter TransactionFilter) (int64, error) {
	var count int64
	err := r.filtered(ctx, walletID, filter).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

func (r *WalletRepositoryImpl) SummarizeTransactions(ctx context.Context, from, to *time.Time) ([]entity.TransactionSummary, error) {
	query := r.db.WithContext(ctx).
		Model(&entity.Transaction{}).
		Select("type, status, (reversal_of_id IS NOT NULL) as reversal, count(*) as count, " +
			"coalesce(sum(amount), 0) as total_amount, " +
			"coalesce(sum(coin_amount), 0) as total_coins, " +
			"coalesce(sum(sms_amount), 0) as total_sms")
	if from != nil {
		query = query.Where("created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("created_at < ?", *to)
	}

	var rows []entity.TransactionSummary
	err := query.Group("type, status, reversal_of_id IS NOT NULL").Order("type, status, reversal").Scan(&rows).Error
	if err != nil {
		r.logger.WithError(err).Error("Failed to summarize transactions")
		return nil, fmt.Errorf("failed to summarize transactions: %w", err)
	}
	return rows, nil
}

func (r *WalletRepositoryImpl) BeginTx(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Begin()
}

func (r *WalletRepositoryImpl) filtered(ctx context.Context, walletID uuid.UUID, filter TransactionFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&entity.Transaction{}).Where("wallet_id = ?", walletID)
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.CoinOnly {
		query = query.Where("coin_amount <> 0")
	}
	return query
}

func (r *WalletRepositoryImpl) transactionLookupError(err error, field string, value interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entity.ErrTransactionNotFound
	}
	r.logger.WithError(err).WithField(field, value).Error("Failed to get transaction")
	return fmt.Errorf("failed to get transaction: %w", err)
}
