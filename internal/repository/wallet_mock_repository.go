package repository

import (
	"context"
	"time"

	"go-coin-wallet/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) Create(ctx context.Context, wallet *entity.Wallet) error {
	args := m.Called(ctx, wallet)
	return args.Error(0)
}

func (m *MockWalletRepository) GetOrCreate(ctx context.Context, userID uuid.UUID, currency string) (*entity.Wallet, bool, error) {
	args := m.Called(ctx, userID, currency)
	if args.Get(0) != nil {
		return args.Get(0).(*entity.Wallet), args.Bool(1), args.Error(2)
	}
	return nil, args.Bool(1), args.Error(2)
}

func (m *MockWalletRepository) GetByID(ctx context.Context, walletID uuid.UUID) (*entity.Wallet, error) {
	args := m.Called(ctx, walletID)
	return walletResult(args)
}

func (m *MockWalletRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entity.Wallet, error) {
	args := m.Called(ctx, userID)
	return walletResult(args)
}

func (m *MockWalletRepository) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, walletID uuid.UUID) (*entity.Wallet, error) {
	args := m.Called(ctx, tx, walletID)
	return walletResult(args)
}

func (m *MockWalletRepository) UpdateBalances(ctx context.Context, tx *gorm.DB, wallet *entity.Wallet, next entity.Balances) error {
	args := m.Called(ctx, tx, wallet, next)
	return args.Error(0)
}

func (m *MockWalletRepository) SetActive(ctx context.Context, walletID uuid.UUID, active bool) error {
	args := m.Called(ctx, walletID, active)
	return args.Error(0)
}

func (m *MockWalletRepository) CreateTransaction(ctx context.Context, tx *gorm.DB, transaction *entity.Transaction) error {
	args := m.Called(ctx, tx, transaction)
	return args.Error(0)
}

func (m *MockWalletRepository) GetTransactionByID(ctx context.Context, transactionID uuid.UUID) (*entity.Transaction, error) {
	args := m.Called(ctx, transactionID)
	return transactionResult(args)
}

func (m *MockWalletRepository) GetTransactionForUpdate(ctx context.Context, tx *gorm.DB, transactionID uuid.UUID) (*entity.Transaction, error) {
	args := m.Called(ctx, tx, transactionID)
	return transactionResult(args)
}

func (m *MockWalletRepository) GetTransactionByReferenceForUpdate(ctx context.Context, tx *gorm.DB, referenceID string) (*entity.Transaction, error) {
	args := m.Called(ctx, tx, referenceID)
	return transactionResult(args)
}

func (m *MockWalletRepository) FindTransactionByReference(ctx context.Context, tx *gorm.DB, walletID uuid.UUID, txType entity.TransactionType, referenceID string) (*entity.Transaction, error) {
	args := m.Called(ctx, tx, walletID, txType, referenceID)
	return transactionResult(args)
}

func (m *MockWalletRepository) UpdateTransactionStatus(ctx context.Context, tx *gorm.DB, transactionID uuid.UUID, from, to entity.TransactionStatus) error {
	args := m.Called(ctx, tx, transactionID, from, to)
	return args.Error(0)
}

func (m *MockWalletRepository) UpdateTransactionMetadata(ctx context.Context, tx *gorm.DB, transactionID uuid.UUID, metadata datatypes.JSONMap) error {
	args := m.Called(ctx, tx, transactionID, metadata)
	return args.Error(0)
}

func (m *MockWalletRepository) GetTransactionsByWalletID(ctx context.Context, walletID uuid.UUID, filter TransactionFilter, limit, offset int) ([]*entity.Transaction, error) {
	args := m.Called(ctx, walletID, filter, limit, offset)
	if args.Get(0) != nil {
		return args.Get(0).([]*entity.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockWalletRepository) CountTransactionsByWalletID(ctx context.Context, walletID uuid.UUID, filter TransactionFilter) (int64, error) {
	args := m.Called(ctx, walletID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWalletRepository) SummarizeTransactions(ctx context.Context, from, to *time.Time) ([]entity.TransactionSummary, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) != nil {
		return args.Get(0).([]entity.TransactionSummary), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockWalletRepository) BeginTx(ctx context.Context) *gorm.DB {
	args := m.Called(ctx)
	if args.Get(0) != nil {
		return args.Get(0).(*gorm.DB)
	}
	return nil
}

func walletResult(args mock.Arguments) (*entity.Wallet, error) {
	if args.Get(0) != nil {
		return args.Get(0).(*entity.Wallet), args.Error(1)
	}
	return nil, args.Error(1)
}

func transactionResult(args mock.Arguments) (*entity.Transaction, error) {
	if args.Get(0) != nil {
		return args.Get(0).(*entity.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}
