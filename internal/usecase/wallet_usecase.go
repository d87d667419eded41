package usecase

import (
	"context"
	"errors"
	"math"
	"time"

	"go-coin-wallet/internal/commons/response"
	"go-coin-wallet/internal/entity"
	"go-coin-wallet/internal/params"
	"go-coin-wallet/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

type WalletUsecase interface {
	CreateWallet(ctx context.Context, userID uuid.UUID, req *params.CreateWalletRequest) (*params.WalletResponse, bool, *response.CustomError)
	GetWallet(ctx context.Context, walletID uuid.UUID) (*params.WalletResponse, *response.CustomError)
	SetWalletActive(ctx context.Context, walletID uuid.UUID, active bool) (*params.WalletResponse, *response.CustomError)
	GetBalance(ctx context.Context, userID uuid.UUID) (*params.BalanceResponse, *response.CustomError)
	GetTransactionHistory(ctx context.Context, userID uuid.UUID, query *params.TransactionHistoryQuery) (*params.TransactionHistoryResponse, *response.CustomError)
	Deposit(ctx context.Context, userID uuid.UUID, req *params.DepositRequest) (*params.PendingPaymentResponse, *response.CustomError)
	Withdraw(ctx context.Context, userID uuid.UUID, req *params.WithdrawRequest) (*params.TransactionResponse, *response.CustomError)
	PurchaseCoins(ctx context.Context, userID uuid.UUID, req *params.PurchaseCoinsRequest) (*params.TransactionResponse, *response.CustomError)
	UseCoins(ctx context.Context, userID uuid.UUID, req *params.UseCoinsRequest) (*params.TransactionResponse, *response.CustomError)
	ChargeAIChat(ctx context.Context, userID uuid.UUID, req *params.AIChatChargeRequest) (*params.TransactionResponse, *response.CustomError)
	UseSMS(ctx context.Context, userID uuid.UUID, req *params.UseSMSRequest) (*params.TransactionResponse, *response.CustomError)
	ConvertPreview(ctx context.Context, req *params.ConvertRequest) (*params.ConvertResponse, *response.CustomError)
}

type WalletUsecaseImpl struct {
	repo     repository.WalletRepository
	ledger   LedgerUsecase
	settings CoinSettingsUsecase
	logger   *logrus.Logger
	cache    *cache
}

func NewWalletUsecase(repo repository.WalletRepository, ledger LedgerUsecase, settings CoinSettingsUsecase, logger *logrus.Logger, rdb *redis.Client) WalletUsecase {
	return &WalletUsecaseImpl{
		repo:     repo,
		ledger:   ledger,
		settings: settings,
		logger:   logger,
		cache:    newCache(rdb, logger),
	}
}

func (u *WalletUsecaseImpl) CreateWallet(ctx context.Context, userID uuid.UUID, req *params.CreateWalletRequest) (*params.WalletResponse, bool, *response.CustomError) {
	wallet, created, err := u.repo.GetOrCreate(ctx, userID, req.Currency)
	if err != nil {
		u.logger.WithError(err).WithField("user_id", userID).Error("Failed to create wallet")
		return nil, false, response.FromDomainError(err, "failed to create wallet")
	}
	return params.NewWalletResponse(wallet), created, nil
}

func (u *WalletUsecaseImpl) GetWallet(ctx context.Context, walletID uuid.UUID) (*params.WalletResponse, *response.CustomError) {
	wallet, err := u.repo.GetByID(ctx, walletID)
	if err != nil {
		return nil, response.FromDomainError(err, "failed to get wallet")
	}
	return params.NewWalletResponse(wallet), nil
}

func (u *WalletUsecaseImpl) SetWalletActive(ctx context.Context, walletID uuid.UUID, active bool) (*params.WalletResponse, *response.CustomError) {
	if err := u.repo.SetActive(ctx, walletID, active); err != nil {
		return nil, response.FromDomainError(err, "failed to update wallet")
	}

	u.logger.WithFields(logrus.Fields{
		"wallet_id": walletID,
		"is_active": active,
	}).Info("Wallet state changed")

	return u.GetWallet(ctx, walletID)
}

func (u *WalletUsecaseImpl) GetBalance(ctx context.Context, userID uuid.UUID) (*params.BalanceResponse, *response.CustomError) {
	wallet, err := u.repo.GetByUserID(ctx, userID)
	if err != nil {
		u.logger.WithError(err).WithField("user_id", userID).Error("Failed to get wallet")
		return nil, response.FromDomainError(err, "failed to get wallet")
	}

	return &params.BalanceResponse{
		UserID:      wallet.UserID,
		WalletID:    wallet.ID,
		Balance:     wallet.Balance,
		CoinBalance: wallet.CoinBalance,
		SMSBalance:  wallet.SMSBalance,
		Currency:    wallet.Currency,
		Timestamp:   time.Now(),
	}, nil
}

func (u *WalletUsecaseImpl) GetTransactionHistory(ctx context.Context, userID uuid.UUID, query *params.TransactionHistoryQuery) (*params.TransactionHistoryResponse, *response.CustomError) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	page := query.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	filter := repository.TransactionFilter{CoinOnly: query.CoinOnly}
	filterKey := "all"
	if query.Type != "" {
		txType, err := entity.ParseTransactionType(query.Type)
		if err != nil {
			return nil, response.BadRequestError("invalid transaction type")
		}
		filter.Type = txType
		filterKey = string(txType)
	}
	if query.CoinOnly {
		filterKey += "+coins"
	}

	wallet, err := u.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, response.FromDomainError(err, "failed to get wallet")
	}

	cacheKey := historyCacheKey(wallet.ID, page, limit, filterKey)
	var cached params.TransactionHistoryResponse
	if u.cache.get(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	transactions, err := u.repo.GetTransactionsByWalletID(ctx, wallet.ID, filter, limit, offset)
	if err != nil {
		u.logger.WithError(err).Error("Failed to get transaction history")
		return nil, response.RepositoryError("failed to get transaction history")
	}

	total, err := u.repo.CountTransactionsByWalletID(ctx, wallet.ID, filter)
	if err != nil {
		u.logger.WithError(err).Error("Failed to get total transactions")
		return nil, response.RepositoryError("failed to get total transactions")
	}

	transactionResponses := make([]*params.TransactionResponse, len(transactions))
	for i, t := range transactions {
		transactionResponses[i] = params.NewTransactionResponse(t)
	}

	resp := &params.TransactionHistoryResponse{
		Transactions: transactionResponses,
		Total:        total,
		Page:         page,
		Limit:        limit,
		TotalPages:   int(math.Ceil(float64(total) / float64(limit))),
	}

	u.cache.set(ctx, cacheKey, resp, historyCacheTTL)
	return resp, nil
}

// Deposit opens a pending gateway deposit. The balance moves when the gateway
// confirms the returned reference id.
func (u *WalletUsecaseImpl) Deposit(ctx context.Context, userID uuid.UUID, req *params.DepositRequest) (*params.PendingPaymentResponse, *response.CustomError) {
	if !req.Amount.IsPositive() || !req.Amount.Equal(req.Amount.Truncate(0)) {
		return nil, response.BadRequestError("invalid deposit amount")
	}

	wallet, custErr := u.walletFor(ctx, userID)
	if custErr != nil {
		return nil, custErr
	}

	transaction, err := u.ledger.CreatePending(ctx, LedgerEntry{
		WalletID:    wallet.ID,
		Type:        entity.TransactionTypeDeposit,
		Magnitudes:  entity.Magnitudes{Rial: req.Amount},
		Description: req.Description,
		Metadata:    map[string]interface{}{"payment_method": "gateway"},
	})
	if err != nil {
		u.logger.WithError(err).WithField("user_id", userID).Error("Failed to create deposit")
		return nil, response.FromDomainError(err, "failed to create deposit")
	}

	return &params.PendingPaymentResponse{
		TransactionID: transaction.ID,
		ReferenceID:   *transaction.ReferenceID,
		Amount:        transaction.Amount,
		Status:        transaction.Status,
		Timestamp:     transaction.CreatedAt,
	}, nil
}

func (u *WalletUsecaseImpl) Withdraw(ctx context.Context, userID uuid.UUID, req *params.WithdrawRequest) (*params.TransactionResponse, *response.CustomError) {
	if !req.Amount.IsPositive() || !req.Amount.Equal(req.Amount.Truncate(0)) {
		return nil, response.BadRequestError("invalid amount")
	}

	return u.apply(ctx, userID, entity.TransactionTypeWithdrawal, entity.Magnitudes{Rial: req.Amount},
		req.Description, req.ReferenceID, nil, "failed to withdraw")
}

// PurchaseCoins spends rial balance on coins at the active exchange rate.
func (u *WalletUsecaseImpl) PurchaseCoins(ctx context.Context, userID uuid.UUID, req *params.PurchaseCoinsRequest) (*params.TransactionResponse, *response.CustomError) {
	if !req.Amount.IsPositive() || !req.Amount.Equal(req.Amount.Truncate(0)) {
		return nil, response.BadRequestError("invalid amount")
	}

	return u.apply(ctx, userID, entity.TransactionTypeCoinPurchase, entity.Magnitudes{Rial: req.Amount},
		req.Description, req.ReferenceID, nil, "failed to purchase coins")
}

func (u *WalletUsecaseImpl) UseCoins(ctx context.Context, userID uuid.UUID, req *params.UseCoinsRequest) (*params.TransactionResponse, *response.CustomError) {
	return u.apply(ctx, userID, entity.TransactionTypeCoinUsage, entity.Magnitudes{Coin: req.Coins},
		req.Description, req.ReferenceID, nil, "failed to use coins")
}

// ChargeAIChat debits coins for an AI chat session. The session id doubles as the
// reference, so a retried charge for the same session is not billed twice.
func (u *WalletUsecaseImpl) ChargeAIChat(ctx context.Context, userID uuid.UUID, req *params.AIChatChargeRequest) (*params.TransactionResponse, *response.CustomError) {
	description := req.Description
	if description == "" {
		description = "AI chat session"
	}
	return u.apply(ctx, userID, entity.TransactionTypeAIChat, entity.Magnitudes{Coin: req.Coins},
		description, req.SessionID, map[string]interface{}{"session_id": req.SessionID}, "failed to charge ai chat")
}

func (u *WalletUsecaseImpl) UseSMS(ctx context.Context, userID uuid.UUID, req *params.UseSMSRequest) (*params.TransactionResponse, *response.CustomError) {
	return u.apply(ctx, userID, entity.TransactionTypeSMSUsage, entity.Magnitudes{SMS: req.Count},
		req.Description, req.ReferenceID, nil, "failed to use sms credits")
}

func (u *WalletUsecaseImpl) ConvertPreview(ctx context.Context, req *params.ConvertRequest) (*params.ConvertResponse, *response.CustomError) {
	if req.Amount.IsNegative() {
		return nil, response.BadRequestError("invalid amount")
	}

	rate, custErr := u.settings.Current(ctx)
	if custErr != nil {
		return nil, custErr
	}

	coins, err := entity.ConvertRialToCoin(req.Amount, rate.ExchangeRate)
	if err != nil {
		return nil, response.FromDomainError(err, "failed to convert amount")
	}

	return &params.ConvertResponse{
		Amount:       req.Amount,
		Coins:        coins,
		ExchangeRate: rate.ExchangeRate,
	}, nil
}

func (u *WalletUsecaseImpl) walletFor(ctx context.Context, userID uuid.UUID) (*entity.Wallet, *response.CustomError) {
	wallet, err := u.repo.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, entity.ErrWalletNotFound) {
			u.logger.WithError(err).WithField("user_id", userID).Error("Failed to get wallet")
		}
		return nil, response.FromDomainError(err, "failed to get wallet")
	}
	return wallet, nil
}

func (u *WalletUsecaseImpl) apply(ctx context.Context, userID uuid.UUID, txType entity.TransactionType, m entity.Magnitudes, description, referenceID string, metadata map[string]interface{}, failure string) (*params.TransactionResponse, *response.CustomError) {
	wallet, custErr := u.walletFor(ctx, userID)
	if custErr != nil {
		return nil, custErr
	}

	transaction, err := u.ledger.Apply(ctx, LedgerEntry{
		WalletID:    wallet.ID,
		Type:        txType,
		Magnitudes:  m,
		Description: description,
		ReferenceID: referenceID,
		Metadata:    metadata,
	})
	if err != nil {
		u.logger.WithError(err).WithFields(logrus.Fields{
			"user_id": userID,
			"type":    txType,
		}).Warn("Wallet operation rejected")
		return nil, response.FromDomainError(err, failure)
	}

	return params.NewTransactionResponse(transaction), nil
}
