package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"go-coin-wallet/internal/entity"
	"go-coin-wallet/internal/params"
	"go-coin-wallet/internal/repository"
	"go-coin-wallet/internal/usecase"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupTest(t *testing.T) (*repository.MockWalletRepository, *miniredis.Miniredis, usecase.WalletUsecase) {
	mockRepo := new(repository.MockWalletRepository)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	logger := quietLogger()
	ledger := usecase.NewLedgerUsecase(mockRepo, nil, logger, rdb)
	wu := usecase.NewWalletUsecase(mockRepo, ledger, nil, logger, rdb)

	return mockRepo, mr, wu
}

func TestCreateWallet_Created(t *testing.T) {
	mockRepo, _, uc := setupTest(t)

	userID := uuid.New()
	wallet := entity.NewWallet(userID, "IRR")
	mockRepo.On("GetOrCreate", mock.Anything, userID, "").Return(wallet, true, nil)

	resp, created, err := uc.CreateWallet(context.Background(), userID, &params.CreateWalletRequest{})

	assert.Nil(t, err)
	assert.True(t, created)
	assert.Equal(t, userID, resp.UserID)
	assert.Equal(t, "IRR", resp.Currency)

	mockRepo.AssertExpectations(t)
}

func TestCreateWallet_Existing(t *testing.T) {
	mockRepo, _, uc := setupTest(t)

	userID := uuid.New()
	wallet := entity.NewWallet(userID, "IRR")
	wallet.CoinBalance = 42
	mockRepo.On("GetOrCreate", mock.Anything, userID, "IRR").Return(wallet, false, nil)

	resp, created, err := uc.CreateWallet(context.Background(), userID, &params.CreateWalletRequest{Currency: "IRR"})

	assert.Nil(t, err)
	assert.False(t, created)
	assert.Equal(t, wallet.ID, resp.ID)

	mockRepo.AssertExpectations(t)
}

func TestCreateWallet_Fail(t *testing.T) {
	mockRepo, _, uc := setupTest(t)

	userID := uuid.New()
	mockRepo.On("GetOrCreate", mock.Anything, userID, "").Return(nil, false, errors.New("db error"))

	resp, _, err := uc.CreateWallet(context.Background(), userID, &params.CreateWalletRequest{})

	assert.Nil(t, resp)
	require.NotNil(t, err)
	assert.Equal(t, "failed to create wallet", err.Message)
	assert.Equal(t, http.StatusServiceUnavailable, err.StatusCode)

	mockRepo.AssertExpectations(t)
}

func TestGetBalance_Success(t *testing.T) {
	mockRepo, _, uc := setupTest(t)

	userID := uuid.New()
	mockWallet := &entity.Wallet{
		ID:          uuid.New(),
		UserID:      userID,
		Balance:     decimal.NewFromInt(10000),
		CoinBalance: 12,
		SMSBalance:  300,
		Currency:    "IRR",
	}

	mockRepo.On("GetByUserID", mock.Anything, userID).Return(mockWallet, nil)

	resp, err := uc.GetBalance(context.Background(), userID)

	assert.Nil(t, err)
	require.NotNil(t, resp)
	requireRial(t, 10000, resp.Balance)
	assert.Equal(t, int64(12), resp.CoinBalance)
	assert.Equal(t, int64(300), resp.SMSBalance)
	assert.Equal(t, "IRR", resp.Currency)

	mockRepo.AssertExpectations(t)
}

func TestGetBalance_NotFound(t *testing.T) {
	mockRepo, _, uc := setupTest(t)

	userID := uuid.New()
	mockRepo.On("GetByUserID", mock.Anything, userID).Return(nil, entity.ErrWalletNotFound)

	resp, err := uc.GetBalance(context.Background(), userID)

	assert.Nil(t, resp)
	require.NotNil(t, err)
	assert.Equal(t, "wallet not found", err.Message)
	assert.Equal(t, http.StatusNotFound, err.StatusCode)

	mockRepo.AssertExpectations(t)
}

func TestGetBalance_RepositoryError(t *testing.T) {
	mockRepo, _, uc := setupTest(t)

	userID := uuid.New()
	expectedErr := errors.New("database is down")

	mockRepo.On("GetByUserID", mock.Anything, userID).Return(nil, expectedErr)

	balance, customErr := uc.GetBalance(context.Background(), userID)

	assert.Nil(t, balance)
	require.NotNil(t, customErr)
	assert.Equal(t, "failed to get wallet", customErr.Message)

	mockRepo.AssertExpectations(t)
}

func TestGetTransactionHistory_CachesPage(t *testing.T) {
	mockRepo, mr, uc := setupTest(t)

	userID := uuid.New()
	wallet := entity.NewWallet(userID, "")
	transactions := []*entity.Transaction{
		{ID: uuid.New(), WalletID: wallet.ID, Type: entity.TransactionTypeCoinReward, CoinAmount: 10, Status: entity.TransactionStatusCompleted},
	}

	mockRepo.On("GetByUserID", mock.Anything, userID).Return(wallet, nil)
	mockRepo.On("GetTransactionsByWalletID", mock.Anything, wallet.ID, repository.TransactionFilter{}, 10, 0).Return(transactions, nil).Once()
	mockRepo.On("CountTransactionsByWalletID", mock.Anything, wallet.ID, repository.TransactionFilter{}).Return(int64(1), nil).Once()

	query := &params.TransactionHistoryQuery{}
	first, err := uc.GetTransactionHistory(context.Background(), userID, query)
	require.Nil(t, err)
	assert.Equal(t, int64(1), first.Total)
	assert.Equal(t, 1, first.TotalPages)
	assert.True(t, mr.Exists("transactions:"+wallet.ID.String()+":1:10:all"))

	second, err := uc.GetTransactionHistory(context.Background(), userID, query)
	require.Nil(t, err)
	require.Len(t, second.Transactions, 1)
	assert.Equal(t, transactions[0].ID, second.Transactions[0].ID)

	mockRepo.AssertNumberOfCalls(t, "GetTransactionsByWalletID", 1)
	mockRepo.AssertExpectations(t)
}

func TestGetTransactionHistory_FilterAndLimit(t *testing.T) {
	mockRepo, _, uc := setupTest(t)

	userID := uuid.New()
	wallet := entity.NewWallet(userID, "")
	filter := repository.TransactionFilter{Type: entity.TransactionTypeAIChat, CoinOnly: true}

	mockRepo.On("GetByUserID", mock.Anything, userID).Return(wallet, nil)
	mockRepo.On("GetTransactionsByWalletID", mock.Anything, wallet.ID, filter, 100, 100).Return([]*entity.Transaction{}, nil)
	mockRepo.On("CountTransactionsByWalletID", mock.Anything, wallet.ID, filter).Return(int64(150), nil)

	resp, err := uc.GetTransactionHistory(context.Background(), userID, &params.TransactionHistoryQuery{
		Page:     2,
		Limit:    500,
		Type:     "ai_chat",
		CoinOnly: true,
	})
	require.Nil(t, err)
	assert.Equal(t, 100, resp.Limit)
	assert.Equal(t, 2, resp.TotalPages)

	mockRepo.AssertExpectations(t)
}

func TestGetTransactionHistory_InvalidType(t *testing.T) {
	mockRepo, _, uc := setupTest(t)

	resp, err := uc.GetTransactionHistory(context.Background(), uuid.New(), &params.TransactionHistoryQuery{Type: "lottery"})

	assert.Nil(t, resp)
	require.NotNil(t, err)
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	mockRepo.AssertNotCalled(t, "GetByUserID", mock.Anything, mock.Anything)
}

func TestWithdraw_RejectsBadAmounts(t *testing.T) {
	mockRepo, _, uc := setupTest(t)

	for _, amount := range []string{"0", "-10", "10.5"} {
		resp, err := uc.Withdraw(context.Background(), uuid.New(), &params.WithdrawRequest{Amount: decimal.RequireFromString(amount)})
		assert.Nil(t, resp)
		require.NotNil(t, err, amount)
		assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	}
	mockRepo.AssertNotCalled(t, "GetByUserID", mock.Anything, mock.Anything)
}

// The flows below run against the real ledger.

func newWalletUsecase(env *testEnv) usecase.WalletUsecase {
	settings := usecase.NewCoinSettingsUsecase(env.settings, env.logger, env.rdb, 0)
	return usecase.NewWalletUsecase(env.wallets, env.ledger, settings, env.logger, env.rdb)
}

func TestDepositThenWithdraw(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	uc := newWalletUsecase(env)
	w := env.wallet(t, 0, 0, 0)

	deposit, custErr := uc.Deposit(ctx, w.UserID, &params.DepositRequest{Amount: rial(20000)})
	require.Nil(t, custErr)
	assert.Equal(t, entity.TransactionStatusPending, deposit.Status)
	assert.NotEmpty(t, deposit.ReferenceID)

	_, custErr = uc.Withdraw(ctx, w.UserID, &params.WithdrawRequest{Amount: rial(5000)})
	require.NotNil(t, custErr)
	assert.Equal(t, "insufficient balance", custErr.Message)

	_, err := env.ledger.Confirm(ctx, deposit.ReferenceID, entity.TransactionStatusCompleted)
	require.NoError(t, err)

	withdrawal, custErr := uc.Withdraw(ctx, w.UserID, &params.WithdrawRequest{Amount: rial(5000)})
	require.Nil(t, custErr)
	requireRial(t, -5000, withdrawal.Amount)

	balance, custErr := uc.GetBalance(ctx, w.UserID)
	require.Nil(t, custErr)
	requireRial(t, 15000, balance.Balance)
}

func TestCoinFlows(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	uc := newWalletUsecase(env)
	w := env.wallet(t, 10000, 0, 0)
	env.rate(t, 1000)

	purchase, custErr := uc.PurchaseCoins(ctx, w.UserID, &params.PurchaseCoinsRequest{Amount: rial(10000)})
	require.Nil(t, custErr)
	assert.Equal(t, int64(10), purchase.CoinAmount)

	_, custErr = uc.UseCoins(ctx, w.UserID, &params.UseCoinsRequest{Coins: 3})
	require.Nil(t, custErr)

	charge := &params.AIChatChargeRequest{Coins: 2, SessionID: "chat-7"}
	first, custErr := uc.ChargeAIChat(ctx, w.UserID, charge)
	require.Nil(t, custErr)
	second, custErr := uc.ChargeAIChat(ctx, w.UserID, charge)
	require.Nil(t, custErr)
	assert.Equal(t, first.ID, second.ID)

	_, custErr = uc.UseSMS(ctx, w.UserID, &params.UseSMSRequest{Count: 1})
	require.NotNil(t, custErr)
	assert.Equal(t, http.StatusBadRequest, custErr.StatusCode)

	got := env.reload(t, w.ID)
	requireRial(t, 0, got.Balance)
	assert.Equal(t, int64(5), got.CoinBalance)
}

func TestHistoryReflectsNewTransactions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	uc := newWalletUsecase(env)
	w := env.wallet(t, 0, 10, 0)

	before, custErr := uc.GetTransactionHistory(ctx, w.UserID, &params.TransactionHistoryQuery{})
	require.Nil(t, custErr)
	assert.Zero(t, before.Total)

	_, custErr = uc.UseCoins(ctx, w.UserID, &params.UseCoinsRequest{Coins: 4})
	require.Nil(t, custErr)

	after, custErr := uc.GetTransactionHistory(ctx, w.UserID, &params.TransactionHistoryQuery{})
	require.Nil(t, custErr)
	assert.Equal(t, int64(1), after.Total)
}

func TestConvertPreview(t *testing.T) {
	env := newTestEnv(t)
	uc := newWalletUsecase(env)

	_, custErr := uc.ConvertPreview(context.Background(), &params.ConvertRequest{Amount: rial(2500)})
	require.NotNil(t, custErr)
	assert.Equal(t, http.StatusInternalServerError, custErr.StatusCode)

	env.rate(t, 1000)
	resp, custErr := uc.ConvertPreview(context.Background(), &params.ConvertRequest{Amount: rial(2500)})
	require.Nil(t, custErr)
	assert.Equal(t, int64(2), resp.Coins)
	requireRial(t, 1000, resp.ExchangeRate)
}

func TestSetWalletActive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	uc := newWalletUsecase(env)
	w := env.wallet(t, 100, 0, 0)

	resp, custErr := uc.SetWalletActive(ctx, w.ID, false)
	require.Nil(t, custErr)
	assert.False(t, resp.IsActive)

	_, custErr = uc.Withdraw(ctx, w.UserID, &params.WithdrawRequest{Amount: rial(10)})
	require.NotNil(t, custErr)
	assert.Equal(t, http.StatusForbidden, custErr.StatusCode)

	_, custErr = uc.SetWalletActive(ctx, uuid.New(), true)
	require.NotNil(t, custErr)
	assert.Equal(t, http.StatusNotFound, custErr.StatusCode)
}
