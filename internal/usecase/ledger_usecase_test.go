package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go-coin-wallet/internal/entity"
	"go-coin-wallet/internal/usecase"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestApply_CreditAndDebit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	w := env.wallet(t, 0, 0, 0)

	deposit, err := env.ledger.Apply(ctx, usecase.LedgerEntry{
		WalletID:   w.ID,
		Type:       entity.TransactionTypeDeposit,
		Magnitudes: entity.Magnitudes{Rial: rial(10000)},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionStatusCompleted, deposit.Status)
	requireRial(t, 10000, deposit.Amount)

	withdrawal, err := env.ledger.Apply(ctx, usecase.LedgerEntry{
		WalletID:   w.ID,
		Type:       entity.TransactionTypeWithdrawal,
		Magnitudes: entity.Magnitudes{Rial: rial(4000)},
	})
	require.NoError(t, err)
	requireRial(t, -4000, withdrawal.Amount)

	got := env.reload(t, w.ID)
	requireRial(t, 6000, got.Balance)
	assert.Equal(t, w.Version+2, got.Version)
	assert.Equal(t, int64(2), env.transactionCount(t, w.ID))
}

func TestApply_MovesEveryDimension(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	w := env.wallet(t, 1000, 100, 0)

	_, err := env.ledger.Apply(ctx, usecase.LedgerEntry{
		WalletID:   w.ID,
		Type:       entity.TransactionTypeSMSBuying,
		Magnitudes: entity.Magnitudes{Coin: 10, SMS: 100},
	})
	require.NoError(t, err)

	_, err = env.ledger.Apply(ctx, usecase.LedgerEntry{
		WalletID:   w.ID,
		Type:       entity.TransactionTypeConsultationFee,
		Magnitudes: entity.Magnitudes{Rial: rial(500), Coin: 20},
	})
	require.NoError(t, err)

	got := env.reload(t, w.ID)
	requireRial(t, 500, got.Balance)
	assert.Equal(t, int64(70), got.CoinBalance)
	assert.Equal(t, int64(100), got.SMSBalance)
}

func TestApply_InsufficientFundsWritesNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	w := env.wallet(t, 100, 5, 0)

	cases := []usecase.LedgerEntry{
		{WalletID: w.ID, Type: entity.TransactionTypeWithdrawal, Magnitudes: entity.Magnitudes{Rial: rial(500)}},
		{WalletID: w.ID, Type: entity.TransactionTypeCoinUsage, Magnitudes: entity.Magnitudes{Coin: 6}},
		{WalletID: w.ID, Type: entity.TransactionTypeSMSUsage, Magnitudes: entity.Magnitudes{SMS: 1}},
		// the rial side is covered but the coin side is not
		{WalletID: w.ID, Type: entity.TransactionTypePayment, Magnitudes: entity.Magnitudes{Rial: rial(50), Coin: 10}},
	}

	for _, entry := range cases {
		_, err := env.ledger.Apply(ctx, entry)
		assert.ErrorIs(t, err, entity.ErrInsufficientFunds, string(entry.Type))
	}

	got := env.reload(t, w.ID)
	requireRial(t, 100, got.Balance)
	assert.Equal(t, int64(5), got.CoinBalance)
	assert.Equal(t, w.Version, got.Version)
	assert.Zero(t, env.transactionCount(t, w.ID))
}

func TestApply_Rejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	w := env.wallet(t, 1000, 10, 10)

	tests := []struct {
		name  string
		entry usecase.LedgerEntry
		want  error
	}{
		{"unknown type", usecase.LedgerEntry{WalletID: w.ID, Type: "bonus", Magnitudes: entity.Magnitudes{Coin: 1}}, entity.ErrInvalidTransactionType},
		{"unknown wallet", usecase.LedgerEntry{WalletID: uuid.New(), Type: entity.TransactionTypeDeposit, Magnitudes: entity.Magnitudes{Rial: rial(1)}}, entity.ErrWalletNotFound},
		{"zero amount", usecase.LedgerEntry{WalletID: w.ID, Type: entity.TransactionTypeDeposit}, entity.ErrInvalidAmount},
		{"negative amount", usecase.LedgerEntry{WalletID: w.ID, Type: entity.TransactionTypeDeposit, Magnitudes: entity.Magnitudes{Rial: rial(-5)}}, entity.ErrInvalidAmount},
		{"fractional rial", usecase.LedgerEntry{WalletID: w.ID, Type: entity.TransactionTypeDeposit, Magnitudes: entity.Magnitudes{Rial: decimal.RequireFromString("0.5")}}, entity.ErrInvalidAmount},
		{"coins on a rial-only type", usecase.LedgerEntry{WalletID: w.ID, Type: entity.TransactionTypeWithdrawal, Magnitudes: entity.Magnitudes{Rial: rial(1), Coin: 1}}, entity.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.ledger.Apply(ctx, tt.entry)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.Zero(t, env.transactionCount(t, w.ID))
}

func TestApply_InactiveWallet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	w := env.wallet(t, 1000, 0, 0)
	require.NoError(t, env.wallets.SetActive(ctx, w.ID, false))

	_, err := env.ledger.Apply(ctx, usecase.LedgerEntry{
		WalletID:   w.ID,
		Type:       entity.TransactionTypeDeposit,
		Magnitudes: entity.Magnitudes{Rial: rial(100)},
	})
	assert.ErrorIs(t, err, entity.ErrInactiveWallet)

	requireRial(t, 1000, env.reload(t, w.ID).Balance)
	assert.Zero(t, env.transactionCount(t, w.ID))
}

func TestApply_CoinPurchaseSnapshotsActiveRate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	w := env.wallet(t, 5500, 0, 0)
	env.rate(t, 1000)

	purchase, err := env.ledger.Apply(ctx, usecase.LedgerEntry{
		WalletID:   w.ID,
		Type:       entity.TransactionTypeCoinPurchase,
		Magnitudes: entity.Magnitudes{Rial: rial(5500)},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), purchase.CoinAmount)
	require.NotNil(t, purchase.ExchangeRate)
	requireRial(t, 1000, *purchase.ExchangeRate)

	got := env.reload(t, w.ID)
	requireRial(t, 0, got.Balance)
	assert.Equal(t, int64(5), got.CoinBalance)

	// a later rate change leaves the recorded rate alone
	env.rate(t, 2000)
	stored, err := env.wallets.GetTransactionByID(ctx, purchase.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ExchangeRate)
	requireRial(t, 1000, *stored.ExchangeRate)
}

func TestApply_CoinPurchaseExplicitRate(t *testing.T) {
	env := newTestEnv(t)
	w := env.wallet(t, 1000, 0, 0)
	rate := rial(250)

	purchase, err := env.ledger.Apply(context.Background(), usecase.LedgerEntry{
		WalletID:     w.ID,
		Type:         entity.TransactionTypeCoinPurchase,
		Magnitudes:   entity.Magnitudes{Rial: rial(1000)},
		ExchangeRate: &rate,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), purchase.CoinAmount)
}

func TestApply_CoinPurchaseWithoutRate(t *testing.T) {
	env := newTestEnv(t)
	w := env.wallet(t, 5000, 0, 0)

	_, err := env.ledger.Apply(context.Background(), usecase.LedgerEntry{
		WalletID:   w.ID,
		Type:       entity.TransactionTypeCoinPurchase,
		Magnitudes: entity.Magnitudes{Rial: rial(5000)},
	})
	assert.ErrorIs(t, err, entity.ErrNoActiveRateConfigured)
	requireRial(t, 5000, env.reload(t, w.ID).Balance)
	assert.Zero(t, env.transactionCount(t, w.ID))
}

func TestApply_CoinPurchaseBelowOneCoin(t *testing.T) {
	env := newTestEnv(t)
	w := env.wallet(t, 5000, 0, 0)
	env.rate(t, 1000)

	_, err := env.ledger.Apply(context.Background(), usecase.LedgerEntry{
		WalletID:   w.ID,
		Type:       entity.TransactionTypeCoinPurchase,
		Magnitudes: entity.Magnitudes{Rial: rial(999)},
	})
	assert.ErrorIs(t, err, entity.ErrInvalidAmount)
}

func TestApply_ReferenceIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	w := env.wallet(t, 0, 50, 0)

	entry := usecase.LedgerEntry{
		WalletID:    w.ID,
		Type:        entity.TransactionTypeAIChat,
		Magnitudes:  entity.Magnitudes{Coin: 5},
		ReferenceID: "session-1",
	}

	first, err := env.ledger.Apply(ctx, entry)
	require.NoError(t, err)
	second, err := env.ledger.Apply(ctx, entry)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(45), env.reload(t, w.ID).CoinBalance)
	assert.Equal(t, int64(1), env.transactionCount(t, w.ID))

	// the same reference under another type is a separate event
	entry.Type = entity.TransactionTypeCoinUsage
	_, err = env.ledger.Apply(ctx, entry)
	require.NoError(t, err)
	assert.Equal(t, int64(40), env.reload(t, w.ID).CoinBalance)
}

func TestApply_FailedBalanceWriteRollsBack(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	w := env.wallet(t, 1000, 0, 0)

	errBoom := errors.New("boom")
	err := env.db.Callback().Update().Before("gorm:update").Register("test:fail_wallet_update", func(tx *gorm.DB) {
		if tx.Statement.Table == "wallets" {
			_ = tx.AddError(errBoom)
		}
	})
	require.NoError(t, err)

	_, err = env.ledger.Apply(ctx, usecase.LedgerEntry{
		WalletID:   w.ID,
		Type:       entity.TransactionTypeWithdrawal,
		Magnitudes: entity.Magnitudes{Rial: rial(400)},
	})
	assert.ErrorIs(t, err, errBoom)

	requireRial(t, 1000, env.reload(t, w.ID).Balance)
	assert.Zero(t, env.transactionCount(t, w.ID))
}

func TestApply_ConcurrentDebitsNeverOverdraw(t *testing.T) {
	env := newTestEnv(t)
	w := env.wallet(t, 0, 100, 0)

	const workers = 20
	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		succeeded    int
		insufficient int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.ledger.Apply(context.Background(), usecase.LedgerEntry{
				WalletID:   w.ID,
				Type:       entity.TransactionTypeCoinUsage,
				Magnitudes: entity.Magnitudes{Coin: 10},
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, entity.ErrInsufficientFunds):
				insufficient++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	assert.Equal(t, 10, insufficient)
	assert.Zero(t, env.reload(t, w.ID).CoinBalance)
	assert.Equal(t, int64(10), env.transactionCount(t, w.ID))
}

func TestApply_InvalidatesHistoryCacheOfWallet(t *testing.T) {
	env := newTestEnv(t)
	w := env.wallet(t, 0, 0, 0)
	other := env.wallet(t, 0, 0, 0)

	ownKey := "transactions:" + w.ID.String() + ":1:10:all"
	otherKey := "transactions:" + other.ID.String() + ":1:10:all"
	require.NoError(t, env.mr.Set(ownKey, "{}"))
	require.NoError(t, env.mr.Set(otherKey, "{}"))

	_, err := env.ledger.Apply(context.Background(), usecase.LedgerEntry{
		WalletID:   w.ID,
		Type:       entity.TransactionTypeCoinReward,
		Magnitudes: entity.Magnitudes{Coin: 3},
	})
	require.NoError(t, err)

	assert.False(t, env.mr.Exists(ownKey))
	assert.True(t, env.mr.Exists(otherKey))
}

func TestPendingDeposit_ConfirmCompleted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	w := env.wallet(t, 0, 0, 0)

	pending, err := env.ledger.CreatePending(ctx, usecase.LedgerEntry{
		WalletID:   w.ID,
		Type:       entity.TransactionTypeDeposit,
		Magnitudes: entity.Magnitudes{Rial: rial(5000)},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionStatusPending, pending.Status)
	require.NotNil(t, pending.ReferenceID)
	requireRial(t, 0, env.reload(t, w.ID).Balance)

	confirmed, err := env.ledger.Confirm(ctx, *pending.ReferenceID, entity.TransactionStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, pending.ID, confirmed.ID)
	assert.Equal(t, entity.TransactionStatusCompleted, confirmed.Status)
	requireRial(t, 5000, env.reload(t, w.ID).Balance)

	// a second callback for the same payment changes nothing
	_, err = env.ledger.Confirm(ctx, *pending.ReferenceID, entity.TransactionStatusCompleted)
	assert.ErrorIs(t, err, entity.ErrInvalidStateTransition)
	requireRial(t, 5000, env.reload(t, w.ID).Balance)
}

func TestPendingDeposit_ConfirmFailed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	w := env.wallet(t, 0, 0, 0)

	pending, err := env.ledger.CreatePending(ctx, usecase.LedgerEntry{
		WalletID:    w.ID,
		Type:        entity.TransactionTypeDeposit,
		Magnitudes:  entity.Magnitudes{Rial: rial(5000)},
		ReferenceID: "gw-42",
	})
	require.NoError(t, err)
	assert.Equal(t, "gw-42", *pending.ReferenceID)

	failed, err := env.ledger.Confirm(ctx, "gw-42", entity.TransactionStatusFailed)
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionStatusFailed, failed.Status)
	requireRial(t, 0, env.reload(t, w.ID).Balance)

	_, err = env.ledger.Confirm(ctx, "gw-42", entity.TransactionStatusCompleted)
	assert.ErrorIs(t, err, entity.ErrInvalidStateTransition)
}

func TestConfirm_InsufficientFundsLeavesPending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	w := env.wallet(t, 100, 0, 0)

	pending, err := env.ledger.CreatePending(ctx, usecase.LedgerEntry{
		WalletID:   w.ID,
		Type:       entity.TransactionTypeWithdrawal,
		Magnitudes: entity.Magnitudes{Rial: rial(500)},
	})
	require.NoError(t, err)

	_, err = env.ledger.Confirm(ctx, *pending.ReferenceID, entity.TransactionStatusCompleted)
	assert.ErrorIs(t, err, entity.ErrInsufficientFunds)

	stored, err := env.wallets.GetTransactionByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionStatusPending, stored.Status)
	requireRial(t, 100, env.reload(t, w.ID).Balance)
}

func TestConfirm_UnknownReferenceAndOutcome(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.ledger.Confirm(context.Background(), "missing", entity.TransactionStatusCompleted)
	assert.ErrorIs(t, err, entity.ErrTransactionNotFound)

	_, err = env.ledger.Confirm(context.Background(), "missing", entity.TransactionStatusPending)
	assert.ErrorIs(t, err, entity.ErrInvalidStateTransition)
}

func TestConfirm_IgnoresSettledRowsSharingTheReference(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	w := env.wallet(t, 1000, 0, 0)

	pending, err := env.ledger.CreatePending(ctx, usecase.LedgerEntry{
		WalletID:   w.ID,
		Type:       entity.TransactionTypeDeposit,
		Magnitudes: entity.Magnitudes{Rial: rial(5000)},
	})
	require.NoError(t, err)
	ref := *pending.ReferenceID

	// a user-supplied reference may collide with the gateway one
	_, err = env.ledger.Apply(ctx, usecase.LedgerEntry{
		WalletID:    w.ID,
		Type:        entity.TransactionTypeWithdrawal,
		Magnitudes:  entity.Magnitudes{Rial: rial(1)},
		ReferenceID: ref,
	})
	require.NoError(t, err)

	confirmed, err := env.ledger.Confirm(ctx, ref, entity.TransactionStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, pending.ID, confirmed.ID)

	stored, err := env.wallets.GetTransactionByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionStatusCompleted, stored.Status)
	requireRial(t, 5999, env.reload(t, w.ID).Balance)

	_, err = env.ledger.Confirm(ctx, ref, entity.TransactionStatusCompleted)
	assert.ErrorIs(t, err, entity.ErrInvalidStateTransition)
}

func TestCreatePending_ReferenceIsUniqueAcrossWallets(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	first := env.wallet(t, 0, 0, 0)
	second := env.wallet(t, 0, 0, 0)

	entry := usecase.LedgerEntry{
		WalletID:    first.ID,
		Type:        entity.TransactionTypeDeposit,
		Magnitudes:  entity.Magnitudes{Rial: rial(100)},
		ReferenceID: "gw-shared",
	}
	_, err := env.ledger.CreatePending(ctx, entry)
	require.NoError(t, err)

	entry.WalletID = second.ID
	_, err = env.ledger.CreatePending(ctx, entry)
	assert.ErrorIs(t, err, entity.ErrDuplicateReference)
	assert.Equal(t, int64(0), env.transactionCount(t, second.ID))
}

func TestCreatePending_DuplicateReference(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	w := env.wallet(t, 0, 0, 0)

	entry := usecase.LedgerEntry{
		WalletID:    w.ID,
		Type:        entity.TransactionTypeDeposit,
		Magnitudes:  entity.Magnitudes{Rial: rial(100)},
		ReferenceID: "gw-1",
	}
	_, err := env.ledger.CreatePending(ctx, entry)
	require.NoError(t, err)

	_, err = env.ledger.CreatePending(ctx, entry)
	assert.ErrorIs(t, err, entity.ErrDuplicateReference)

	// applying directly under a reference still pending is refused too
	_, err = env.ledger.Apply(ctx, entry)
	assert.ErrorIs(t, err, entity.ErrDuplicateReference)
}

func TestCancel(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	w := env.wallet(t, 0, 0, 0)

	pending, err := env.ledger.CreatePending(ctx, usecase.LedgerEntry{
		WalletID:   w.ID,
		Type:       entity.TransactionTypeDeposit,
		Magnitudes: entity.Magnitudes{Rial: rial(100)},
	})
	require.NoError(t, err)

	canceled, err := env.ledger.Cancel(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionStatusCanceled, canceled.Status)

	_, err = env.ledger.Cancel(ctx, pending.ID)
	assert.ErrorIs(t, err, entity.ErrInvalidStateTransition)

	_, err = env.ledger.Cancel(ctx, uuid.New())
	assert.ErrorIs(t, err, entity.ErrTransactionNotFound)
}

func TestReverse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	w := env.wallet(t, 0, 100, 0)

	usage, err := env.ledger.Apply(ctx, usecase.LedgerEntry{
		WalletID:   w.ID,
		Type:       entity.TransactionTypeCoinUsage,
		Magnitudes: entity.Magnitudes{Coin: 30},
		Metadata:   map[string]interface{}{"case_id": "c-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(70), env.reload(t, w.ID).CoinBalance)

	reversal, err := env.ledger.Reverse(ctx, usage.ID, "")
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionTypeCoinRefund, reversal.Type)
	assert.Equal(t, int64(30), reversal.CoinAmount)
	require.NotNil(t, reversal.ReversalOfID)
	assert.Equal(t, usage.ID, *reversal.ReversalOfID)
	assert.Equal(t, int64(100), env.reload(t, w.ID).CoinBalance)

	original, err := env.wallets.GetTransactionByID(ctx, usage.ID)
	require.NoError(t, err)
	assert.Equal(t, reversal.ID.String(), original.Metadata[entity.MetadataReversedBy])
	assert.Equal(t, "c-1", original.Metadata["case_id"])

	_, err = env.ledger.Reverse(ctx, usage.ID, "")
	assert.ErrorIs(t, err, entity.ErrAlreadyReversed)

	_, err = env.ledger.Reverse(ctx, reversal.ID, "")
	assert.ErrorIs(t, err, entity.ErrInvalidStateTransition)

	assert.Equal(t, int64(100), env.reload(t, w.ID).CoinBalance)
}

func TestReverse_NeedsFundsToUndoCredit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	w := env.wallet(t, 0, 0, 0)

	deposit, err := env.ledger.Apply(ctx, usecase.LedgerEntry{
		WalletID:   w.ID,
		Type:       entity.TransactionTypeDeposit,
		Magnitudes: entity.Magnitudes{Rial: rial(1000)},
	})
	require.NoError(t, err)
	_, err = env.ledger.Apply(ctx, usecase.LedgerEntry{
		WalletID:   w.ID,
		Type:       entity.TransactionTypeWithdrawal,
		Magnitudes: entity.Magnitudes{Rial: rial(800)},
	})
	require.NoError(t, err)

	_, err = env.ledger.Reverse(ctx, deposit.ID, "chargeback")
	assert.ErrorIs(t, err, entity.ErrInsufficientFunds)
	requireRial(t, 200, env.reload(t, w.ID).Balance)
	assert.Equal(t, int64(2), env.transactionCount(t, w.ID))
}

func TestReverse_OnlyCompleted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	w := env.wallet(t, 0, 0, 0)

	pending, err := env.ledger.CreatePending(ctx, usecase.LedgerEntry{
		WalletID:   w.ID,
		Type:       entity.TransactionTypeDeposit,
		Magnitudes: entity.Magnitudes{Rial: rial(100)},
	})
	require.NoError(t, err)

	_, err = env.ledger.Reverse(ctx, pending.ID, "")
	assert.ErrorIs(t, err, entity.ErrInvalidStateTransition)
}

func TestConvertRialToCoin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, _, err := env.ledger.ConvertRialToCoin(ctx, rial(2500), nil)
	assert.ErrorIs(t, err, entity.ErrNoActiveRateConfigured)

	env.rate(t, 1000)
	coins, rate, err := env.ledger.ConvertRialToCoin(ctx, rial(2500), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), coins)
	requireRial(t, 1000, rate)

	explicit := rial(100)
	coins, _, err = env.ledger.ConvertRialToCoin(ctx, rial(2500), &explicit)
	require.NoError(t, err)
	assert.Equal(t, int64(25), coins)

	zero := decimal.Zero
	_, _, err = env.ledger.ConvertRialToCoin(ctx, rial(2500), &zero)
	assert.ErrorIs(t, err, entity.ErrInvalidExchangeRate)
}

func TestActiveRate_FollowsDefault(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first := env.rate(t, 1000)
	active, err := env.ledger.ActiveRate(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, active.ID)

	second := env.rate(t, 1200)
	active, err = env.ledger.ActiveRate(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)
	requireRial(t, 1200, active.ExchangeRate)
}

func TestBalancesEqualSumOfCompletedTransactions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	w := env.wallet(t, 0, 0, 0)
	env.rate(t, 100)

	apply := func(txType entity.TransactionType, m entity.Magnitudes) *entity.Transaction {
		t.Helper()
		transaction, err := env.ledger.Apply(ctx, usecase.LedgerEntry{WalletID: w.ID, Type: txType, Magnitudes: m})
		require.NoError(t, err)
		return transaction
	}

	apply(entity.TransactionTypeDeposit, entity.Magnitudes{Rial: rial(1000)})
	payment := apply(entity.TransactionTypePayment, entity.Magnitudes{Rial: rial(300)})
	apply(entity.TransactionTypeCoinPurchase, entity.Magnitudes{Rial: rial(250)})
	apply(entity.TransactionTypeCoinReward, entity.Magnitudes{Coin: 10})
	apply(entity.TransactionTypeSMSBuying, entity.Magnitudes{Coin: 5, SMS: 50})
	apply(entity.TransactionTypeSMSUsage, entity.Magnitudes{SMS: 7})

	_, err := env.ledger.Reverse(ctx, payment.ID, "")
	require.NoError(t, err)

	_, err = env.ledger.Apply(ctx, usecase.LedgerEntry{WalletID: w.ID, Type: entity.TransactionTypeWithdrawal, Magnitudes: entity.Magnitudes{Rial: rial(5000)}})
	require.ErrorIs(t, err, entity.ErrInsufficientFunds)

	pending, err := env.ledger.CreatePending(ctx, usecase.LedgerEntry{WalletID: w.ID, Type: entity.TransactionTypeDeposit, Magnitudes: entity.Magnitudes{Rial: rial(400)}})
	require.NoError(t, err)
	failed, err := env.ledger.CreatePending(ctx, usecase.LedgerEntry{WalletID: w.ID, Type: entity.TransactionTypeDeposit, Magnitudes: entity.Magnitudes{Rial: rial(900)}})
	require.NoError(t, err)
	_, err = env.ledger.Confirm(ctx, *failed.ReferenceID, entity.TransactionStatusFailed)
	require.NoError(t, err)

	var completed []entity.Transaction
	require.NoError(t, env.db.Where("wallet_id = ? AND status = ?", w.ID, entity.TransactionStatusCompleted).Find(&completed).Error)

	sumRial := decimal.Zero
	var sumCoin, sumSMS int64
	for _, transaction := range completed {
		assert.NotEqual(t, pending.ID, transaction.ID)
		sumRial = sumRial.Add(transaction.Amount)
		sumCoin += transaction.CoinAmount
		sumSMS += transaction.SMSAmount
	}

	got := env.reload(t, w.ID)
	assert.True(t, sumRial.Equal(got.Balance), "rial %s != %s", sumRial, got.Balance)
	assert.Equal(t, sumCoin, got.CoinBalance)
	assert.Equal(t, sumSMS, got.SMSBalance)

	requireRial(t, 750, got.Balance)
	assert.Equal(t, int64(7), got.CoinBalance)
	assert.Equal(t, int64(43), got.SMSBalance)
}
