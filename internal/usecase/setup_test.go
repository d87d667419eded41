package usecase_test

import (
	"context"
	"path/filepath"
	"testing"

	"go-coin-wallet/internal/entity"
	"go-coin-wallet/internal/repository"
	"go-coin-wallet/internal/usecase"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv is a ledger over a throwaway SQLite file and an in-memory redis.
type testEnv struct {
	db       *gorm.DB
	mr       *miniredis.Miniredis
	rdb      *redis.Client
	logger   *logrus.Logger
	wallets  repository.WalletRepository
	settings repository.CoinSettingsRepository
	packages repository.PackageRepository
	users    repository.UserRepository
	ledger   usecase.LedgerUsecase
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "wallet.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection serializes units of work the way row locks do on postgres
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&entity.User{},
		&entity.Wallet{},
		&entity.Transaction{},
		&entity.CoinSettings{},
		&entity.CoinPackage{},
		&entity.SMSPackage{},
	))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	log := quietLogger()
	db := newTestDB(t)

	env := &testEnv{
		db:       db,
		mr:       mr,
		rdb:      rdb,
		logger:   log,
		wallets:  repository.NewWalletRepository(db, log),
		settings: repository.NewCoinSettingsRepository(db, log),
		packages: repository.NewPackageRepository(db, log),
		users:    repository.NewUserRepository(db, log),
	}
	env.ledger = usecase.NewLedgerUsecase(env.wallets, env.settings, log, rdb)
	return env
}

// wallet stores a wallet for a fresh user holding the given balances.
func (e *testEnv) wallet(t *testing.T, rial, coins, sms int64) *entity.Wallet {
	t.Helper()
	w := entity.NewWallet(uuid.New(), "")
	w.Balance = decimal.NewFromInt(rial)
	w.CoinBalance = coins
	w.SMSBalance = sms
	require.NoError(t, e.wallets.Create(context.Background(), w))
	return w
}

func (e *testEnv) reload(t *testing.T, walletID uuid.UUID) *entity.Wallet {
	t.Helper()
	w, err := e.wallets.GetByID(context.Background(), walletID)
	require.NoError(t, err)
	return w
}

// rate stores an active default exchange rate.
func (e *testEnv) rate(t *testing.T, rialPerCoin int64) *entity.CoinSettings {
	t.Helper()
	s := &entity.CoinSettings{ExchangeRate: decimal.NewFromInt(rialPerCoin), IsActive: true, IsDefault: true}
	require.NoError(t, e.settings.Create(context.Background(), s))
	return s
}

func (e *testEnv) transactionCount(t *testing.T, walletID uuid.UUID) int64 {
	t.Helper()
	n, err := e.wallets.CountTransactionsByWalletID(context.Background(), walletID, repository.TransactionFilter{})
	require.NoError(t, err)
	return n
}

func requireRial(t *testing.T, expected int64, actual decimal.Decimal) {
	t.Helper()
	require.Truef(t, decimal.NewFromInt(expected).Equal(actual), "expected %d rial, got %s", expected, actual)
}

func rial(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}
