package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"go-coin-wallet/internal/config"
	"go-coin-wallet/internal/entity"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestApp(t *testing.T) (*app, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "walletctl.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&entity.User{}, &entity.Wallet{}, &entity.Transaction{}))

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return &app{
		logger: log,
		open:   func(*config.DatabaseConfig) (*gorm.DB, error) { return db, nil },
	}, db
}

func run(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommandWith(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--db-host", "localhost", "--db-name", "wallet"))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func findUser(t *testing.T, db *gorm.DB, email string) entity.User {
	t.Helper()
	var user entity.User
	require.NoError(t, db.Where("email = ?", email).First(&user).Error)
	return user
}

func TestCreateAdmin_NewAccount(t *testing.T) {
	a, db := newTestApp(t)

	out, err := run(t, a, "create-admin", "ops@example.com", "--password", "secret123", "--name", "Ops Team")
	require.NoError(t, err)
	assert.Contains(t, out, "created admin ops@example.com")

	user := findUser(t, db, "ops@example.com")
	assert.Equal(t, entity.RoleAdmin, user.Role)
	assert.Equal(t, "Ops Team", user.Name)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret123")))

	var wallets int64
	require.NoError(t, db.Model(&entity.Wallet{}).Where("user_id = ?", user.ID).Count(&wallets).Error)
	assert.Equal(t, int64(1), wallets)

	var rewards int64
	require.NoError(t, db.Model(&entity.Transaction{}).Count(&rewards).Error)
	assert.Zero(t, rewards)
}

func TestCreateAdmin_PromotesExistingUser(t *testing.T) {
	a, db := newTestApp(t)

	hashed, err := bcrypt.GenerateFromPassword([]byte("original"), bcrypt.MinCost)
	require.NoError(t, err)
	existing := &entity.User{Name: "Lawyer One", Email: "lawyer@example.com", Password: string(hashed), Role: entity.RoleLawyer}
	require.NoError(t, db.Create(existing).Error)

	out, err := run(t, a, "create-admin", "lawyer@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "promoted admin lawyer@example.com")

	user := findUser(t, db, "lawyer@example.com")
	assert.Equal(t, existing.ID, user.ID)
	assert.Equal(t, entity.RoleAdmin, user.Role)
	assert.Equal(t, "Lawyer One", user.Name)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("original")))
}

func TestCreateAdmin_PasswordFromEnvironment(t *testing.T) {
	a, db := newTestApp(t)
	t.Setenv(adminPasswordEnv, "from-env-1")

	_, err := run(t, a, "create-admin", "env@example.com")
	require.NoError(t, err)

	user := findUser(t, db, "env@example.com")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("from-env-1")))
}

func TestCreateAdmin_Rejections(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "new account without password", args: []string{"create-admin", "nobody@example.com"}},
		{name: "bad email", args: []string{"create-admin", "not-an-email", "--password", "secret123"}},
		{name: "short password", args: []string{"create-admin", "short@example.com", "--password", "123"}},
		{name: "missing email", args: []string{"create-admin"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(adminPasswordEnv, "")
			a, db := newTestApp(t)

			_, err := run(t, a, tt.args...)
			assert.Error(t, err)

			var users int64
			require.NoError(t, db.Model(&entity.User{}).Count(&users).Error)
			assert.Zero(t, users)
		})
	}
}
