package main

import (
	"fmt"
	"os"
	"strings"

	"go-coin-wallet/internal/config"
	"go-coin-wallet/pkg/database"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

const (
	flagDBHost     = "db-host"
	flagDBPort     = "db-port"
	flagDBUser     = "db-user"
	flagDBPassword = "db-password"
	flagDBName     = "db-name"
	flagDBSSLMode  = "db-ssl-mode"
)

// databaseKeys maps each flag to the environment variable the server reads.
var databaseKeys = map[string]string{
	flagDBHost:     "DB_HOST",
	flagDBPort:     "DB_PORT",
	flagDBUser:     "DB_USER",
	flagDBPassword: "DB_PASSWORD",
	flagDBName:     "DB_NAME",
	flagDBSSLMode:  "DB_SSL_MODE",
}

type app struct {
	logger *logrus.Logger
	db     config.DatabaseConfig
	open   func(cfg *config.DatabaseConfig) (*gorm.DB, error)
}

func main() {
	_ = godotenv.Load()

	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "walletctl: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	return newRootCommandWith(&app{logger: config.NewLogger(), open: database.NewPostgresConnection})
}

func newRootCommandWith(a *app) *cobra.Command {
	defaults := config.LoadConfig().Database

	cmd := &cobra.Command{
		Use:           "walletctl",
		Short:         "Operator commands for the coin wallet",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.String(flagDBHost, defaults.Host, "database host")
	flags.String(flagDBPort, defaults.Port, "database port")
	flags.String(flagDBUser, defaults.User, "database user")
	flags.String(flagDBPassword, defaults.Password, "database password")
	flags.String(flagDBName, defaults.DBName, "database name")
	flags.String(flagDBSSLMode, defaults.SSLMode, "database sslmode")

	cmd.AddCommand(
		newMigrateCommand(a),
		newSeedPackagesCommand(a),
		newSetRateCommand(a),
		newCreateAdminCommand(a),
	)
	return cmd
}

func (a *app) loadConfig(cmd *cobra.Command) error {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for flag, env := range databaseKeys {
		if err := v.BindEnv(flag, env); err != nil {
			return err
		}
		if err := v.BindPFlag(flag, cmd.Flags().Lookup(flag)); err != nil {
			return err
		}
	}

	a.db = config.DatabaseConfig{
		Host:     v.GetString(flagDBHost),
		Port:     v.GetString(flagDBPort),
		User:     v.GetString(flagDBUser),
		Password: v.GetString(flagDBPassword),
		DBName:   v.GetString(flagDBName),
		SSLMode:  v.GetString(flagDBSSLMode),
	}
	if a.db.Host == "" || a.db.DBName == "" {
		return fmt.Errorf("database host and name are required")
	}
	return nil
}
