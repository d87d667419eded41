package main

import (
	"fmt"

	"go-coin-wallet/internal/config"
	"go-coin-wallet/internal/params"
	"go-coin-wallet/internal/repository"
	"go-coin-wallet/internal/usecase"
	"go-coin-wallet/pkg/database"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newMigrateCommand(a *app) *cobra.Command {
	var (
		source string
		down   int
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if down > 0 {
				return database.RollbackMigrations(&a.db, source, down, a.logger)
			}
			return database.RunMigrations(&a.db, source, a.logger)
		},
	}

	cmd.Flags().StringVar(&source, "source", database.DefaultMigrationsSource, "migrations source url")
	cmd.Flags().IntVar(&down, "down", 0, "roll back this many migrations instead of applying")
	return cmd
}

func newSeedPackagesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-packages",
		Short: "Create or refresh the default coin and SMS packages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.open(&a.db)
			if err != nil {
				return err
			}

			packages := usecase.NewPackageUsecase(
				repository.NewPackageRepository(db, a.logger),
				repository.NewWalletRepository(db, a.logger),
				nil,
				a.logger,
			)
			result, err := packages.SeedDefaults(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created %d, updated %d packages\n", result.Created, result.Updated)
			return nil
		},
	}
}

func newSetRateCommand(a *app) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "set-rate <rial-per-coin>",
		Short: "Record a new exchange rate and make it the default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rate, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("invalid rate %q: %w", args[0], err)
			}

			db, err := a.open(&a.db)
			if err != nil {
				return err
			}

			// Without redis the server's rate cache expires on its own TTL.
			settings := usecase.NewCoinSettingsUsecase(repository.NewCoinSettingsRepository(db, a.logger), a.logger, nil, 0)
			resp, custErr := settings.Create(cmd.Context(), &params.CoinSettingsRequest{
				ExchangeRate: rate,
				Description:  description,
				IsDefault:    true,
			})
			if custErr != nil {
				return custErr
			}

			fmt.Fprintf(cmd.OutOrStdout(), "default rate is now %s rial per coin (%s)\n", resp.ExchangeRate, resp.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "note stored with the rate")
	return cmd
}

const adminPasswordEnv = "WALLET_ADMIN_PASSWORD"

func newCreateAdminCommand(a *app) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "create-admin <email>",
		Short: "Create an admin account or promote an existing user",
		Long: "Create an admin account or promote an existing user.\n" +
			"The password is read from --password or " + adminPasswordEnv + " and may be\n" +
			"omitted when promoting.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			if err := v.BindEnv("password", adminPasswordEnv); err != nil {
				return err
			}
			if err := v.BindPFlag("password", cmd.Flags().Lookup("password")); err != nil {
				return err
			}

			req := &params.AdminAccountRequest{
				Name:     name,
				Email:    args[0],
				Password: v.GetString("password"),
			}
			if err := config.NewValidator().Struct(req); err != nil {
				return fmt.Errorf("invalid admin account: %w", err)
			}

			db, err := a.open(&a.db)
			if err != nil {
				return err
			}

			// Provisioning issues no token and grants no reward.
			auth := usecase.NewAuthUsecase(
				repository.NewUserRepository(db, a.logger),
				repository.NewWalletRepository(db, a.logger),
				nil,
				a.logger,
				nil,
				usecase.WelcomeCoins{},
			)
			user, created, custErr := auth.ProvisionAdmin(cmd.Context(), req)
			if custErr != nil {
				return custErr
			}

			verb := "promoted"
			if created {
				verb = "created"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s admin %s (%s)\n", verb, user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().String("password", "", "password for the account")
	return cmd
}
