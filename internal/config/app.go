package config

import (
	"go-coin-wallet/internal/handler"
	"go-coin-wallet/internal/middleware"
	"go-coin-wallet/internal/repository"
	"go-coin-wallet/internal/router"
	"go-coin-wallet/internal/usecase"
	"go-coin-wallet/pkg/ratelimit"
	"go-coin-wallet/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type BootstrapConfig struct {
	DB       *gorm.DB
	Redis    *redis.Client
	App      *gin.Engine
	Log      *logrus.Logger
	Validate *validator.Validate
	Config   *Config
}

func Bootstrap(config *BootstrapConfig) {
	cfg := config.Config
	jwtManager := token.NewTokenManager(cfg.JWT.SecretKey, cfg.JWT.ExpirationTime)

	// setup repositories
	walletRepository := repository.NewWalletRepository(config.DB, config.Log)
	userRepository := repository.NewUserRepository(config.DB, config.Log)
	settingsRepository := repository.NewCoinSettingsRepository(config.DB, config.Log)
	packageRepository := repository.NewPackageRepository(config.DB, config.Log)

	// setup use cases
	ledgerUsecase := usecase.NewLedgerUsecase(walletRepository, settingsRepository, config.Log, config.Redis)
	settingsUsecase := usecase.NewCoinSettingsUsecase(settingsRepository, config.Log, config.Redis, cfg.Wallet.RateCacheTTL)
	walletUsecase := usecase.NewWalletUsecase(walletRepository, ledgerUsecase, settingsUsecase, config.Log, config.Redis)
	packageUsecase := usecase.NewPackageUsecase(packageRepository, walletRepository, ledgerUsecase, config.Log)
	reportUsecase := usecase.NewReportUsecase(walletRepository, config.Log)
	authUsecase := usecase.NewAuthUsecase(userRepository, walletRepository, ledgerUsecase, config.Log, jwtManager, usecase.WelcomeCoins{
		Lawyer: cfg.Wallet.WelcomeCoinsLawyer,
		User:   cfg.Wallet.WelcomeCoinsUser,
	})

	// setup handlers
	walletHandler := handler.NewWalletHandler(walletUsecase, settingsUsecase, config.Log, config.Validate)
	authHandler := handler.NewAuthHandler(authUsecase, config.Log, config.Validate)
	packageHandler := handler.NewPackageHandler(packageUsecase, config.Log, config.Validate)
	adminHandler := handler.NewAdminHandler(ledgerUsecase, walletUsecase, settingsUsecase, reportUsecase, config.Log, config.Validate)
	paymentHandler := handler.NewPaymentHandler(ledgerUsecase, config.Log, config.Validate)

	// setup middleware
	authMiddleware := middleware.NewAuthMiddleware(config.Log, jwtManager)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(ratelimit.NewLimiter(config.Redis), cfg.RateLimit, config.Log)

	routeConfig := router.RouteConfig{
		App:                 config.App,
		WalletHandler:       walletHandler,
		AuthHandler:         authHandler,
		PackageHandler:      packageHandler,
		AdminHandler:        adminHandler,
		PaymentHandler:      paymentHandler,
		AuthMiddleware:      authMiddleware,
		RateLimitMiddleware: rateLimitMiddleware,
		GatewayMiddleware:   middleware.GatewaySecret(cfg.Payment.GatewaySecret, config.Log),
		LoggerMiddleware:    middleware.LoggerMiddleware(config.Log),
	}
	routeConfig.SetupRoute()
}
