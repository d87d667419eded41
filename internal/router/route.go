package router

import (
	"net/http"
	"time"

	"go-coin-wallet/internal/entity"
	"go-coin-wallet/internal/handler"
	"go-coin-wallet/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Rate limit rule names. Each can be overridden with RATE_LIMIT_<NAME>.
const (
	LimitRegister = "register"
	LimitLogin    = "login"
	LimitDeposit  = "deposit"
	LimitWithdraw = "withdraw"
	LimitPurchase = "purchase"
	LimitAIChat   = "ai_chat"
	LimitSMS      = "sms"
	LimitCallback = "payment_callback"
	LimitAdmin    = "admin_apply"
)

type RouteConfig struct {
	App                 *gin.Engine
	AuthHandler         handler.AuthHandler
	WalletHandler       handler.WalletHandler
	PackageHandler      handler.PackageHandler
	AdminHandler        handler.AdminHandler
	PaymentHandler      handler.PaymentHandler
	AuthMiddleware      *middleware.AuthMiddleware
	RateLimitMiddleware *middleware.RateLimitMiddleware
	GatewayMiddleware   gin.HandlerFunc
	LoggerMiddleware    gin.HandlerFunc
}

func (c *RouteConfig) SetupRoute() {
	c.App.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   "coin-wallet-api",
		})
	})

	if c.LoggerMiddleware != nil {
		c.App.Use(c.LoggerMiddleware)
	}

	limit := c.RateLimitMiddleware.Limit

	v1 := c.App.Group("/api/v1")
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", limit(LimitRegister), c.AuthHandler.Register)
			auth.POST("/login", limit(LimitLogin), c.AuthHandler.Login)
		}

		payments := v1.Group("/payments")
		{
			payments.POST("/callback", limit(LimitCallback), c.GatewayMiddleware, c.PaymentHandler.Callback)
		}

		// Wallet routes
		protected := v1.Group("/wallets")
		protected.Use(c.AuthMiddleware.JWTAuth())
		{
			protected.POST("/", c.WalletHandler.CreateWallet)
			protected.GET("/balance", c.WalletHandler.GetBalance)
			protected.GET("/transactions", c.WalletHandler.GetTransactionHistory)
			protected.POST("/deposit", limit(LimitDeposit), c.WalletHandler.Deposit)
			protected.POST("/withdraw", limit(LimitWithdraw), c.WalletHandler.Withdraw)
			protected.GET("/exchange-rate", c.WalletHandler.GetExchangeRate)

			coins := protected.Group("/coins")
			{
				coins.POST("/purchase", limit(LimitPurchase), c.WalletHandler.PurchaseCoins)
				coins.POST("/use", c.WalletHandler.UseCoins)
				coins.POST("/convert", c.WalletHandler.ConvertCoins)
			}

			protected.POST("/ai-chat/charge", limit(LimitAIChat), c.WalletHandler.ChargeAIChat)
			protected.POST("/sms/use", limit(LimitSMS), c.WalletHandler.UseSMS)

			protected.GET("/coin-packages", c.PackageHandler.ListCoinPackages)
			protected.POST("/coin-packages/:id/buy", limit(LimitPurchase), c.PackageHandler.BuyCoinPackage)
			protected.GET("/sms-packages", c.PackageHandler.ListSMSPackages)
			protected.POST("/sms-packages/:id/buy", limit(LimitPurchase), c.PackageHandler.BuySMSPackage)
		}

		admin := v1.Group("/admin")
		admin.Use(c.AuthMiddleware.JWTAuth(), c.AuthMiddleware.RequireRole(entity.RoleAdmin))
		{
			admin.POST("/transactions", limit(LimitAdmin), c.AdminHandler.ApplyTransaction)
			admin.POST("/transactions/:id/reverse", c.AdminHandler.ReverseTransaction)
			admin.POST("/transactions/:id/cancel", c.AdminHandler.CancelTransaction)
			admin.GET("/transactions/summary", c.AdminHandler.Summary)

			admin.GET("/wallets/:id", c.AdminHandler.GetWallet)
			admin.POST("/wallets/:id/activate", c.AdminHandler.ActivateWallet)
			admin.POST("/wallets/:id/deactivate", c.AdminHandler.DeactivateWallet)

			settings := admin.Group("/coin-settings")
			{
				settings.POST("", c.AdminHandler.CreateCoinSettings)
				settings.GET("", c.AdminHandler.ListCoinSettings)
				settings.GET("/current", c.WalletHandler.GetExchangeRate)
				settings.GET("/:id", c.AdminHandler.GetCoinSettings)
				settings.POST("/:id/default", c.AdminHandler.SetDefaultCoinSettings)
				settings.POST("/:id/activate", c.AdminHandler.ActivateCoinSettings)
				settings.POST("/:id/deactivate", c.AdminHandler.DeactivateCoinSettings)
			}

			admin.POST("/coin-packages", c.PackageHandler.CreateCoinPackage)
			admin.POST("/coin-packages/:id/activate", c.PackageHandler.ActivateCoinPackage)
			admin.POST("/coin-packages/:id/deactivate", c.PackageHandler.DeactivateCoinPackage)
			admin.POST("/sms-packages", c.PackageHandler.CreateSMSPackage)
			admin.POST("/sms-packages/:id/activate", c.PackageHandler.ActivateSMSPackage)
			admin.POST("/sms-packages/:id/deactivate", c.PackageHandler.DeactivateSMSPackage)
		}
	}
}
