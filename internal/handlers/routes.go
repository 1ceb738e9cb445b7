package handlers

import (
	"time"

	"vaultpay/internal/config"
	"vaultpay/internal/middleware"
	"vaultpay/internal/repositories"
	"vaultpay/internal/repositories/cache"
	"vaultpay/internal/services/auth"
	"vaultpay/internal/services/ledger"
	"vaultpay/internal/services/paystack"
	"vaultpay/internal/services/transaction"
	"vaultpay/internal/services/user"
	"vaultpay/internal/services/wallet"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes wires repositories, services and handlers and registers every
// route on the app.
func SetupRoutes(app *fiber.App) {
	// Repositories
	userRepo := repositories.NewUserRepository(repositories.DB)
	walletRepo := repositories.NewWalletRepository(repositories.DB)
	ledgerRepo := repositories.NewLedgerRepository(repositories.DB)
	txRepo := repositories.NewTransactionRepository(repositories.DB)

	// Redis-backed helpers
	redisClient := repositories.Cache.Client()
	walletCache := cache.NewWalletCache(repositories.Cache)
	pinAttempts := cache.NewAttemptLimiter(redisClient, "pin", 3, 15*time.Minute)
	loginAttempts := cache.NewAttemptLimiter(redisClient, "login", 5, 15*time.Minute)
	blacklist := cache.NewTokenBlacklist(redisClient)

	// Services
	userService := user.NewService(userRepo, pinAttempts)
	authService := auth.NewService(userRepo, loginAttempts, blacklist)
	walletService := wallet.NewService(walletRepo, walletCache)
	postingService := ledger.NewService(ledgerRepo, ledger.DefaultPostingTimeout)
	gateway := paystack.NewClient(config.GetEnv("PAYSTACK_SECRET_KEY", ""))
	txService := transaction.NewService(
		txRepo, walletRepo, ledgerRepo, userRepo,
		postingService, gateway, userService, walletCache,
	)

	// Handlers
	authHandler := NewAuthHandler(authService, userService, walletService)
	walletHandler := NewWalletHandler(walletService)
	txHandler := NewTransactionHandler(txService, walletService)
	webhookHandler := NewWebhookHandler(txService, gateway)
	authMiddleware := middleware.NewAuthMiddleware(blacklist)

	// Public routes
	app.Get("/health", HealthCheck)

	api := app.Group("/api")
	api.Post("/register", authHandler.Register)
	api.Post("/login", authHandler.Login)
	api.Post("/refresh", authHandler.Refresh)

	// Gateway webhooks authenticate with a signature, not a bearer token.
	api.Post("/webhooks/paystack", webhookHandler.HandlePaystack)

	// Authenticated routes
	protected := api.Use(authMiddleware.Handler)
	protected.Post("/logout", authHandler.Logout)
	protected.Post("/pin", authHandler.SetTransactionPIN)

	wallets := protected.Group("/wallets")
	wallets.Post("/", walletHandler.CreateWallet)
	wallets.Get("/", walletHandler.GetWallets)
	wallets.Get("/:id/balance", walletHandler.GetBalance)
	wallets.Post("/:id/freeze", walletHandler.FreezeWallet)
	wallets.Post("/:id/unfreeze", walletHandler.UnfreezeWallet)
	wallets.Delete("/:id", walletHandler.CloseWallet)
	wallets.Get("/:id/transactions", txHandler.GetHistory)

	protected.Post("/transfers", txHandler.Transfer)
	protected.Post("/fund", txHandler.Fund)
	protected.Post("/withdraw", txHandler.Withdraw)
	protected.Get("/transactions/:reference", txHandler.GetTransaction)
}
