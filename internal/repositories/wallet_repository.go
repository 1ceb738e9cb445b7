package repositories

import (
	"context"

	"vaultpay/internal/models"
)

// WalletRepository stores wallets and their backing ledger accounts.
type WalletRepository interface {
	// Create persists the wallet together with its backing ASSET ledger
	// account as one unit of work.
	Create(ctx context.Context, wallet *models.Wallet) error
	GetByID(ctx context.Context, id uint) (*models.Wallet, error)
	GetByNumber(ctx context.Context, number string) (*models.Wallet, error)
	GetByUserID(ctx context.Context, userID uint) ([]models.Wallet, error)
	UpdateStatus(ctx context.Context, walletID uint, status string) error
}
