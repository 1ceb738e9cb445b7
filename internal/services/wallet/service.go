// Package wallet manages wallet lifecycle and lookups. Balances are never
// mutated here; only the posting engine moves money.
package wallet

import (
	"context"
	stderrors "errors"
	"fmt"

	"vaultpay/internal/errors"
	"vaultpay/internal/models"
	"vaultpay/internal/repositories"
	"vaultpay/internal/repositories/cache"
	"vaultpay/internal/utils"

	"github.com/shopspring/decimal"
)

type Service interface {
	CreateWallet(ctx context.Context, userID uint, currency string) (*models.Wallet, error)
	GetWallet(ctx context.Context, walletID uint) (*models.Wallet, error)
	GetWalletByNumber(ctx context.Context, number string) (*models.Wallet, error)
	GetUserWallets(ctx context.Context, userID uint) ([]models.Wallet, error)
	GetBalance(ctx context.Context, walletID uint) (decimal.Decimal, error)
	FreezeWallet(ctx context.Context, walletID uint) error
	UnfreezeWallet(ctx context.Context, walletID uint) error
	CloseWallet(ctx context.Context, walletID uint) error
}

type service struct {
	repo  repositories.WalletRepository
	cache *cache.WalletCache
}

// NewService creates a wallet service. The cache is optional.
func NewService(repo repositories.WalletRepository, walletCache *cache.WalletCache) Service {
	if repo == nil {
		panic("wallet repository is required")
	}
	return &service{repo: repo, cache: walletCache}
}

func (s *service) CreateWallet(ctx context.Context, userID uint, currency string) (*models.Wallet, error) {
	if currency == "" {
		currency = "NGN"
	}

	wallet := &models.Wallet{
		UserID:       userID,
		WalletNumber: utils.GenerateWalletNumber(),
		Currency:     currency,
		Status:       models.WalletStatusActive,
	}
	if err := s.repo.Create(ctx, wallet); err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}
	return wallet, nil
}

func (s *service) GetWallet(ctx context.Context, walletID uint) (*models.Wallet, error) {
	if s.cache != nil {
		if wallet, ok := s.cache.Get(ctx, walletID); ok {
			return wallet, nil
		}
	}

	wallet, err := s.repo.GetByID(ctx, walletID)
	if err != nil {
		if stderrors.Is(err, repositories.ErrWalletNotFound) {
			return nil, errors.ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	if s.cache != nil {
		s.cache.Set(ctx, wallet)
	}
	return wallet, nil
}

func (s *service) GetWalletByNumber(ctx context.Context, number string) (*models.Wallet, error) {
	wallet, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		if stderrors.Is(err, repositories.ErrWalletNotFound) {
			return nil, errors.ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet by number: %w", err)
	}
	return wallet, nil
}

func (s *service) GetUserWallets(ctx context.Context, userID uint) ([]models.Wallet, error) {
	wallets, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallets: %w", err)
	}
	return wallets, nil
}

func (s *service) GetBalance(ctx context.Context, walletID uint) (decimal.Decimal, error) {
	wallet, err := s.GetWallet(ctx, walletID)
	if err != nil {
		return decimal.Zero, err
	}
	return wallet.Balance, nil
}

func (s *service) FreezeWallet(ctx context.Context, walletID uint) error {
	return s.updateStatus(ctx, walletID, models.WalletStatusFrozen)
}

func (s *service) UnfreezeWallet(ctx context.Context, walletID uint) error {
	return s.updateStatus(ctx, walletID, models.WalletStatusActive)
}

func (s *service) CloseWallet(ctx context.Context, walletID uint) error {
	wallet, err := s.GetWallet(ctx, walletID)
	if err != nil {
		return err
	}
	// Closing a wallet with a balance would strand ledger money.
	if !wallet.Balance.IsZero() {
		return errors.ErrWalletNotEmpty
	}
	return s.updateStatus(ctx, walletID, models.WalletStatusClosed)
}

func (s *service) updateStatus(ctx context.Context, walletID uint, status string) error {
	if err := s.repo.UpdateStatus(ctx, walletID, status); err != nil {
		if stderrors.Is(err, repositories.ErrWalletNotFound) {
			return errors.ErrWalletNotFound
		}
		return fmt.Errorf("failed to update wallet status: %w", err)
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, walletID)
	}
	return nil
}
