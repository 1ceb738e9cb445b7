package cache

import (
	"context"
	"fmt"
	"time"

	"vaultpay/internal/models"
)

const walletCacheTTL = 5 * time.Minute

// WalletCache is a cache-aside snapshot of wallet rows. Entries are
// invalidated, never updated in place, after every posting that touches
// the wallet.
type WalletCache struct {
	cache *Service
}

func NewWalletCache(cache *Service) *WalletCache {
	return &WalletCache{cache: cache}
}

func walletKey(walletID uint) string {
	return fmt.Sprintf("wallet:id:%d", walletID)
}

func (c *WalletCache) Get(ctx context.Context, walletID uint) (*models.Wallet, bool) {
	var wallet models.Wallet
	found, err := c.cache.Get(ctx, walletKey(walletID), &wallet)
	if err != nil || !found {
		return nil, false
	}
	return &wallet, true
}

func (c *WalletCache) Set(ctx context.Context, wallet *models.Wallet) {
	// Cache errors only cost a re-read.
	_ = c.cache.SetWithTTL(ctx, walletKey(wallet.ID), wallet, walletCacheTTL)
}

func (c *WalletCache) Invalidate(ctx context.Context, walletIDs ...uint) {
	keys := make([]string, 0, len(walletIDs))
	for _, id := range walletIDs {
		keys = append(keys, walletKey(id))
	}
	_ = c.cache.Delete(ctx, keys...)
}
