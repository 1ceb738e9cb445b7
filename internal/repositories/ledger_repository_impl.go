package repositories

import (
	"context"
	"errors"
	"fmt"

	"vaultpay/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) GetAccount(ctx context.Context, id uint) (*models.LedgerAccount, error) {
	var account models.LedgerAccount
	if err := r.db.WithContext(ctx).First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get ledger account: %w", err)
	}
	return &account, nil
}

func (r *ledgerRepository) GetAccountForUpdate(ctx context.Context, id uint) (*models.LedgerAccount, error) {
	var account models.LedgerAccount
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&account, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to lock ledger account: %w", err)
	}
	return &account, nil
}

func (r *ledgerRepository) GetAccountByWalletID(ctx context.Context, walletID uint) (*models.LedgerAccount, error) {
	var account models.LedgerAccount
	err := r.db.WithContext(ctx).Where("wallet_id = ?", walletID).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get ledger account for wallet %d: %w", walletID, err)
	}
	return &account, nil
}

func (r *ledgerRepository) GetOrCreateSystemAccount(ctx context.Context, name, accountType string) (*models.LedgerAccount, error) {
	var account models.LedgerAccount
	err := r.db.WithContext(ctx).
		Where("account_name = ? AND wallet_id IS NULL", name).
		First(&account).Error
	if err == nil {
		return &account, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get system account %q: %w", name, err)
	}

	account = models.LedgerAccount{
		AccountName: name,
		AccountType: accountType,
		Balance:     decimal.Zero,
	}
	// Concurrent first use of the same system account loses the insert
	// race; re-read in that case.
	if err := r.db.WithContext(ctx).Create(&account).Error; err != nil {
		if lookupErr := r.db.WithContext(ctx).
			Where("account_name = ? AND wallet_id IS NULL", name).
			First(&account).Error; lookupErr == nil {
			return &account, nil
		}
		return nil, fmt.Errorf("failed to create system account %q: %w", name, err)
	}
	return &account, nil
}

func (r *ledgerRepository) CreateAccount(ctx context.Context, account *models.LedgerAccount) error {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return fmt.Errorf("failed to create ledger account: %w", err)
	}
	return nil
}

func (r *ledgerRepository) AppendJournalEntry(ctx context.Context, entry *models.JournalEntry, accounts []*models.LedgerAccount) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append journal entry %s: %w", entry.Reference, err)
	}

	for _, account := range accounts {
		err := r.db.WithContext(ctx).
			Model(&models.LedgerAccount{}).
			Where("id = ?", account.ID).
			Update("balance", account.Balance).Error
		if err != nil {
			return fmt.Errorf("failed to update balance of account %d: %w", account.ID, err)
		}

		if account.WalletID != nil {
			err := r.db.WithContext(ctx).
				Model(&models.Wallet{}).
				Where("id = ?", *account.WalletID).
				Update("balance", account.Balance).Error
			if err != nil {
				return fmt.Errorf("failed to mirror balance onto wallet %d: %w", *account.WalletID, err)
			}
		}
	}
	return nil
}

func (r *ledgerRepository) WithinTransaction(ctx context.Context, fn func(LedgerRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ledgerRepository{db: tx})
	})
}
