package repositories

import (
	"context"

	"vaultpay/internal/models"
)

// LedgerRepository is the durable store for ledger accounts and journal
// entries. Mutating calls are meant to run inside WithinTransaction; the
// repository passed to the callback operates on the transaction handle, so
// an error from the callback rolls everything back.
type LedgerRepository interface {
	GetAccount(ctx context.Context, id uint) (*models.LedgerAccount, error)

	// GetAccountForUpdate reads the account under an exclusive row lock
	// held until the enclosing unit of work commits or rolls back. Callers
	// lock multiple accounts strictly in ascending id order.
	GetAccountForUpdate(ctx context.Context, id uint) (*models.LedgerAccount, error)

	GetAccountByWalletID(ctx context.Context, walletID uint) (*models.LedgerAccount, error)
	GetOrCreateSystemAccount(ctx context.Context, name, accountType string) (*models.LedgerAccount, error)
	CreateAccount(ctx context.Context, account *models.LedgerAccount) error

	// AppendJournalEntry persists the entry with its lines and writes each
	// touched account's new balance, mirroring wallet-backed balances onto
	// their wallet rows, all in the enclosing unit of work.
	AppendJournalEntry(ctx context.Context, entry *models.JournalEntry, accounts []*models.LedgerAccount) error

	WithinTransaction(ctx context.Context, fn func(LedgerRepository) error) error
}
