package repositories

import (
	"context"

	"vaultpay/internal/models"
)

// TransactionRepository stores user-facing transaction records and the
// idempotency index. Create surfaces ErrDuplicateKey when the idempotency
// key already exists, which callers resolve to "return the existing row".
type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	Update(ctx context.Context, tx *models.Transaction) error
	GetByReference(ctx context.Context, reference string) (*models.Transaction, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*models.Transaction, error)
	ListByWallet(ctx context.Context, walletID uint, limit, offset int) ([]models.Transaction, int64, error)
}
