package ledger

import (
	"time"

	"vaultpay/internal/models"

	"github.com/shopspring/decimal"
)

// DefaultPostingTimeout bounds one posting's unit of work, lock waits
// included.
const DefaultPostingTimeout = 10 * time.Second

// Movement is one debit or credit line of a requested posting.
type Movement struct {
	AccountID uint
	EntryType string // models.EntryTypeDebit or models.EntryTypeCredit
	Amount    decimal.Decimal
}

// TransferLines moves amount between two asset accounts: the source is
// credited (balance down), the destination debited (balance up).
func TransferLines(sourceAccountID, destAccountID uint, amount decimal.Decimal) []Movement {
	return []Movement{
		{AccountID: sourceAccountID, EntryType: models.EntryTypeCredit, Amount: amount},
		{AccountID: destAccountID, EntryType: models.EntryTypeDebit, Amount: amount},
	}
}

// FundingLines records settled gateway money arriving in a wallet: the
// wallet asset account is debited (balance up) against the gateway
// liability account.
func FundingLines(walletAccountID, liabilityAccountID uint, amount decimal.Decimal) []Movement {
	return []Movement{
		{AccountID: walletAccountID, EntryType: models.EntryTypeDebit, Amount: amount},
		{AccountID: liabilityAccountID, EntryType: models.EntryTypeCredit, Amount: amount},
	}
}

// WithdrawalLines records money leaving a wallet toward the gateway: the
// wallet asset account is credited (balance down), the liability debited.
func WithdrawalLines(walletAccountID, liabilityAccountID uint, amount decimal.Decimal) []Movement {
	return []Movement{
		{AccountID: walletAccountID, EntryType: models.EntryTypeCredit, Amount: amount},
		{AccountID: liabilityAccountID, EntryType: models.EntryTypeDebit, Amount: amount},
	}
}
