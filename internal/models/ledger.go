package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ledger account types.
const (
	AccountTypeAsset     = "ASSET"
	AccountTypeLiability = "LIABILITY"
	AccountTypeEquity    = "EQUITY"
	AccountTypeRevenue   = "REVENUE"
	AccountTypeExpense   = "EXPENSE"
)

// Ledger entry types.
const (
	EntryTypeDebit  = "DEBIT"
	EntryTypeCredit = "CREDIT"
)

// LedgerAccount is one double-entry account. Wallet-backed accounts carry
// the wallet's money as ASSET accounts; system accounts (gateway liability
// and friends) have no wallet. Balance is only ever written inside a
// posting commit while the row is locked.
type LedgerAccount struct {
	ID          uint            `gorm:"primarykey"`
	AccountName string          `gorm:"uniqueIndex;not null"`
	AccountType string          `gorm:"not null"`
	WalletID    *uint           `gorm:"uniqueIndex"`
	Currency    string          `gorm:"not null;default:'NGN'"`
	Balance     decimal.Decimal `gorm:"type:numeric(19,4);not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DebitIncreases reports whether a DEBIT line raises this account's
// balance. Asset and expense accounts grow on debit, the rest on credit.
func (a *LedgerAccount) DebitIncreases() bool {
	return a.AccountType == AccountTypeAsset || a.AccountType == AccountTypeExpense
}

// JournalEntry is one atomic, balanced posting. Its lines always sum to
// zero (debits equal credits) and are written in the same commit as the
// balance updates they cause. Entries are immutable once written.
type JournalEntry struct {
	ID          uint   `gorm:"primarykey"`
	Reference   string `gorm:"uniqueIndex;not null"`
	Description string
	Entries     []LedgerEntry `gorm:"foreignKey:JournalEntryID"`
	CreatedAt   time.Time
}

// LedgerEntry is one debit or credit line of a journal entry.
type LedgerEntry struct {
	ID              uint            `gorm:"primarykey"`
	JournalEntryID  uint            `gorm:"index;not null"`
	LedgerAccountID uint            `gorm:"index;not null"`
	EntryType       string          `gorm:"not null"`
	Amount          decimal.Decimal `gorm:"type:numeric(19,4);not null"`
	CreatedAt       time.Time
}
