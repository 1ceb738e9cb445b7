package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types
const (
	TransactionTypeTransfer = "TRANSFER"
	TransactionTypeFund     = "FUND"
	TransactionTypeWithdraw = "WITHDRAW"
)

// Transaction statuses. PENDING is the only non-terminal state.
const (
	TransactionStatusPending   = "PENDING"
	TransactionStatusCompleted = "COMPLETED"
	TransactionStatusFailed    = "FAILED"
)

// Transaction is the user-facing record of a money-movement intent. It is
// created PENDING before any ledger mutation and moves to COMPLETED only
// after its journal entry committed, or to FAILED otherwise. Terminal rows
// are never mutated again.
type Transaction struct {
	ID             uint            `gorm:"primarykey"`
	Reference      string          `gorm:"uniqueIndex;not null"`
	Type           string          `gorm:"not null"`
	Status         string          `gorm:"not null;default:'PENDING'"`
	Amount         decimal.Decimal `gorm:"type:numeric(19,4);not null"`
	Currency       string          `gorm:"not null;default:'NGN'"`
	Description    string
	SourceWalletID *uint   `gorm:"index"`
	DestWalletID   *uint   `gorm:"index"`
	JournalEntryID *uint
	IdempotencyKey *string `gorm:"uniqueIndex;default:null"`
	FailureReason  string
	Metadata       JSON `gorm:"type:jsonb"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsTerminal reports whether the transaction reached a final state.
func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionStatusCompleted || t.Status == TransactionStatusFailed
}
