package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet statuses
const (
	WalletStatusActive = "ACTIVE"
	WalletStatusFrozen = "FROZEN"
	WalletStatusClosed = "CLOSED"
)

// Wallet is one currency-denominated balance owned by a user. Balance is a
// cached copy of the backing ledger account's balance; the two are only ever
// written together inside the same posting commit.
type Wallet struct {
	ID           uint            `gorm:"primarykey"`
	UserID       uint            `gorm:"not null;index"`
	WalletNumber string          `gorm:"uniqueIndex;not null"`
	Currency     string          `gorm:"not null;default:'NGN'"`
	Balance      decimal.Decimal `gorm:"type:numeric(19,4);not null;default:0"`
	Status       string          `gorm:"not null;default:'ACTIVE'"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsActive reports whether the wallet may take part in postings.
func (w *Wallet) IsActive() bool {
	return w.Status == WalletStatusActive
}
