package transaction

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// GatewayLiabilityAccount is the system ledger account representing funds
// held by the external payment gateway. Created lazily on first use.
const GatewayLiabilityAccount = "PAYSTACK_LIABILITY"

// TransferRequest describes a wallet-to-wallet transfer.
type TransferRequest struct {
	SourceWalletID   uint
	DestWalletNumber string
	Amount           decimal.Decimal
	Description      string
	PIN              string
	IdempotencyKey   string
}

// FundRequest starts a gateway-backed wallet funding.
type FundRequest struct {
	WalletID uint
	Amount   decimal.Decimal
}

// WithdrawRequest moves wallet money out toward the gateway.
type WithdrawRequest struct {
	WalletID uint
	Amount   decimal.Decimal
	PIN      string
}

// GatewayEvent is one signature-verified reconciliation event.
type GatewayEvent struct {
	Reference string
	Status    string
	Amount    decimal.Decimal
}

// Snapshot is the read-only view of a transaction returned to callers.
type Snapshot struct {
	Reference          string          `json:"reference"`
	Type               string          `json:"type"`
	Status             string          `json:"status"`
	Amount             decimal.Decimal `json:"amount"`
	Currency           string          `json:"currency"`
	Description        string          `json:"description,omitempty"`
	SourceWalletNumber string          `json:"source_wallet_number,omitempty"`
	DestWalletNumber   string          `json:"dest_wallet_number,omitempty"`
	FailureReason      string          `json:"failure_reason,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

// PINVerifier is the access-control collaborator. A verification failure or
// lockout refuses the operation before any ledger side effect.
type PINVerifier interface {
	VerifyTransactionPIN(ctx context.Context, userID uint, pin string) error
}

// WalletCacheInvalidator drops cached wallet snapshots after a posting.
type WalletCacheInvalidator interface {
	Invalidate(ctx context.Context, walletIDs ...uint)
}

// NoopInvalidator is used when no wallet cache is wired.
type NoopInvalidator struct{}

func (NoopInvalidator) Invalidate(context.Context, ...uint) {}

var _ WalletCacheInvalidator = NoopInvalidator{}
