// Package errors defines the stable, user-visible error vocabulary of the
// payments core. Every failure surfaced by a service maps to one of these
// values; anything else is generalized to an internal error at the HTTP
// boundary.
package errors

// Stable error codes.
const (
	CodeNotFound          = "NOT_FOUND"
	CodeValidation        = "VALIDATION_ERROR"
	CodeUnbalancedEntry   = "UNBALANCED_ENTRY"
	CodeInsufficientFunds = "INSUFFICIENT_FUNDS"
	CodeWalletFrozen      = "WALLET_FROZEN"
	CodeAccessDenied      = "ACCESS_DENIED"
	CodeLockTimeout       = "LOCK_TIMEOUT"
	CodeConflict          = "CONFLICT"
	CodeSignatureInvalid  = "SIGNATURE_INVALID"
	CodePINLocked         = "PIN_LOCKED"
	CodeRateLimited       = "RATE_LIMITED"
	CodeInternal          = "INTERNAL_ERROR"
)

type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Retryable reports whether the whole operation may safely be retried by the
// caller. Only transient lock timeouts qualify; nothing partial persists for
// those.
func (e *DomainError) Retryable() bool {
	return e.Code == CodeLockTimeout
}
