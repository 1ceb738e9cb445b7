package errors

var (
	ErrWalletNotFound = &DomainError{
		Code:    CodeNotFound,
		Message: "wallet not found",
	}
	ErrWalletFrozen = &DomainError{
		Code:    CodeWalletFrozen,
		Message: "wallet is not active",
	}
	ErrInvalidAmount = &DomainError{
		Code:    CodeValidation,
		Message: "amount must be greater than zero",
	}
	ErrCurrencyMismatch = &DomainError{
		Code:    CodeValidation,
		Message: "wallet currencies do not match",
	}
	ErrWalletNotEmpty = &DomainError{
		Code:    CodeConflict,
		Message: "wallet balance must be zero before closing",
	}
	ErrSelfTransfer = &DomainError{
		Code:    CodeValidation,
		Message: "cannot transfer to the same wallet",
	}
)
