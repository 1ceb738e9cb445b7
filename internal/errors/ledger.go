package errors

var (
	ErrAccountNotFound = &DomainError{
		Code:    CodeNotFound,
		Message: "ledger account not found",
	}
	ErrUnbalancedEntry = &DomainError{
		Code:    CodeUnbalancedEntry,
		Message: "journal entry is not balanced",
	}
	ErrInsufficientFunds = &DomainError{
		Code:    CodeInsufficientFunds,
		Message: "insufficient funds",
	}
	ErrLockTimeout = &DomainError{
		Code:    CodeLockTimeout,
		Message: "posting timed out waiting for account locks",
	}
)
