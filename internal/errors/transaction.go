package errors

var (
	ErrTransactionNotFound = &DomainError{
		Code:    CodeNotFound,
		Message: "transaction not found",
	}
	ErrAccessDenied = &DomainError{
		Code:    CodeAccessDenied,
		Message: "access denied",
	}
	ErrInvalidPIN = &DomainError{
		Code:    CodeAccessDenied,
		Message: "invalid transaction PIN",
	}
	ErrPINLocked = &DomainError{
		Code:    CodePINLocked,
		Message: "transaction PIN locked after too many failed attempts",
	}
	ErrSignatureInvalid = &DomainError{
		Code:    CodeSignatureInvalid,
		Message: "webhook signature verification failed",
	}
	ErrAmountMismatch = &DomainError{
		Code:    CodeValidation,
		Message: "settled amount does not match the pending transaction",
	}
	ErrInternal = &DomainError{
		Code:    CodeInternal,
		Message: "internal error",
	}
)
