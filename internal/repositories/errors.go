package repositories

import "errors"

// Storage-level sentinel errors. Services translate these into the stable
// domain error vocabulary before anything reaches a caller.
var (
	ErrAccountNotFound     = errors.New("ledger account not found")
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrDuplicateKey        = errors.New("duplicate key")
)
