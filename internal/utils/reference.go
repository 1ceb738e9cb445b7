package utils

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const referenceTimeLayout = "20060102150405"

// GenerateTransactionReference returns a unique reference for a transfer.
func GenerateTransactionReference() string {
	return "TXN-" + time.Now().UTC().Format(referenceTimeLayout) + "-" + shortUUID()
}

// GenerateDepositReference returns a unique reference for a funding.
func GenerateDepositReference() string {
	return "DEP-" + time.Now().UTC().Format(referenceTimeLayout) + "-" + shortUUID()
}

// GenerateWithdrawalReference returns a unique reference for a withdrawal.
func GenerateWithdrawalReference() string {
	return "WDR-" + time.Now().UTC().Format(referenceTimeLayout) + "-" + shortUUID()
}

// GenerateWalletNumber returns a unique wallet number.
func GenerateWalletNumber() string {
	return "VP" + strconv.FormatInt(time.Now().UnixMilli(), 10)
}

func shortUUID() string {
	return strings.ToUpper(uuid.NewString()[:8])
}
