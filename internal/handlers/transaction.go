package handlers

import (
	"vaultpay/internal/models"
	"vaultpay/internal/services/transaction"
	"vaultpay/internal/services/wallet"
	"vaultpay/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type TransactionHandler struct {
	txService     transaction.Service
	walletService wallet.Service
}

func NewTransactionHandler(txService transaction.Service, walletService wallet.Service) *TransactionHandler {
	return &TransactionHandler{txService: txService, walletService: walletService}
}

// Transfer moves money between two wallets. An Idempotency-Key header makes
// the request safe to retry.
func (h *TransactionHandler) Transfer(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		SourceWalletID   uint   `json:"source_wallet_id"`
		DestWalletNumber string `json:"dest_wallet_number"`
		Amount           string `json:"amount"`
		Description      string `json:"description"`
		PIN              string `json:"pin"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}
	if input.SourceWalletID == 0 || input.DestWalletNumber == "" {
		return utils.BadRequest(c, "source wallet and destination wallet number are required")
	}
	amount, err := decimal.NewFromString(input.Amount)
	if err != nil {
		return utils.BadRequest(c, "invalid amount")
	}

	txn, err := h.txService.Transfer(c.Context(), claims.UserID, transaction.TransferRequest{
		SourceWalletID:   input.SourceWalletID,
		DestWalletNumber: input.DestWalletNumber,
		Amount:           amount,
		Description:      input.Description,
		PIN:              input.PIN,
		IdempotencyKey:   c.Get("Idempotency-Key"),
	})
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Respond(c, fiber.StatusCreated, fiber.Map{
		"reference": txn.Reference,
		"status":    txn.Status,
		"amount":    txn.Amount,
		"currency":  txn.Currency,
	})
}

// Fund starts a gateway-backed deposit and returns the checkout handle.
func (h *TransactionHandler) Fund(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		WalletID uint   `json:"wallet_id"`
		Amount   string `json:"amount"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}
	if input.WalletID == 0 {
		return utils.BadRequest(c, "wallet_id is required")
	}
	amount, err := decimal.NewFromString(input.Amount)
	if err != nil {
		return utils.BadRequest(c, "invalid amount")
	}

	txn, err := h.txService.InitiateFunding(c.Context(), claims.UserID, transaction.FundRequest{
		WalletID: input.WalletID,
		Amount:   amount,
	})
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Respond(c, fiber.StatusCreated, fiber.Map{
		"reference":         txn.Reference,
		"status":            txn.Status,
		"authorization_url": txn.Metadata["authorization_url"],
		"access_code":       txn.Metadata["access_code"],
	})
}

// Withdraw moves wallet money out toward the gateway.
func (h *TransactionHandler) Withdraw(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		WalletID uint   `json:"wallet_id"`
		Amount   string `json:"amount"`
		PIN      string `json:"pin"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}
	if input.WalletID == 0 {
		return utils.BadRequest(c, "wallet_id is required")
	}
	amount, err := decimal.NewFromString(input.Amount)
	if err != nil {
		return utils.BadRequest(c, "invalid amount")
	}

	txn, err := h.txService.Withdraw(c.Context(), claims.UserID, transaction.WithdrawRequest{
		WalletID: input.WalletID,
		Amount:   amount,
		PIN:      input.PIN,
	})
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Respond(c, fiber.StatusCreated, fiber.Map{
		"reference": txn.Reference,
		"status":    txn.Status,
		"amount":    txn.Amount,
		"currency":  txn.Currency,
	})
}

// GetTransaction returns one transaction by reference. Callers only see
// transactions touching one of their own wallets.
func (h *TransactionHandler) GetTransaction(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	reference := c.Params("reference")
	if reference == "" {
		return utils.BadRequest(c, "reference is required")
	}

	snap, err := h.txService.GetTransaction(c.Context(), reference)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	if !claims.HasPermission(models.PermissionAdminWrite) && !h.ownsEitherSide(c, claims.UserID, snap) {
		return utils.Forbidden(c, "transaction does not belong to you")
	}
	return utils.Success(c, fiber.Map{"transaction": snap})
}

// GetHistory lists a wallet's transactions, newest first.
func (h *TransactionHandler) GetHistory(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	walletID, err := c.ParamsInt("id")
	if err != nil || walletID < 1 {
		return utils.BadRequest(c, "invalid wallet id")
	}

	w, err := h.walletService.GetWallet(c.Context(), uint(walletID))
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	if w.UserID != claims.UserID && !claims.HasPermission(models.PermissionAdminWrite) {
		return utils.Forbidden(c, "not your wallet")
	}

	p := utils.ParsePagination(c)
	snapshots, total, err := h.txService.GetHistory(c.Context(), uint(walletID), p.Limit, p.Offset)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	p.Total = total
	return utils.Success(c, utils.PaginatedResponse(p, snapshots))
}

func (h *TransactionHandler) ownsEitherSide(c *fiber.Ctx, userID uint, snap *transaction.Snapshot) bool {
	for _, number := range []string{snap.SourceWalletNumber, snap.DestWalletNumber} {
		if number == "" {
			continue
		}
		if w, err := h.walletService.GetWalletByNumber(c.Context(), number); err == nil && w.UserID == userID {
			return true
		}
	}
	return false
}
