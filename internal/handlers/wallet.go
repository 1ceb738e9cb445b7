package handlers

import (
	"context"

	"vaultpay/internal/models"
	"vaultpay/internal/services/wallet"
	"vaultpay/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type WalletHandler struct {
	walletService wallet.Service
}

func NewWalletHandler(walletService wallet.Service) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

func (h *WalletHandler) CreateWallet(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Currency string `json:"currency"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	w, err := h.walletService.CreateWallet(c.Context(), claims.UserID, input.Currency)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Respond(c, fiber.StatusCreated, fiber.Map{"wallet": w})
}

func (h *WalletHandler) GetWallets(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	wallets, err := h.walletService.GetUserWallets(c.Context(), claims.UserID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{"wallets": wallets})
}

func (h *WalletHandler) GetBalance(c *fiber.Ctx) error {
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

	return utils.Success(c, fiber.Map{
		"wallet_number": w.WalletNumber,
		"balance":       w.Balance,
		"currency":      w.Currency,
		"status":        w.Status,
	})
}

func (h *WalletHandler) FreezeWallet(c *fiber.Ctx) error {
	return h.setStatus(c, h.walletService.FreezeWallet)
}

func (h *WalletHandler) UnfreezeWallet(c *fiber.Ctx) error {
	return h.setStatus(c, h.walletService.UnfreezeWallet)
}

func (h *WalletHandler) CloseWallet(c *fiber.Ctx) error {
	return h.setStatus(c, h.walletService.CloseWallet)
}

func (h *WalletHandler) setStatus(c *fiber.Ctx, change func(ctx context.Context, walletID uint) error) error {
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

	if err := change(c.Context(), uint(walletID)); err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{"message": "wallet status updated"})
}
