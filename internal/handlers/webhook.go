package handlers

import (
	"encoding/json"
	stderrors "errors"
	"log"

	"vaultpay/internal/errors"
	"vaultpay/internal/services/paystack"
	"vaultpay/internal/services/transaction"
	"vaultpay/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type WebhookHandler struct {
	txService transaction.Service
	gateway   paystack.Client
}

func NewWebhookHandler(txService transaction.Service, gateway paystack.Client) *WebhookHandler {
	return &WebhookHandler{txService: txService, gateway: gateway}
}

type paystackEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
		Amount    int64  `json:"amount"` // subunits (kobo)
	} `json:"data"`
}

// HandlePaystack receives gateway webhook deliveries. The signature is
// checked against the raw body before anything is parsed; duplicates and
// unknown references return 200 so the gateway stops retrying.
func (h *WebhookHandler) HandlePaystack(c *fiber.Ctx) error {
	payload := c.Body()
	signature := c.Get("x-paystack-signature")
	if !h.gateway.VerifyWebhookSignature(payload, signature) {
		log.Printf("webhook rejected: bad signature from %s", c.IP())
		return utils.Forbidden(c, "invalid signature")
	}

	var event paystackEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return utils.BadRequest(c, "invalid payload")
	}
	if event.Data.Reference == "" {
		return utils.BadRequest(c, "missing reference")
	}

	status := paystack.StatusFailed
	if event.Event == "charge.success" || event.Data.Status == paystack.StatusSuccess {
		status = paystack.StatusSuccess
	}

	err := h.txService.HandleGatewayEvent(c.Context(), transaction.GatewayEvent{
		Reference: event.Data.Reference,
		Status:    status,
		Amount:    paystack.FromSubunits(event.Data.Amount),
	})
	if stderrors.Is(err, errors.ErrTransactionNotFound) {
		// Not a reference we issued. Acknowledge so the gateway stops
		// retrying, but keep a trace.
		log.Printf("webhook for unknown reference %s, discarded", event.Data.Reference)
		return utils.Success(c, fiber.Map{"received": true})
	}
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{"received": true})
}
