// Package paystack is the payment gateway client. The ledger core only
// depends on the Client interface; the HTTP implementation talks to the
// Paystack REST API and is never called while account locks are held.
package paystack

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// Payment outcome statuses reported by the gateway.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Authorization is the redirect handle returned on payment initialization.
type Authorization struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// Verification is the settled state of a payment.
type Verification struct {
	Status   string
	Amount   decimal.Decimal
	Currency string
}

type Client interface {
	InitializePayment(ctx context.Context, email string, amount decimal.Decimal, reference, currency string) (*Authorization, error)
	VerifyPayment(ctx context.Context, reference string) (*Verification, error)
	VerifyWebhookSignature(payload []byte, signature string) bool
}

type client struct {
	baseURL   string
	secretKey string
	http      *http.Client
}

// NewClient creates a Paystack API client.
func NewClient(secretKey string) Client {
	return &client{
		baseURL:   "https://api.paystack.co",
		secretKey: secretKey,
		http:      &http.Client{Timeout: 15 * time.Second},
	}
}

type initializeRequest struct {
	Email     string `json:"email"`
	Amount    int64  `json:"amount"` // subunits (kobo)
	Reference string `json:"reference"`
	Currency  string `json:"currency"`
}

type apiEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *client) InitializePayment(ctx context.Context, email string, amount decimal.Decimal, reference, currency string) (*Authorization, error) {
	body := initializeRequest{
		Email:     email,
		Amount:    toSubunits(amount),
		Reference: reference,
		Currency:  currency,
	}

	var auth Authorization
	if err := c.post(ctx, "/transaction/initialize", body, &auth); err != nil {
		return nil, fmt.Errorf("initialize payment %s: %w", reference, err)
	}
	return &auth, nil
}

type verifyResponse struct {
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func (c *client) VerifyPayment(ctx context.Context, reference string) (*Verification, error) {
	var data verifyResponse
	if err := c.get(ctx, "/transaction/verify/"+reference, &data); err != nil {
		return nil, fmt.Errorf("verify payment %s: %w", reference, err)
	}
	return &Verification{
		Status:   data.Status,
		Amount:   FromSubunits(data.Amount),
		Currency: data.Currency,
	}, nil
}

// VerifyWebhookSignature checks the x-paystack-signature header: an
// HMAC-SHA512 hex digest of the raw payload keyed with the secret key.
func (c *client) VerifyWebhookSignature(payload []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(c.secretKey))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (c *client) post(ctx context.Context, path string, body, dest interface{}) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, dest)
}

func (c *client) get(ctx context.Context, path string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, dest)
}

func (c *client) do(req *http.Request, dest interface{}) error {
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var envelope apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode gateway response: %w", err)
	}
	if resp.StatusCode >= 400 || !envelope.Status {
		return fmt.Errorf("gateway error: %s", envelope.Message)
	}
	if dest != nil {
		if err := json.Unmarshal(envelope.Data, dest); err != nil {
			return fmt.Errorf("decode gateway data: %w", err)
		}
	}
	return nil
}

// Paystack deals in integer subunits (kobo for NGN).
func toSubunits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// FromSubunits converts a gateway subunit amount back to major units.
func FromSubunits(amount int64) decimal.Decimal {
	return decimal.NewFromInt(amount).Div(decimal.NewFromInt(100))
}
