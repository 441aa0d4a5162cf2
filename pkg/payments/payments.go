// Package payments talks to the upstream payment gateway. Fulfillment only
// cares about one fact per order: whether its payment intent has cleared.
// Webhooks are the primary signal; GetIntentStatus exists for reconciliation
// when a webhook is missed.
package payments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/bazarly/bazarly-backend/pkg/config"
)

// IntentStatus is the gateway-side state of a payment intent.
type IntentStatus string

const (
	IntentStatusPending IntentStatus = "pending"
	IntentStatusPaid    IntentStatus = "paid"
	IntentStatusFailed  IntentStatus = "failed"
)

// Intent is the slice of the gateway's order object the platform reads.
type Intent struct {
	ID      string       `json:"id"`
	OrderID string       `json:"order_id"`
	Status  IntentStatus `json:"status"`
	Amount  string       `json:"amount"`
}

// IntentClient creates payment intents and reads their gateway-side state.
type IntentClient interface {
	CreateOrderIntent(ctx context.Context, amount, currency, reference string) (*Intent, error)
	GetIntentStatus(ctx context.Context, intentID string) (*Intent, error)
}

// HTTPClient is the live gateway client.
type HTTPClient struct {
	baseURL      string
	clientID     string
	clientSecret string
	client       *http.Client
}

func NewHTTPClient(cfg config.PaymentsConfig) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL:      cfg.BaseURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		client:       &http.Client{Timeout: timeout},
	}
}

type intentResponse struct {
	PaymentID   string `json:"cf_payment_id"`
	OrderID     string `json:"order_id"`
	OrderStatus string `json:"order_status"`
	OrderAmount string `json:"order_amount"`
}

type createIntentRequest struct {
	OrderID       string `json:"order_id"`
	OrderAmount   string `json:"order_amount"`
	OrderCurrency string `json:"order_currency"`
}

// CreateOrderIntent registers a collectable amount with the gateway and
// returns the intent the payer will complete.
func (c *HTTPClient) CreateOrderIntent(ctx context.Context, amount, currency, reference string) (*Intent, error) {
	payload, err := json.Marshal(createIntentRequest{
		OrderID:       reference,
		OrderAmount:   amount,
		OrderCurrency: currency,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/pg/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-client-id", c.clientID)
	req.Header.Set("x-client-secret", c.clientSecret)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("creating payment intent: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("payment gateway returned %d", resp.StatusCode)
	}
	var body intentResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding payment intent: %w", err)
	}
	return &Intent{
		ID:      body.PaymentID,
		OrderID: body.OrderID,
		Status:  statusFromGateway(body.OrderStatus),
		Amount:  body.OrderAmount,
	}, nil
}

func (c *HTTPClient) GetIntentStatus(ctx context.Context, intentID string) (*Intent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/pg/orders/"+intentID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-client-id", c.clientID)
	req.Header.Set("x-client-secret", c.clientSecret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching payment intent: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("payment intent %s not found", intentID)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("payment gateway returned %d", resp.StatusCode)
	}
	var body intentResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding payment intent: %w", err)
	}
	return &Intent{
		ID:      body.PaymentID,
		OrderID: body.OrderID,
		Status:  statusFromGateway(body.OrderStatus),
		Amount:  body.OrderAmount,
	}, nil
}

func statusFromGateway(raw string) IntentStatus {
	switch raw {
	case "PAID":
		return IntentStatusPaid
	case "EXPIRED", "TERMINATED", "FAILED":
		return IntentStatusFailed
	default:
		return IntentStatusPending
	}
}

// VerifyWebhookSignature checks the HMAC-SHA256 signature the gateway sends
// with each webhook. Timestamp and raw body are signed together.
func VerifyWebhookSignature(secret, timestamp string, body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
