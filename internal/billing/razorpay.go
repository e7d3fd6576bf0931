package billing

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/invoxa/invoxa/internal/money"
	"github.com/invoxa/invoxa/internal/platform/httpx"
)

// RazorpayClient talks to the Razorpay orders API and verifies payment
// signatures.
type RazorpayClient struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
}

func NewRazorpayClient(baseURL, keyID, keySecret string) *RazorpayClient {
	if baseURL == "" {
		baseURL = "https://api.razorpay.com/v1"
	}
	return &RazorpayClient{
		baseURL:    baseURL,
		keyID:      keyID,
		keySecret:  keySecret,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// KeyID is the public key the frontend checkout needs.
func (c *RazorpayClient) KeyID() string { return c.keyID }

type razorpayOrder struct {
	ID string `json:"id"`
}

// CreateOrder registers a payment order with the gateway and returns its
// id. Amount is in paise, which is also Razorpay's smallest unit for INR.
func (c *RazorpayClient) CreateOrder(ctx context.Context, amount money.Amount) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"amount":   int64(amount),
		"currency": "INR",
		"receipt":  "rcpt_" + uuid.NewString(),
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: razorpay order: %s", httpx.ErrUpstream, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("%w: razorpay order returned status %d", httpx.ErrUpstream, resp.StatusCode)
	}
	var order razorpayOrder
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return "", fmt.Errorf("%w: decode razorpay order: %s", httpx.ErrUpstream, err)
	}
	return order.ID, nil
}

// VerifyPaymentSignature checks the checkout callback signature, which is
// HMAC-SHA256 of "orderID|paymentID" under the key secret.
func (c *RazorpayClient) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	return verifyHMAC(c.keySecret, orderID+"|"+paymentID, signature)
}

// VerifyWebhookSignature checks the X-Razorpay-Signature header against the
// raw webhook body.
func VerifyWebhookSignature(secret string, body []byte, signature string) bool {
	return verifyHMAC(secret, string(body), signature)
}

func verifyHMAC(secret, message, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
