// Package eway wraps the e-way bill provider API used to generate
// transport documents for invoices above the statutory value threshold.
package eway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/invoxa/invoxa/internal/money"
	"github.com/invoxa/invoxa/internal/platform/httpx"
)

// Credentials identify the taxpayer account on the provider.
type Credentials struct {
	Username string
	Password string
	GSTIN    string
}

// GenerateRequest carries the invoice facts the bill needs.
type GenerateRequest struct {
	InvoiceNumber string       `json:"invoice_number" validate:"required"`
	InvoiceDate   time.Time    `json:"invoice_date"`
	FromGSTIN     string       `json:"from_gstin" validate:"required,len=15"`
	ToGSTIN       string       `json:"to_gstin" validate:"omitempty,len=15"`
	FromPincode   string       `json:"from_pincode"`
	ToPincode     string       `json:"to_pincode"`
	TotalValue    money.Amount `json:"total_value" validate:"gt=0"`
	TransportMode string       `json:"transport_mode"`
	VehicleNumber string       `json:"vehicle_number"`
	Distance      int          `json:"distance_km"`
}

// Bill is the provider's record of a generated e-way bill.
type Bill struct {
	Number    string    `json:"ewb_number"`
	Status    string    `json:"status"`
	ValidUpto time.Time `json:"valid_upto"`
}

// Client calls the e-way bill provider.
type Client struct {
	baseURL    string
	creds      Credentials
	httpClient *http.Client
}

func NewClient(baseURL string, creds Credentials) *Client {
	return &Client{
		baseURL:    baseURL,
		creds:      creds,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("username", c.creds.Username)
	req.Header.Set("password", c.creds.Password)
	req.Header.Set("gstin", c.creds.GSTIN)
	req.Header.Set("requestid", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: eway provider: %s", httpx.ErrUpstream, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: eway provider returned status %d", httpx.ErrUpstream, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decode eway response: %s", httpx.ErrUpstream, err)
		}
	}
	return nil
}

// Generate creates an e-way bill for the invoice.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (Bill, error) {
	var bill Bill
	if err := c.do(ctx, http.MethodPost, "/ewayapi/generate", req, &bill); err != nil {
		return Bill{}, err
	}
	return bill, nil
}

// Fetch retrieves an existing bill by number.
func (c *Client) Fetch(ctx context.Context, number string) (Bill, error) {
	var bill Bill
	if err := c.do(ctx, http.MethodGet, "/ewayapi/bill/"+number, nil, &bill); err != nil {
		return Bill{}, err
	}
	return bill, nil
}

// Cancel voids a bill. The provider only allows cancellation within 24
// hours of generation; past that it rejects the call.
func (c *Client) Cancel(ctx context.Context, number, reason string) error {
	return c.do(ctx, http.MethodPost, "/ewayapi/cancel", map[string]string{
		"ewb_number": number,
		"reason":     reason,
	}, nil)
}
