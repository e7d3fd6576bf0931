package invoicing

import (
	"time"

	"github.com/invoxa/invoxa/internal/money"
)

// Invoice lifecycle states.
const (
	StatusDraft     = "DRAFT"
	StatusSent      = "SENT"
	StatusPaid      = "PAID"
	StatusCancelled = "CANCELLED"
)

// LineItem is one computed invoice line. The tax split is persisted as
// calculated at creation; it is never recomputed from the stored amounts.
type LineItem struct {
	ID          int64        `json:"id"`
	InvoiceID   int64        `json:"invoice_id"`
	ProductID   int64        `json:"product_id"`
	Description string       `json:"description"`
	HSNSAC      string       `json:"hsn_sac,omitempty"`
	Quantity    float64      `json:"quantity"`
	Unit        string       `json:"unit,omitempty"`
	Rate        money.Amount `json:"rate"`
	Discount    money.Amount `json:"discount"`
	TaxRate     float64      `json:"tax_rate"`
	Amount      money.Amount `json:"amount"`
	CGST        money.Amount `json:"cgst"`
	SGST        money.Amount `json:"sgst"`
	IGST        money.Amount `json:"igst"`
	TaxAmount   money.Amount `json:"tax_amount"`
}

// Invoice is a sales document. Number is allocated at creation and never
// reused, even when the invoice is later deleted.
type Invoice struct {
	ID             int64        `json:"id"`
	OrganisationID int64        `json:"organisation_id"`
	CustomerID     int64        `json:"customer_id"`
	CustomerName   string       `json:"customer_name,omitempty"`
	Number         string       `json:"number"`
	InvoiceDate    time.Time    `json:"invoice_date"`
	DueDate        *time.Time   `json:"due_date,omitempty"`
	Status         string       `json:"status"`
	Interstate     bool         `json:"interstate"`
	PlaceOfSupply  string       `json:"place_of_supply,omitempty"`
	Subtotal       money.Amount `json:"subtotal"`
	CGST           money.Amount `json:"cgst"`
	SGST           money.Amount `json:"sgst"`
	IGST           money.Amount `json:"igst"`
	TotalTax       money.Amount `json:"total_tax"`
	DeliveryCharge money.Amount `json:"delivery_charge"`
	PackingCharge  money.Amount `json:"packing_charge"`
	OtherCharge    money.Amount `json:"other_charge"`
	Total          money.Amount `json:"total"`
	Balance        money.Amount `json:"balance_amount"`
	Notes          string       `json:"notes,omitempty"`
	TransportMode  string       `json:"transport_mode,omitempty"`
	VehicleNumber  string       `json:"vehicle_number,omitempty"`
	LRNumber       string       `json:"lr_number,omitempty"`
	EwayBillNumber string       `json:"eway_bill_number,omitempty"`
	Items          []LineItem   `json:"items"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// LineItemInput is one raw line in a creation payload. Rate and TaxRate
// fall back to the product's catalogue values when omitted.
type LineItemInput struct {
	ProductID   int64         `json:"product_id" validate:"required,gt=0"`
	Description string        `json:"description" validate:"omitempty,max=500"`
	Quantity    float64       `json:"quantity" validate:"required,gt=0"`
	Rate        *money.Amount `json:"rate" validate:"omitempty,gte=0"`
	Discount    money.Amount  `json:"discount" validate:"gte=0"`
	TaxRate     *float64      `json:"tax_rate" validate:"omitempty,gte=0,lte=100"`
}

// CreateInvoiceRequest is the creation payload.
type CreateInvoiceRequest struct {
	CustomerID     int64           `json:"customer_id" validate:"required,gt=0"`
	InvoiceDate    *time.Time      `json:"invoice_date"`
	DueDate        *time.Time      `json:"due_date"`
	Items          []LineItemInput `json:"items" validate:"required,min=1,dive"`
	DeliveryCharge money.Amount    `json:"delivery_charge" validate:"gte=0"`
	PackingCharge  money.Amount    `json:"packing_charge" validate:"gte=0"`
	OtherCharge    money.Amount    `json:"other_charge" validate:"gte=0"`
	Notes          string          `json:"notes" validate:"omitempty,max=1000"`
	TransportMode  string          `json:"transport_mode" validate:"omitempty,max=60"`
	VehicleNumber  string          `json:"vehicle_number" validate:"omitempty,max=20"`
	LRNumber       string          `json:"lr_number" validate:"omitempty,max=40"`
	EwayBillNumber string          `json:"eway_bill_number" validate:"omitempty,max=20"`
}

// UpdateStatusRequest moves an invoice through its lifecycle.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=DRAFT SENT PAID CANCELLED"`
}

// RecordPaymentRequest applies a payment against the open balance.
type RecordPaymentRequest struct {
	Amount money.Amount `json:"amount" validate:"required,gt=0"`
}

// SendInvoiceRequest asks for the invoice to be emailed. Email overrides
// the customer's stored address.
type SendInvoiceRequest struct {
	Email string `json:"email" validate:"omitempty,email"`
}

// InvoiceEmail is a composed outbound message for one invoice.
type InvoiceEmail struct {
	To      string
	Subject string
	Body    string
}
