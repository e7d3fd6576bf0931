package purchasing

import (
	"time"

	"github.com/invoxa/invoxa/internal/money"
)

// Purchase lifecycle states.
const (
	StatusDraft     = "DRAFT"
	StatusReceived  = "RECEIVED"
	StatusPaid      = "PAID"
	StatusCancelled = "CANCELLED"
)

// LineItem is one computed purchase line.
type LineItem struct {
	ID          int64        `json:"id"`
	PurchaseID  int64        `json:"purchase_id"`
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

// Purchase is an inbound supply document. Number is the organisation's own
// sequential reference; BillNumber is the supplier's document reference.
type Purchase struct {
	ID             int64        `json:"id"`
	OrganisationID int64        `json:"organisation_id"`
	SupplierID     int64        `json:"supplier_id"`
	SupplierName   string       `json:"supplier_name,omitempty"`
	Number         string       `json:"number"`
	BillNumber     string       `json:"bill_number,omitempty"`
	PurchaseDate   time.Time    `json:"purchase_date"`
	Status         string       `json:"status"`
	Interstate     bool         `json:"interstate"`
	Subtotal       money.Amount `json:"subtotal"`
	CGST           money.Amount `json:"cgst"`
	SGST           money.Amount `json:"sgst"`
	IGST           money.Amount `json:"igst"`
	TotalTax       money.Amount `json:"total_tax"`
	OtherCharge    money.Amount `json:"other_charge"`
	Total          money.Amount `json:"total"`
	Balance        money.Amount `json:"balance_amount"`
	Notes          string       `json:"notes,omitempty"`
	Items          []LineItem   `json:"items"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// LineItemInput is one raw line in a creation payload.
type LineItemInput struct {
	ProductID   int64         `json:"product_id" validate:"required,gt=0"`
	Description string        `json:"description" validate:"omitempty,max=500"`
	Quantity    float64       `json:"quantity" validate:"required,gt=0"`
	Rate        *money.Amount `json:"rate" validate:"omitempty,gte=0"`
	Discount    money.Amount  `json:"discount" validate:"gte=0"`
	TaxRate     *float64      `json:"tax_rate" validate:"omitempty,gte=0,lte=100"`
}

// CreatePurchaseRequest is the creation payload. Purchases carry a single
// optional charge field.
type CreatePurchaseRequest struct {
	SupplierID   int64           `json:"supplier_id" validate:"required,gt=0"`
	BillNumber   string          `json:"bill_number" validate:"omitempty,max=60"`
	PurchaseDate *time.Time      `json:"purchase_date"`
	Items        []LineItemInput `json:"items" validate:"required,min=1,dive"`
	OtherCharge  money.Amount    `json:"other_charge" validate:"gte=0"`
	Notes        string          `json:"notes" validate:"omitempty,max=1000"`
}

// UpdateStatusRequest moves a purchase through its lifecycle.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=DRAFT RECEIVED PAID CANCELLED"`
}

// RecordPaymentRequest applies a payment against the open balance.
type RecordPaymentRequest struct {
	Amount money.Amount `json:"amount" validate:"required,gt=0"`
}
