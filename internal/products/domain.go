package products

import (
	"time"

	"github.com/invoxa/invoxa/internal/money"
)

// Product is a catalogue item owned by an organisation. Price is the
// default unit rate suggested on document lines; the line rate may
// override it.
type Product struct {
	ID             int64        `json:"id"`
	OrganisationID int64        `json:"organisation_id"`
	Name           string       `json:"name"`
	Description    string       `json:"description,omitempty"`
	SKU            string       `json:"sku,omitempty"`
	HSNCode        string       `json:"hsn_code,omitempty"`
	SACCode        string       `json:"sac_code,omitempty"`
	Unit           string       `json:"unit,omitempty"`
	Price          money.Amount `json:"price"`
	TaxRate        float64      `json:"tax_rate"`
	Currency       string       `json:"currency"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// HSNSAC returns whichever goods or services code is set, HSN first.
func (p Product) HSNSAC() string {
	if p.HSNCode != "" {
		return p.HSNCode
	}
	return p.SACCode
}

// CreateProductRequest is the creation payload.
type CreateProductRequest struct {
	Name        string       `json:"name" validate:"required,max=200"`
	Description string       `json:"description" validate:"omitempty,max=1000"`
	SKU         string       `json:"sku" validate:"omitempty,max=60"`
	HSNCode     string       `json:"hsn_code" validate:"omitempty,max=8"`
	SACCode     string       `json:"sac_code" validate:"omitempty,max=8"`
	Unit        string       `json:"unit" validate:"omitempty,max=20"`
	Price       money.Amount `json:"price" validate:"gte=0"`
	TaxRate     float64      `json:"tax_rate" validate:"gte=0,lte=100"`
	Currency    string       `json:"currency" validate:"omitempty,len=3"`
}

// UpdateProductRequest applies partial changes. Nil fields are untouched.
type UpdateProductRequest struct {
	Name        *string       `json:"name" validate:"omitempty,max=200"`
	Description *string       `json:"description" validate:"omitempty,max=1000"`
	SKU         *string       `json:"sku" validate:"omitempty,max=60"`
	HSNCode     *string       `json:"hsn_code" validate:"omitempty,max=8"`
	SACCode     *string       `json:"sac_code" validate:"omitempty,max=8"`
	Unit        *string       `json:"unit" validate:"omitempty,max=20"`
	Price       *money.Amount `json:"price" validate:"omitempty,gte=0"`
	TaxRate     *float64      `json:"tax_rate" validate:"omitempty,gte=0,lte=100"`
}
