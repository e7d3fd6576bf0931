package customers

import (
	"time"
)

// Address belongs to a customer. At most one address per customer is the
// active shipping address.
type Address struct {
	ID         int64     `json:"id"`
	CustomerID int64     `json:"customer_id"`
	Type       string    `json:"type"`
	Line1      string    `json:"line1"`
	Line2      string    `json:"line2,omitempty"`
	City       string    `json:"city,omitempty"`
	State      string    `json:"state,omitempty"`
	Pincode    string    `json:"pincode,omitempty"`
	Country    string    `json:"country"`
	IsDefault  bool      `json:"is_default"`
	IsShipping bool      `json:"is_shipping"`
	CreatedAt  time.Time `json:"created_at"`
}

// Customer is a billing party owned by an organisation.
type Customer struct {
	ID             int64     `json:"id"`
	OrganisationID int64     `json:"organisation_id"`
	Name           string    `json:"name"`
	GSTIN          string    `json:"gstin,omitempty"`
	Email          string    `json:"email,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Addresses      []Address `json:"addresses"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AddressInput is one address in a customer creation payload.
type AddressInput struct {
	Type       string `json:"type" validate:"omitempty,oneof=billing shipping"`
	Line1      string `json:"line1" validate:"required,max=200"`
	Line2      string `json:"line2" validate:"omitempty,max=200"`
	City       string `json:"city" validate:"omitempty,max=100"`
	State      string `json:"state" validate:"omitempty,max=100"`
	Pincode    string `json:"pincode" validate:"omitempty,max=10"`
	Country    string `json:"country" validate:"omitempty,max=60"`
	IsDefault  bool   `json:"is_default"`
	IsShipping bool   `json:"is_shipping"`
}

// CreateCustomerRequest is the creation payload. Name may be omitted when a
// GSTIN is supplied; the registered legal name is used instead.
type CreateCustomerRequest struct {
	Name      string         `json:"name" validate:"omitempty,max=200"`
	GSTIN     string         `json:"gstin" validate:"omitempty,len=15"`
	Email     string         `json:"email" validate:"omitempty,email"`
	Phone     string         `json:"phone" validate:"omitempty,max=20"`
	Addresses []AddressInput `json:"addresses" validate:"omitempty,dive"`
}

// SetShippingAddressRequest selects the active shipping address.
type SetShippingAddressRequest struct {
	CustomerID int64 `json:"customer_id" validate:"required,gt=0"`
	AddressID  int64 `json:"address_id" validate:"required,gt=0"`
}
