package suppliers

import "time"

// Supplier is a purchasing counterparty owned by an organisation. Unlike
// customers, suppliers carry a single flat address.
type Supplier struct {
	ID             int64     `json:"id"`
	OrganisationID int64     `json:"organisation_id"`
	Name           string    `json:"name"`
	GSTIN          string    `json:"gstin,omitempty"`
	Email          string    `json:"email,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Address        string    `json:"address,omitempty"`
	City           string    `json:"city,omitempty"`
	State          string    `json:"state,omitempty"`
	Pincode        string    `json:"pincode,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CreateSupplierRequest is the creation payload.
type CreateSupplierRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	GSTIN   string `json:"gstin" validate:"omitempty,len=15"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"omitempty,max=20"`
	Address string `json:"address" validate:"omitempty,max=400"`
	City    string `json:"city" validate:"omitempty,max=100"`
	State   string `json:"state" validate:"omitempty,max=100"`
	Pincode string `json:"pincode" validate:"omitempty,max=10"`
}

// UpdateSupplierRequest applies partial changes. Nil fields are untouched.
type UpdateSupplierRequest struct {
	Name    *string `json:"name" validate:"omitempty,max=200"`
	GSTIN   *string `json:"gstin" validate:"omitempty,len=15"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Phone   *string `json:"phone" validate:"omitempty,max=20"`
	Address *string `json:"address" validate:"omitempty,max=400"`
	City    *string `json:"city" validate:"omitempty,max=100"`
	State   *string `json:"state" validate:"omitempty,max=100"`
	Pincode *string `json:"pincode" validate:"omitempty,max=10"`
}
