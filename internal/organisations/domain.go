package organisations

import (
	"time"
)

// Organisation is a registered business owned by a user. Its state drives
// interstate determination for invoices and purchases.
type Organisation struct {
	ID                  int64     `json:"id"`
	UserID              int64     `json:"user_id"`
	Name                string    `json:"name"`
	TradeName           string    `json:"trade_name,omitempty"`
	GSTIN               string    `json:"gstin,omitempty"`
	PAN                 string    `json:"pan,omitempty"`
	Address             string    `json:"address,omitempty"`
	City                string    `json:"city,omitempty"`
	State               string    `json:"state,omitempty"`
	StateCode           string    `json:"state_code,omitempty"`
	Pincode             string    `json:"pincode,omitempty"`
	Phone               string    `json:"phone,omitempty"`
	Email               string    `json:"email,omitempty"`
	LogoURL             string    `json:"logo_url,omitempty"`
	BankName            string    `json:"bank_name,omitempty"`
	BankBranch          string    `json:"bank_branch,omitempty"`
	AccountHolderName   string    `json:"account_holder_name,omitempty"`
	AccountNumber       string    `json:"account_number,omitempty"`
	IFSC                string    `json:"ifsc,omitempty"`
	UPI                 string    `json:"upi,omitempty"`
	AuthorizedSignatory string    `json:"authorized_signatory,omitempty"`
	SignatureURL        string    `json:"signature_url,omitempty"`
	CompanySealURL      string    `json:"company_seal_url,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// CreateOrganisationRequest is the creation payload.
type CreateOrganisationRequest struct {
	Name                string `json:"name" validate:"required,max=200"`
	TradeName           string `json:"trade_name" validate:"omitempty,max=200"`
	GSTIN               string `json:"gstin" validate:"omitempty,len=15"`
	PAN                 string `json:"pan" validate:"omitempty,len=10"`
	Address             string `json:"address" validate:"omitempty,max=500"`
	City                string `json:"city" validate:"omitempty,max=100"`
	State               string `json:"state" validate:"omitempty,max=100"`
	StateCode           string `json:"state_code" validate:"omitempty,max=2"`
	Pincode             string `json:"pincode" validate:"omitempty,max=10"`
	Phone               string `json:"phone" validate:"omitempty,max=20"`
	Email               string `json:"email" validate:"omitempty,email"`
	LogoURL             string `json:"logo_url" validate:"omitempty,url"`
	BankName            string `json:"bank_name" validate:"omitempty,max=100"`
	BankBranch          string `json:"bank_branch" validate:"omitempty,max=100"`
	AccountHolderName   string `json:"account_holder_name" validate:"omitempty,max=200"`
	AccountNumber       string `json:"account_number" validate:"omitempty,max=30"`
	IFSC                string `json:"ifsc" validate:"omitempty,len=11"`
	UPI                 string `json:"upi" validate:"omitempty,max=100"`
	AuthorizedSignatory string `json:"authorized_signatory" validate:"omitempty,max=200"`
	SignatureURL        string `json:"signature_url" validate:"omitempty,url"`
	CompanySealURL      string `json:"company_seal_url" validate:"omitempty,url"`
}

// UpdateOrganisationRequest carries optional field updates.
type UpdateOrganisationRequest struct {
	Name                *string `json:"name,omitempty" validate:"omitempty,max=200"`
	TradeName           *string `json:"trade_name,omitempty"`
	Address             *string `json:"address,omitempty"`
	City                *string `json:"city,omitempty"`
	State               *string `json:"state,omitempty"`
	StateCode           *string `json:"state_code,omitempty"`
	Pincode             *string `json:"pincode,omitempty"`
	Phone               *string `json:"phone,omitempty"`
	Email               *string `json:"email,omitempty" validate:"omitempty,email"`
	LogoURL             *string `json:"logo_url,omitempty"`
	BankName            *string `json:"bank_name,omitempty"`
	BankBranch          *string `json:"bank_branch,omitempty"`
	AccountHolderName   *string `json:"account_holder_name,omitempty"`
	AccountNumber       *string `json:"account_number,omitempty"`
	IFSC                *string `json:"ifsc,omitempty"`
	UPI                 *string `json:"upi,omitempty"`
	AuthorizedSignatory *string `json:"authorized_signatory,omitempty"`
	SignatureURL        *string `json:"signature_url,omitempty"`
	CompanySealURL      *string `json:"company_seal_url,omitempty"`
}
