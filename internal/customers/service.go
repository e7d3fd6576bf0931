package customers

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/invoxa/invoxa/internal/gstlookup"
	"github.com/invoxa/invoxa/internal/platform/httpx"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	CreateWithAddresses(ctx context.Context, customer Customer, addresses []Address) (Customer, error)
	ListForOrganisation(ctx context.Context, organisationID int64) ([]Customer, error)
	GetForOrganisation(ctx context.Context, id, organisationID int64) (Customer, error)
	SetShippingAddress(ctx context.Context, customerID, addressID, organisationID int64) error
}

// LookupPort resolves GSTIN registration details for prefill.
type LookupPort interface {
	Details(ctx context.Context, gstin string) (gstlookup.Details, error)
}

// Service provides business logic for customer management.
type Service struct {
	repo     RepositoryPort
	lookup   LookupPort
	validate *validator.Validate
}

// NewService constructs a customers service. lookup may be nil when GSTIN
// prefill is not configured.
func NewService(repo RepositoryPort, lookup LookupPort) *Service {
	return &Service{repo: repo, lookup: lookup, validate: validator.New()}
}

// Create registers a customer under the organisation. When a GSTIN is given
// and no name or addresses are supplied, the registered legal name and
// principal address fill the gaps.
func (s *Service) Create(ctx context.Context, organisationID int64, req CreateCustomerRequest) (Customer, error) {
	if err := s.validate.Struct(req); err != nil {
		return Customer{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}

	name := req.Name
	addresses := make([]Address, 0, len(req.Addresses))
	for _, in := range req.Addresses {
		addr := Address{
			Type:       in.Type,
			Line1:      in.Line1,
			Line2:      in.Line2,
			City:       in.City,
			State:      in.State,
			Pincode:    in.Pincode,
			Country:    in.Country,
			IsDefault:  in.IsDefault,
			IsShipping: in.IsShipping,
		}
		if addr.Type == "" {
			addr.Type = "billing"
		}
		if addr.Country == "" {
			addr.Country = "India"
		}
		addresses = append(addresses, addr)
	}

	if req.GSTIN != "" && (name == "" || len(addresses) == 0) && s.lookup != nil {
		details, err := s.lookup.Details(ctx, req.GSTIN)
		if err != nil {
			return Customer{}, fmt.Errorf("gstin prefill: %w", err)
		}
		if name == "" {
			name = details.LegalName
		}
		if len(addresses) == 0 {
			addresses = append(addresses, Address{
				Type:      "billing",
				Line1:     details.Building,
				Line2:     details.Street,
				City:      details.Location,
				State:     details.State,
				Pincode:   details.Pincode,
				Country:   "India",
				IsDefault: true,
			})
		}
	}
	if name == "" {
		return Customer{}, fmt.Errorf("%w: customer name is required", httpx.ErrValidation)
	}

	customer := Customer{
		OrganisationID: organisationID,
		Name:           name,
		GSTIN:          req.GSTIN,
		Email:          req.Email,
		Phone:          req.Phone,
	}
	created, err := s.repo.CreateWithAddresses(ctx, customer, addresses)
	if err != nil {
		return Customer{}, fmt.Errorf("create customer: %w", err)
	}
	return created, nil
}

// List returns all customers of the organisation with their addresses.
func (s *Service) List(ctx context.Context, organisationID int64) ([]Customer, error) {
	return s.repo.ListForOrganisation(ctx, organisationID)
}

// Get retrieves one customer of the organisation.
func (s *Service) Get(ctx context.Context, id, organisationID int64) (Customer, error) {
	return s.repo.GetForOrganisation(ctx, id, organisationID)
}

// SetShippingAddress marks one address as the customer's shipping address
// and clears the flag on its siblings.
func (s *Service) SetShippingAddress(ctx context.Context, organisationID int64, req SetShippingAddressRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	return s.repo.SetShippingAddress(ctx, req.CustomerID, req.AddressID, organisationID)
}
