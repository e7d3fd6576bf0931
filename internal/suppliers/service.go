package suppliers

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/invoxa/invoxa/internal/platform/httpx"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	Create(ctx context.Context, supplier Supplier) (Supplier, error)
	ListForOrganisation(ctx context.Context, organisationID int64) ([]Supplier, error)
	GetForOrganisation(ctx context.Context, id, organisationID int64) (Supplier, error)
	Update(ctx context.Context, id, organisationID int64, updates map[string]any) error
}

// Service provides business logic for supplier management.
type Service struct {
	repo     RepositoryPort
	validate *validator.Validate
}

func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// Create registers a supplier under the organisation.
func (s *Service) Create(ctx context.Context, organisationID int64, req CreateSupplierRequest) (Supplier, error) {
	if err := s.validate.Struct(req); err != nil {
		return Supplier{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	supplier := Supplier{
		OrganisationID: organisationID,
		Name:           req.Name,
		GSTIN:          req.GSTIN,
		Email:          req.Email,
		Phone:          req.Phone,
		Address:        req.Address,
		City:           req.City,
		State:          req.State,
		Pincode:        req.Pincode,
	}
	created, err := s.repo.Create(ctx, supplier)
	if err != nil {
		return Supplier{}, fmt.Errorf("create supplier: %w", err)
	}
	return created, nil
}

// List returns all suppliers of the organisation.
func (s *Service) List(ctx context.Context, organisationID int64) ([]Supplier, error) {
	return s.repo.ListForOrganisation(ctx, organisationID)
}

// Get retrieves one supplier of the organisation.
func (s *Service) Get(ctx context.Context, id, organisationID int64) (Supplier, error) {
	return s.repo.GetForOrganisation(ctx, id, organisationID)
}

// Update applies partial changes to a supplier.
func (s *Service) Update(ctx context.Context, id, organisationID int64, req UpdateSupplierRequest) (Supplier, error) {
	if err := s.validate.Struct(req); err != nil {
		return Supplier{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	if _, err := s.repo.GetForOrganisation(ctx, id, organisationID); err != nil {
		return Supplier{}, err
	}

	updates := make(map[string]any)
	setIf(updates, "name", req.Name)
	setIf(updates, "gstin", req.GSTIN)
	setIf(updates, "email", req.Email)
	setIf(updates, "phone", req.Phone)
	setIf(updates, "address", req.Address)
	setIf(updates, "city", req.City)
	setIf(updates, "state", req.State)
	setIf(updates, "pincode", req.Pincode)

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, organisationID, updates); err != nil {
			return Supplier{}, fmt.Errorf("update supplier: %w", err)
		}
	}
	return s.repo.GetForOrganisation(ctx, id, organisationID)
}

func setIf(updates map[string]any, column string, value *string) {
	if value != nil {
		updates[column] = *value
	}
}
