package products

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/invoxa/invoxa/internal/platform/httpx"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	Create(ctx context.Context, product Product) (Product, error)
	ListForOrganisation(ctx context.Context, organisationID int64) ([]Product, error)
	GetForOrganisation(ctx context.Context, id, organisationID int64) (Product, error)
	Update(ctx context.Context, id, organisationID int64, updates map[string]any) error
}

// Service provides business logic for the product catalogue.
type Service struct {
	repo     RepositoryPort
	validate *validator.Validate
}

func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// Create adds a product to the organisation's catalogue.
func (s *Service) Create(ctx context.Context, organisationID int64, req CreateProductRequest) (Product, error) {
	if err := s.validate.Struct(req); err != nil {
		return Product{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}
	product := Product{
		OrganisationID: organisationID,
		Name:           req.Name,
		Description:    req.Description,
		SKU:            req.SKU,
		HSNCode:        req.HSNCode,
		SACCode:        req.SACCode,
		Unit:           req.Unit,
		Price:          req.Price,
		TaxRate:        req.TaxRate,
		Currency:       currency,
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return Product{}, fmt.Errorf("create product: %w", err)
	}
	return created, nil
}

// List returns the organisation's catalogue.
func (s *Service) List(ctx context.Context, organisationID int64) ([]Product, error) {
	return s.repo.ListForOrganisation(ctx, organisationID)
}

// Get retrieves one product of the organisation.
func (s *Service) Get(ctx context.Context, id, organisationID int64) (Product, error) {
	return s.repo.GetForOrganisation(ctx, id, organisationID)
}

// Update applies partial changes to a product.
func (s *Service) Update(ctx context.Context, id, organisationID int64, req UpdateProductRequest) (Product, error) {
	if err := s.validate.Struct(req); err != nil {
		return Product{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	if _, err := s.repo.GetForOrganisation(ctx, id, organisationID); err != nil {
		return Product{}, err
	}

	updates := make(map[string]any)
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.SKU != nil {
		updates["sku"] = *req.SKU
	}
	if req.HSNCode != nil {
		updates["hsn_code"] = *req.HSNCode
	}
	if req.SACCode != nil {
		updates["sac_code"] = *req.SACCode
	}
	if req.Unit != nil {
		updates["unit"] = *req.Unit
	}
	if req.Price != nil {
		updates["price"] = int64(*req.Price)
	}
	if req.TaxRate != nil {
		updates["tax_rate"] = *req.TaxRate
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, organisationID, updates); err != nil {
			return Product{}, fmt.Errorf("update product: %w", err)
		}
	}
	return s.repo.GetForOrganisation(ctx, id, organisationID)
}
