package purchasing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/invoxa/invoxa/internal/gst"
	"github.com/invoxa/invoxa/internal/platform/db"
	"github.com/invoxa/invoxa/internal/platform/httpx"
	"github.com/invoxa/invoxa/internal/products"
	"github.com/invoxa/invoxa/internal/suppliers"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	Create(ctx context.Context, purchase Purchase, items []LineItem) (Purchase, error)
	ListForOrganisation(ctx context.Context, organisationID int64) ([]Purchase, error)
	GetForOrganisation(ctx context.Context, id, organisationID int64) (Purchase, error)
	UpdateStatus(ctx context.Context, id, organisationID int64, status string) error
	RecordPayment(ctx context.Context, id, organisationID int64, amount int64) error
	Delete(ctx context.Context, id, organisationID int64) error
}

// SupplierPort resolves the billing supplier.
type SupplierPort interface {
	Get(ctx context.Context, id, organisationID int64) (suppliers.Supplier, error)
}

// ProductPort resolves catalogue products referenced by lines.
type ProductPort interface {
	Get(ctx context.Context, id, organisationID int64) (products.Product, error)
}

// OrgInfo is the buyer-side data the calculation needs.
type OrgInfo struct {
	ID    int64
	State string
}

// Service provides purchase business logic. The tax engine is shared with
// invoicing; the supply direction only changes whose state decides the
// interstate split.
type Service struct {
	repo      RepositoryPort
	suppliers SupplierPort
	products  ProductPort
	validate  *validator.Validate
	now       func() time.Time
}

func NewService(repo RepositoryPort, suppliers SupplierPort, products ProductPort) *Service {
	return &Service{
		repo:      repo,
		suppliers: suppliers,
		products:  products,
		validate:  validator.New(),
		now:       time.Now,
	}
}

// Create computes taxes and totals, allocates the next purchase number and
// persists everything atomically.
func (s *Service) Create(ctx context.Context, org OrgInfo, req CreatePurchaseRequest) (Purchase, error) {
	if err := s.validate.Struct(req); err != nil {
		return Purchase{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}

	supplier, err := s.suppliers.Get(ctx, req.SupplierID, org.ID)
	if err != nil {
		return Purchase{}, err
	}
	interstate := gst.Interstate(org.State, supplier.State)

	purchaseDate := s.now()
	if req.PurchaseDate != nil {
		purchaseDate = *req.PurchaseDate
	}

	items := make([]LineItem, 0, len(req.Items))
	var computed []gst.Line
	for _, in := range req.Items {
		product, err := s.products.Get(ctx, in.ProductID, org.ID)
		if errors.Is(err, httpx.ErrNotFound) {
			return Purchase{}, fmt.Errorf("%w: product %d not found in catalogue", httpx.ErrValidation, in.ProductID)
		}
		if err != nil {
			return Purchase{}, err
		}

		rate := product.Price
		if in.Rate != nil {
			rate = *in.Rate
		}
		taxRate := product.TaxRate
		if in.TaxRate != nil {
			taxRate = *in.TaxRate
		}
		line, err := gst.ComputeLine(gst.LineInput{
			Quantity: in.Quantity,
			Rate:     rate,
			Discount: in.Discount,
			TaxRate:  taxRate,
		}, interstate)
		if errors.Is(err, gst.ErrInvalidLine) {
			return Purchase{}, fmt.Errorf("%w: product %d: %s", httpx.ErrValidation, in.ProductID, err)
		}
		if err != nil {
			return Purchase{}, err
		}

		description := in.Description
		if description == "" {
			description = product.Name
		}
		items = append(items, LineItem{
			ProductID:   product.ID,
			Description: description,
			HSNSAC:      product.HSNSAC(),
			Quantity:    in.Quantity,
			Unit:        product.Unit,
			Rate:        rate,
			Discount:    in.Discount,
			TaxRate:     taxRate,
			Amount:      line.Amount,
			CGST:        line.CGST,
			SGST:        line.SGST,
			IGST:        line.IGST,
			TaxAmount:   line.TaxAmount,
		})
		computed = append(computed, line)
	}

	totals := gst.Aggregate(computed, gst.Charges{Other: req.OtherCharge})

	purchase := Purchase{
		OrganisationID: org.ID,
		SupplierID:     supplier.ID,
		SupplierName:   supplier.Name,
		BillNumber:     req.BillNumber,
		PurchaseDate:   purchaseDate,
		Status:         StatusDraft,
		Interstate:     interstate,
		Subtotal:       totals.Subtotal,
		CGST:           totals.CGST,
		SGST:           totals.SGST,
		IGST:           totals.IGST,
		TotalTax:       totals.TotalTax,
		OtherCharge:    req.OtherCharge,
		Total:          totals.Total,
		Balance:        totals.Balance,
		Notes:          req.Notes,
	}

	created, err := s.repo.Create(ctx, purchase, items)
	if db.IsUniqueViolation(err) {
		created, err = s.repo.Create(ctx, purchase, items)
		if db.IsUniqueViolation(err) {
			return Purchase{}, fmt.Errorf("%w: purchase number allocation collided, retry", httpx.ErrConflict)
		}
	}
	if err != nil {
		return Purchase{}, fmt.Errorf("create purchase: %w", err)
	}
	return created, nil
}

// List returns the organisation's purchases, newest first.
func (s *Service) List(ctx context.Context, organisationID int64) ([]Purchase, error) {
	return s.repo.ListForOrganisation(ctx, organisationID)
}

// Get retrieves one purchase with its lines.
func (s *Service) Get(ctx context.Context, id, organisationID int64) (Purchase, error) {
	return s.repo.GetForOrganisation(ctx, id, organisationID)
}

// UpdateStatus moves the purchase to a new lifecycle state.
func (s *Service) UpdateStatus(ctx context.Context, id, organisationID int64, req UpdateStatusRequest) (Purchase, error) {
	if err := s.validate.Struct(req); err != nil {
		return Purchase{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	current, err := s.repo.GetForOrganisation(ctx, id, organisationID)
	if err != nil {
		return Purchase{}, err
	}
	if current.Status == StatusPaid && req.Status == StatusCancelled {
		return Purchase{}, fmt.Errorf("%w: paid purchase cannot be cancelled", httpx.ErrValidation)
	}
	if err := s.repo.UpdateStatus(ctx, id, organisationID, req.Status); err != nil {
		return Purchase{}, fmt.Errorf("update purchase status: %w", err)
	}
	return s.repo.GetForOrganisation(ctx, id, organisationID)
}

// RecordPayment reduces the open balance. The purchase flips to PAID when
// the balance reaches zero.
func (s *Service) RecordPayment(ctx context.Context, id, organisationID int64, req RecordPaymentRequest) (Purchase, error) {
	if err := s.validate.Struct(req); err != nil {
		return Purchase{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	current, err := s.repo.GetForOrganisation(ctx, id, organisationID)
	if err != nil {
		return Purchase{}, err
	}
	if current.Status == StatusCancelled {
		return Purchase{}, fmt.Errorf("%w: cancelled purchase cannot receive payments", httpx.ErrValidation)
	}
	if req.Amount > current.Balance {
		return Purchase{}, fmt.Errorf("%w: payment %s exceeds open balance %s", httpx.ErrValidation, req.Amount, current.Balance)
	}
	if err := s.repo.RecordPayment(ctx, id, organisationID, int64(req.Amount)); err != nil {
		return Purchase{}, fmt.Errorf("record payment: %w", err)
	}
	return s.repo.GetForOrganisation(ctx, id, organisationID)
}

// Delete removes the purchase. The consumed number is never reissued.
func (s *Service) Delete(ctx context.Context, id, organisationID int64) error {
	if _, err := s.repo.GetForOrganisation(ctx, id, organisationID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id, organisationID)
}
