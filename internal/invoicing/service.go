package invoicing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/invoxa/invoxa/internal/customers"
	"github.com/invoxa/invoxa/internal/gst"
	"github.com/invoxa/invoxa/internal/platform/db"
	"github.com/invoxa/invoxa/internal/platform/httpx"
	"github.com/invoxa/invoxa/internal/products"
)

// RepositoryPort describes repository operations used by Service. Create
// allocates the invoice number inside the same transaction that persists
// the document.
type RepositoryPort interface {
	Create(ctx context.Context, invoice Invoice, items []LineItem) (Invoice, error)
	ListForOrganisation(ctx context.Context, organisationID int64) ([]Invoice, error)
	GetForOrganisation(ctx context.Context, id, organisationID int64) (Invoice, error)
	UpdateStatus(ctx context.Context, id, organisationID int64, status string) error
	RecordPayment(ctx context.Context, id, organisationID int64, amount int64) error
	Delete(ctx context.Context, id, organisationID int64) error
}

// CustomerPort resolves the billed customer.
type CustomerPort interface {
	Get(ctx context.Context, id, organisationID int64) (customers.Customer, error)
}

// ProductPort resolves catalogue products referenced by lines.
type ProductPort interface {
	Get(ctx context.Context, id, organisationID int64) (products.Product, error)
}

// OrgInfo is the seller-side data the calculation needs.
type OrgInfo struct {
	ID    int64
	State string
}

// Service provides invoice business logic: tax calculation, numbering and
// lifecycle transitions.
type Service struct {
	repo      RepositoryPort
	customers CustomerPort
	products  ProductPort
	validate  *validator.Validate
	now       func() time.Time
}

func NewService(repo RepositoryPort, customers CustomerPort, products ProductPort) *Service {
	return &Service{
		repo:      repo,
		customers: customers,
		products:  products,
		validate:  validator.New(),
		now:       time.Now,
	}
}

// billingState picks the customer's billing state for the interstate
// decision: the default address wins, otherwise the first one.
func billingState(c customers.Customer) string {
	for _, a := range c.Addresses {
		if a.IsDefault {
			return a.State
		}
	}
	if len(c.Addresses) > 0 {
		return c.Addresses[0].State
	}
	return ""
}

// Create computes taxes and totals for the request, allocates the next
// invoice number and persists everything atomically. A number collision
// from a concurrent writer is retried once before giving up.
func (s *Service) Create(ctx context.Context, org OrgInfo, req CreateInvoiceRequest) (Invoice, error) {
	if err := s.validate.Struct(req); err != nil {
		return Invoice{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}

	customer, err := s.customers.Get(ctx, req.CustomerID, org.ID)
	if err != nil {
		return Invoice{}, err
	}
	interstate := gst.Interstate(org.State, billingState(customer))

	invoiceDate := s.now()
	if req.InvoiceDate != nil {
		invoiceDate = *req.InvoiceDate
	}

	items := make([]LineItem, 0, len(req.Items))
	var computed []gst.Line
	for _, in := range req.Items {
		product, err := s.products.Get(ctx, in.ProductID, org.ID)
		if errors.Is(err, httpx.ErrNotFound) {
			return Invoice{}, fmt.Errorf("%w: product %d not found in catalogue", httpx.ErrValidation, in.ProductID)
		}
		if err != nil {
			return Invoice{}, err
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
			return Invoice{}, fmt.Errorf("%w: product %d: %s", httpx.ErrValidation, in.ProductID, err)
		}
		if err != nil {
			return Invoice{}, err
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

	totals := gst.Aggregate(computed, gst.Charges{
		Delivery: req.DeliveryCharge,
		Packing:  req.PackingCharge,
		Other:    req.OtherCharge,
	})

	invoice := Invoice{
		OrganisationID: org.ID,
		CustomerID:     customer.ID,
		CustomerName:   customer.Name,
		InvoiceDate:    invoiceDate,
		DueDate:        req.DueDate,
		Status:         StatusDraft,
		Interstate:     interstate,
		PlaceOfSupply:  billingState(customer),
		Subtotal:       totals.Subtotal,
		CGST:           totals.CGST,
		SGST:           totals.SGST,
		IGST:           totals.IGST,
		TotalTax:       totals.TotalTax,
		DeliveryCharge: req.DeliveryCharge,
		PackingCharge:  req.PackingCharge,
		OtherCharge:    req.OtherCharge,
		Total:          totals.Total,
		Balance:        totals.Balance,
		Notes:          req.Notes,
		TransportMode:  req.TransportMode,
		VehicleNumber:  req.VehicleNumber,
		LRNumber:       req.LRNumber,
		EwayBillNumber: req.EwayBillNumber,
	}

	created, err := s.repo.Create(ctx, invoice, items)
	if db.IsUniqueViolation(err) {
		created, err = s.repo.Create(ctx, invoice, items)
		if db.IsUniqueViolation(err) {
			return Invoice{}, fmt.Errorf("%w: invoice number allocation collided, retry", httpx.ErrConflict)
		}
	}
	if err != nil {
		return Invoice{}, fmt.Errorf("create invoice: %w", err)
	}
	return created, nil
}

// List returns the organisation's invoices, newest first.
func (s *Service) List(ctx context.Context, organisationID int64) ([]Invoice, error) {
	return s.repo.ListForOrganisation(ctx, organisationID)
}

// Get retrieves one invoice with its lines.
func (s *Service) Get(ctx context.Context, id, organisationID int64) (Invoice, error) {
	return s.repo.GetForOrganisation(ctx, id, organisationID)
}

// UpdateStatus moves the invoice to a new lifecycle state. Paid invoices
// cannot be cancelled.
func (s *Service) UpdateStatus(ctx context.Context, id, organisationID int64, req UpdateStatusRequest) (Invoice, error) {
	if err := s.validate.Struct(req); err != nil {
		return Invoice{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	current, err := s.repo.GetForOrganisation(ctx, id, organisationID)
	if err != nil {
		return Invoice{}, err
	}
	if current.Status == StatusPaid && req.Status == StatusCancelled {
		return Invoice{}, fmt.Errorf("%w: paid invoice cannot be cancelled", httpx.ErrValidation)
	}
	if err := s.repo.UpdateStatus(ctx, id, organisationID, req.Status); err != nil {
		return Invoice{}, fmt.Errorf("update invoice status: %w", err)
	}
	return s.repo.GetForOrganisation(ctx, id, organisationID)
}

// RecordPayment reduces the open balance. The invoice flips to PAID when
// the balance reaches zero.
func (s *Service) RecordPayment(ctx context.Context, id, organisationID int64, req RecordPaymentRequest) (Invoice, error) {
	if err := s.validate.Struct(req); err != nil {
		return Invoice{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	current, err := s.repo.GetForOrganisation(ctx, id, organisationID)
	if err != nil {
		return Invoice{}, err
	}
	if current.Status == StatusCancelled {
		return Invoice{}, fmt.Errorf("%w: cancelled invoice cannot receive payments", httpx.ErrValidation)
	}
	if req.Amount > current.Balance {
		return Invoice{}, fmt.Errorf("%w: payment %s exceeds open balance %s", httpx.ErrValidation, req.Amount, current.Balance)
	}
	if err := s.repo.RecordPayment(ctx, id, organisationID, int64(req.Amount)); err != nil {
		return Invoice{}, fmt.Errorf("record payment: %w", err)
	}
	return s.repo.GetForOrganisation(ctx, id, organisationID)
}

// BuildEmail composes the delivery payload for sending an invoice to its
// customer. The recipient defaults to the customer's stored address when
// the request does not name one.
func (s *Service) BuildEmail(ctx context.Context, id, organisationID int64, orgName string, req SendInvoiceRequest) (InvoiceEmail, error) {
	if err := s.validate.Struct(req); err != nil {
		return InvoiceEmail{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	inv, err := s.repo.GetForOrganisation(ctx, id, organisationID)
	if err != nil {
		return InvoiceEmail{}, err
	}

	to := req.Email
	if to == "" {
		customer, err := s.customers.Get(ctx, inv.CustomerID, organisationID)
		if err != nil {
			return InvoiceEmail{}, err
		}
		to = customer.Email
	}
	if to == "" {
		return InvoiceEmail{}, fmt.Errorf("%w: no email address for invoice %s", httpx.ErrValidation, inv.Number)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", inv.CustomerName)
	fmt.Fprintf(&b, "Please find the details of invoice %s dated %s.\n\n", inv.Number, inv.InvoiceDate.Format("02 Jan 2006"))
	fmt.Fprintf(&b, "Invoice amount: Rs. %s\n", inv.Total.Display())
	if inv.Balance != inv.Total {
		fmt.Fprintf(&b, "Balance due: Rs. %s\n", inv.Balance.Display())
	}
	if inv.DueDate != nil {
		fmt.Fprintf(&b, "Due date: %s\n", inv.DueDate.Format("02 Jan 2006"))
	}
	fmt.Fprintf(&b, "\nRegards,\n%s\n", orgName)

	return InvoiceEmail{
		To:      to,
		Subject: fmt.Sprintf("Invoice %s from %s", inv.Number, orgName),
		Body:    b.String(),
	}, nil
}

// Delete removes the invoice. The consumed number is never reissued.
func (s *Service) Delete(ctx context.Context, id, organisationID int64) error {
	if _, err := s.repo.GetForOrganisation(ctx, id, organisationID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id, organisationID)
}
