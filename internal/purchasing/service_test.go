package purchasing

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/invoxa/invoxa/internal/docnum"
	"github.com/invoxa/invoxa/internal/money"
	"github.com/invoxa/invoxa/internal/platform/httpx"
	"github.com/invoxa/invoxa/internal/products"
	"github.com/invoxa/invoxa/internal/suppliers"
)

type counterKey struct {
	org  int64
	year int
}

type memoryPurchaseRepo struct {
	mu        sync.Mutex
	purchases map[int64]Purchase
	counters  map[counterKey]int
	nextID    int64
}

func newMemoryPurchaseRepo() *memoryPurchaseRepo {
	return &memoryPurchaseRepo{
		purchases: make(map[int64]Purchase),
		counters:  make(map[counterKey]int),
	}
}

func (r *memoryPurchaseRepo) Create(ctx context.Context, purchase Purchase, items []LineItem) (Purchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := counterKey{org: purchase.OrganisationID, year: purchase.PurchaseDate.Year()}
	r.counters[key]++
	purchase.Number = docnum.Format(docnum.KindPurchase, key.year, r.counters[key])

	r.nextID++
	purchase.ID = r.nextID
	purchase.CreatedAt = time.Now()
	purchase.UpdatedAt = purchase.CreatedAt
	for i, it := range items {
		it.ID = int64(i + 1)
		it.PurchaseID = purchase.ID
		purchase.Items = append(purchase.Items, it)
	}
	r.purchases[purchase.ID] = purchase
	return purchase, nil
}

func (r *memoryPurchaseRepo) ListForOrganisation(ctx context.Context, organisationID int64) ([]Purchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Purchase
	for _, p := range r.purchases {
		if p.OrganisationID == organisationID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memoryPurchaseRepo) GetForOrganisation(ctx context.Context, id, organisationID int64) (Purchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.purchases[id]
	if !ok || p.OrganisationID != organisationID {
		return Purchase{}, fmt.Errorf("%w: purchase", httpx.ErrNotFound)
	}
	return p, nil
}

func (r *memoryPurchaseRepo) UpdateStatus(ctx context.Context, id, organisationID int64, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.purchases[id]
	if !ok || p.OrganisationID != organisationID {
		return fmt.Errorf("%w: purchase", httpx.ErrNotFound)
	}
	p.Status = status
	r.purchases[id] = p
	return nil
}

func (r *memoryPurchaseRepo) RecordPayment(ctx context.Context, id, organisationID int64, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.purchases[id]
	if !ok || p.OrganisationID != organisationID {
		return fmt.Errorf("%w: purchase", httpx.ErrNotFound)
	}
	if amount > int64(p.Balance) {
		return fmt.Errorf("%w: payment exceeds open balance", httpx.ErrValidation)
	}
	p.Balance -= money.Amount(amount)
	if p.Balance <= 0 {
		p.Status = StatusPaid
	}
	r.purchases[id] = p
	return nil
}

func (r *memoryPurchaseRepo) Delete(ctx context.Context, id, organisationID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.purchases[id]
	if !ok || p.OrganisationID != organisationID {
		return fmt.Errorf("%w: purchase", httpx.ErrNotFound)
	}
	delete(r.purchases, id)
	return nil
}

type stubSuppliers map[int64]suppliers.Supplier

func (s stubSuppliers) Get(ctx context.Context, id, organisationID int64) (suppliers.Supplier, error) {
	sup, ok := s[id]
	if !ok || sup.OrganisationID != organisationID {
		return suppliers.Supplier{}, fmt.Errorf("%w: supplier", httpx.ErrNotFound)
	}
	return sup, nil
}

type stubProducts map[int64]products.Product

func (s stubProducts) Get(ctx context.Context, id, organisationID int64) (products.Product, error) {
	p, ok := s[id]
	if !ok || p.OrganisationID != organisationID {
		return products.Product{}, fmt.Errorf("%w: product", httpx.ErrNotFound)
	}
	return p, nil
}

func fixtureService(repo *memoryPurchaseRepo, supplierState string) *Service {
	sups := stubSuppliers{
		5: {ID: 5, OrganisationID: 1, Name: "Patel Hardware", State: supplierState},
	}
	prods := stubProducts{
		3: {ID: 3, OrganisationID: 1, Name: "Copper Wire", HSNCode: "8544", Unit: "m", Price: money.FromRupees(50), TaxRate: 18},
	}
	return NewService(repo, sups, prods)
}

var buyerOrg = OrgInfo{ID: 1, State: "Maharashtra"}

func TestCreateIntraStatePurchase(t *testing.T) {
	svc := fixtureService(newMemoryPurchaseRepo(), "Maharashtra")

	p, err := svc.Create(context.Background(), buyerOrg, CreatePurchaseRequest{
		SupplierID:  5,
		BillNumber:  "PH/2025/114",
		Items:       []LineItemInput{{ProductID: 3, Quantity: 10}},
		OtherCharge: money.FromRupees(20),
	})
	require.NoError(t, err)
	require.False(t, p.Interstate)
	require.Equal(t, money.FromRupees(500), p.Subtotal)
	require.Equal(t, money.FromRupees(45), p.CGST)
	require.Equal(t, money.FromRupees(45), p.SGST)
	require.Equal(t, money.FromRupees(610), p.Total)
	require.Equal(t, p.Total, p.Balance)
	require.Equal(t, "PH/2025/114", p.BillNumber)
}

func TestCreateInterStatePurchase(t *testing.T) {
	svc := fixtureService(newMemoryPurchaseRepo(), "Gujarat")

	p, err := svc.Create(context.Background(), buyerOrg, CreatePurchaseRequest{
		SupplierID: 5,
		Items:      []LineItemInput{{ProductID: 3, Quantity: 10}},
	})
	require.NoError(t, err)
	require.True(t, p.Interstate)
	require.Equal(t, money.Amount(0), p.CGST)
	require.Equal(t, money.FromRupees(90), p.IGST)
}

func TestPurchaseNumbersAreIndependentSequence(t *testing.T) {
	svc := fixtureService(newMemoryPurchaseRepo(), "Maharashtra")
	ctx := context.Background()
	date := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	first, err := svc.Create(ctx, buyerOrg, CreatePurchaseRequest{
		SupplierID: 5, PurchaseDate: &date,
		Items: []LineItemInput{{ProductID: 3, Quantity: 1}},
	})
	require.NoError(t, err)
	require.Equal(t, "PUR-2025-001", first.Number)

	second, err := svc.Create(ctx, buyerOrg, CreatePurchaseRequest{
		SupplierID: 5, PurchaseDate: &date,
		Items: []LineItemInput{{ProductID: 3, Quantity: 1}},
	})
	require.NoError(t, err)
	require.Equal(t, "PUR-2025-002", second.Number)
}

func TestCreatePurchaseUnknownSupplier(t *testing.T) {
	svc := fixtureService(newMemoryPurchaseRepo(), "Maharashtra")
	_, err := svc.Create(context.Background(), buyerOrg, CreatePurchaseRequest{
		SupplierID: 42,
		Items:      []LineItemInput{{ProductID: 3, Quantity: 1}},
	})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestCreatePurchaseUnknownProduct(t *testing.T) {
	svc := fixtureService(newMemoryPurchaseRepo(), "Maharashtra")
	_, err := svc.Create(context.Background(), buyerOrg, CreatePurchaseRequest{
		SupplierID: 5,
		Items:      []LineItemInput{{ProductID: 42, Quantity: 1}},
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Contains(t, err.Error(), "product 42")
}

func TestPurchasePaymentLifecycle(t *testing.T) {
	svc := fixtureService(newMemoryPurchaseRepo(), "Maharashtra")
	ctx := context.Background()

	p, err := svc.Create(ctx, buyerOrg, CreatePurchaseRequest{
		SupplierID: 5,
		Items:      []LineItemInput{{ProductID: 3, Quantity: 2}},
	})
	require.NoError(t, err)

	received, err := svc.UpdateStatus(ctx, p.ID, 1, UpdateStatusRequest{Status: StatusReceived})
	require.NoError(t, err)
	require.Equal(t, StatusReceived, received.Status)

	settled, err := svc.RecordPayment(ctx, p.ID, 1, RecordPaymentRequest{Amount: p.Total})
	require.NoError(t, err)
	require.Equal(t, money.Amount(0), settled.Balance)
	require.Equal(t, StatusPaid, settled.Status)
}
