package products

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/invoxa/invoxa/internal/money"
	"github.com/invoxa/invoxa/internal/platform/httpx"
)

type memoryProductRepo struct {
	products map[int64]Product
	nextID   int64
}

func newMemoryProductRepo() *memoryProductRepo {
	return &memoryProductRepo{products: make(map[int64]Product)}
}

func (r *memoryProductRepo) Create(ctx context.Context, product Product) (Product, error) {
	r.nextID++
	product.ID = r.nextID
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt
	r.products[product.ID] = product
	return product, nil
}

func (r *memoryProductRepo) ListForOrganisation(ctx context.Context, organisationID int64) ([]Product, error) {
	var out []Product
	for _, p := range r.products {
		if p.OrganisationID == organisationID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memoryProductRepo) GetForOrganisation(ctx context.Context, id, organisationID int64) (Product, error) {
	p, ok := r.products[id]
	if !ok || p.OrganisationID != organisationID {
		return Product{}, fmt.Errorf("%w: product", httpx.ErrNotFound)
	}
	return p, nil
}

func (r *memoryProductRepo) Update(ctx context.Context, id, organisationID int64, updates map[string]any) error {
	p, ok := r.products[id]
	if !ok || p.OrganisationID != organisationID {
		return fmt.Errorf("%w: product", httpx.ErrNotFound)
	}
	if price, ok := updates["price"].(int64); ok {
		p.Price = money.Amount(price)
	}
	if rate, ok := updates["tax_rate"].(float64); ok {
		p.TaxRate = rate
	}
	if name, ok := updates["name"].(string); ok {
		p.Name = name
	}
	r.products[id] = p
	return nil
}

func TestCreateProductDefaultsCurrency(t *testing.T) {
	svc := NewService(newMemoryProductRepo())

	p, err := svc.Create(context.Background(), 1, CreateProductRequest{
		Name:    "LED Bulb 9W",
		HSNCode: "8539",
		Unit:    "pcs",
		Price:   money.FromRupees(120),
		TaxRate: 12,
	})
	require.NoError(t, err)
	require.Equal(t, "INR", p.Currency)
	require.Equal(t, money.FromRupees(120), p.Price)
}

func TestCreateProductRejectsBadTaxRate(t *testing.T) {
	svc := NewService(newMemoryProductRepo())
	_, err := svc.Create(context.Background(), 1, CreateProductRequest{Name: "Bulb", TaxRate: 120})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateProductPrice(t *testing.T) {
	repo := newMemoryProductRepo()
	svc := NewService(repo)
	ctx := context.Background()

	p, err := svc.Create(ctx, 1, CreateProductRequest{Name: "Bulb", Price: money.FromRupees(100), TaxRate: 12})
	require.NoError(t, err)

	newPrice := money.FromRupees(150)
	newRate := 18.0
	updated, err := svc.Update(ctx, p.ID, 1, UpdateProductRequest{Price: &newPrice, TaxRate: &newRate})
	require.NoError(t, err)
	require.Equal(t, money.FromRupees(150), updated.Price)
	require.Equal(t, 18.0, updated.TaxRate)
}

func TestGetProductScopedToOrganisation(t *testing.T) {
	repo := newMemoryProductRepo()
	svc := NewService(repo)
	ctx := context.Background()

	p, err := svc.Create(ctx, 1, CreateProductRequest{Name: "Bulb"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, p.ID, 2)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestHSNSACPrefersHSN(t *testing.T) {
	require.Equal(t, "8539", Product{HSNCode: "8539", SACCode: "9983"}.HSNSAC())
	require.Equal(t, "9983", Product{SACCode: "9983"}.HSNSAC())
	require.Equal(t, "", Product{}.HSNSAC())
}
