package suppliers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/invoxa/invoxa/internal/platform/httpx"
)

type memorySupplierRepo struct {
	suppliers map[int64]Supplier
	nextID    int64
}

func newMemorySupplierRepo() *memorySupplierRepo {
	return &memorySupplierRepo{suppliers: make(map[int64]Supplier)}
}

func (r *memorySupplierRepo) Create(ctx context.Context, supplier Supplier) (Supplier, error) {
	r.nextID++
	supplier.ID = r.nextID
	supplier.CreatedAt = time.Now()
	supplier.UpdatedAt = supplier.CreatedAt
	r.suppliers[supplier.ID] = supplier
	return supplier, nil
}

func (r *memorySupplierRepo) ListForOrganisation(ctx context.Context, organisationID int64) ([]Supplier, error) {
	var out []Supplier
	for _, s := range r.suppliers {
		if s.OrganisationID == organisationID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memorySupplierRepo) GetForOrganisation(ctx context.Context, id, organisationID int64) (Supplier, error) {
	s, ok := r.suppliers[id]
	if !ok || s.OrganisationID != organisationID {
		return Supplier{}, fmt.Errorf("%w: supplier", httpx.ErrNotFound)
	}
	return s, nil
}

func (r *memorySupplierRepo) Update(ctx context.Context, id, organisationID int64, updates map[string]any) error {
	s, ok := r.suppliers[id]
	if !ok || s.OrganisationID != organisationID {
		return fmt.Errorf("%w: supplier", httpx.ErrNotFound)
	}
	if name, ok := updates["name"].(string); ok {
		s.Name = name
	}
	if state, ok := updates["state"].(string); ok {
		s.State = state
	}
	r.suppliers[id] = s
	return nil
}

func TestCreateSupplier(t *testing.T) {
	svc := NewService(newMemorySupplierRepo())

	s, err := svc.Create(context.Background(), 1, CreateSupplierRequest{
		Name:  "Patel Hardware",
		State: "Gujarat",
	})
	require.NoError(t, err)
	require.NotZero(t, s.ID)
	require.Equal(t, "Patel Hardware", s.Name)
}

func TestCreateSupplierRequiresName(t *testing.T) {
	svc := NewService(newMemorySupplierRepo())
	_, err := svc.Create(context.Background(), 1, CreateSupplierRequest{State: "Gujarat"})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateSupplierRejectsShortGSTIN(t *testing.T) {
	svc := NewService(newMemorySupplierRepo())
	_, err := svc.Create(context.Background(), 1, CreateSupplierRequest{Name: "Patel", GSTIN: "short"})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestGetSupplierScopedToOrganisation(t *testing.T) {
	repo := newMemorySupplierRepo()
	svc := NewService(repo)
	ctx := context.Background()

	s, err := svc.Create(ctx, 1, CreateSupplierRequest{Name: "Patel Hardware"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, s.ID, 2)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestUpdateSupplier(t *testing.T) {
	repo := newMemorySupplierRepo()
	svc := NewService(repo)
	ctx := context.Background()

	s, err := svc.Create(ctx, 1, CreateSupplierRequest{Name: "Patel Hardware", State: "Gujarat"})
	require.NoError(t, err)

	newState := "Rajasthan"
	updated, err := svc.Update(ctx, s.ID, 1, UpdateSupplierRequest{State: &newState})
	require.NoError(t, err)
	require.Equal(t, "Rajasthan", updated.State)
	require.Equal(t, "Patel Hardware", updated.Name)
}
