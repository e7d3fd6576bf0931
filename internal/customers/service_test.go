package customers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/invoxa/invoxa/internal/gstlookup"
	"github.com/invoxa/invoxa/internal/platform/httpx"
)

type memoryCustomerRepo struct {
	customers  map[int64]Customer
	nextID     int64
	nextAddrID int64
}

func newMemoryCustomerRepo() *memoryCustomerRepo {
	return &memoryCustomerRepo{customers: make(map[int64]Customer)}
}

func (r *memoryCustomerRepo) CreateWithAddresses(ctx context.Context, customer Customer, addresses []Address) (Customer, error) {
	r.nextID++
	customer.ID = r.nextID
	customer.CreatedAt = time.Now()
	customer.UpdatedAt = customer.CreatedAt
	for _, a := range addresses {
		r.nextAddrID++
		a.ID = r.nextAddrID
		a.CustomerID = customer.ID
		customer.Addresses = append(customer.Addresses, a)
	}
	r.customers[customer.ID] = customer
	return customer, nil
}

func (r *memoryCustomerRepo) ListForOrganisation(ctx context.Context, organisationID int64) ([]Customer, error) {
	var out []Customer
	for _, c := range r.customers {
		if c.OrganisationID == organisationID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memoryCustomerRepo) GetForOrganisation(ctx context.Context, id, organisationID int64) (Customer, error) {
	c, ok := r.customers[id]
	if !ok || c.OrganisationID != organisationID {
		return Customer{}, fmt.Errorf("%w: customer", httpx.ErrNotFound)
	}
	return c, nil
}

func (r *memoryCustomerRepo) SetShippingAddress(ctx context.Context, customerID, addressID, organisationID int64) error {
	c, ok := r.customers[customerID]
	if !ok || c.OrganisationID != organisationID {
		return fmt.Errorf("%w: address", httpx.ErrNotFound)
	}
	found := false
	for i := range c.Addresses {
		c.Addresses[i].IsShipping = c.Addresses[i].ID == addressID
		if c.Addresses[i].ID == addressID {
			found = true
		}
	}
	if !found {
		return fmt.Errorf("%w: address", httpx.ErrNotFound)
	}
	r.customers[customerID] = c
	return nil
}

type stubLookup struct {
	details gstlookup.Details
	err     error
	calls   int
}

func (s *stubLookup) Details(ctx context.Context, gstin string) (gstlookup.Details, error) {
	s.calls++
	if s.err != nil {
		return gstlookup.Details{}, s.err
	}
	return s.details, nil
}

func TestCreateCustomerWithExplicitFields(t *testing.T) {
	lookup := &stubLookup{}
	svc := NewService(newMemoryCustomerRepo(), lookup)

	c, err := svc.Create(context.Background(), 1, CreateCustomerRequest{
		Name: "Sharma Electronics",
		Addresses: []AddressInput{
			{Line1: "14 MG Road", City: "Pune", State: "Maharashtra", Pincode: "411001", IsDefault: true},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "Sharma Electronics", c.Name)
	require.Len(t, c.Addresses, 1)
	require.Equal(t, "billing", c.Addresses[0].Type)
	require.Equal(t, "India", c.Addresses[0].Country)
	require.Zero(t, lookup.calls, "lookup should not run when fields are supplied")
}

func TestCreateCustomerPrefillsFromGSTIN(t *testing.T) {
	lookup := &stubLookup{details: gstlookup.Details{
		GSTIN:     "27AAPFU0939F1ZV",
		LegalName: "Umbrella Traders",
		Building:  "12",
		Street:    "MG Road",
		Location:  "Pune",
		State:     "Maharashtra",
		Pincode:   "411001",
	}}
	svc := NewService(newMemoryCustomerRepo(), lookup)

	c, err := svc.Create(context.Background(), 1, CreateCustomerRequest{GSTIN: "27AAPFU0939F1ZV"})
	require.NoError(t, err)
	require.Equal(t, "Umbrella Traders", c.Name)
	require.Len(t, c.Addresses, 1)
	require.Equal(t, "Maharashtra", c.Addresses[0].State)
	require.True(t, c.Addresses[0].IsDefault)
	require.Equal(t, 1, lookup.calls)
}

func TestCreateCustomerWithoutNameOrGSTIN(t *testing.T) {
	svc := NewService(newMemoryCustomerRepo(), &stubLookup{})
	_, err := svc.Create(context.Background(), 1, CreateCustomerRequest{})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateCustomerLookupFailure(t *testing.T) {
	lookup := &stubLookup{err: fmt.Errorf("%w: gstin lookup returned status 502", httpx.ErrUpstream)}
	svc := NewService(newMemoryCustomerRepo(), lookup)
	_, err := svc.Create(context.Background(), 1, CreateCustomerRequest{GSTIN: "27AAPFU0939F1ZV"})
	require.ErrorIs(t, err, httpx.ErrUpstream)
}

func TestSetShippingAddressClearsSiblings(t *testing.T) {
	repo := newMemoryCustomerRepo()
	svc := NewService(repo, &stubLookup{})
	ctx := context.Background()

	c, err := svc.Create(ctx, 1, CreateCustomerRequest{
		Name: "Sharma Electronics",
		Addresses: []AddressInput{
			{Line1: "14 MG Road", IsShipping: true},
			{Line1: "Warehouse 3, MIDC"},
		},
	})
	require.NoError(t, err)

	err = svc.SetShippingAddress(ctx, 1, SetShippingAddressRequest{CustomerID: c.ID, AddressID: c.Addresses[1].ID})
	require.NoError(t, err)

	got, err := svc.Get(ctx, c.ID, 1)
	require.NoError(t, err)
	require.False(t, got.Addresses[0].IsShipping)
	require.True(t, got.Addresses[1].IsShipping)
}

func TestSetShippingAddressWrongOrganisation(t *testing.T) {
	repo := newMemoryCustomerRepo()
	svc := NewService(repo, &stubLookup{})
	ctx := context.Background()

	c, err := svc.Create(ctx, 1, CreateCustomerRequest{
		Name:      "Sharma Electronics",
		Addresses: []AddressInput{{Line1: "14 MG Road"}},
	})
	require.NoError(t, err)

	err = svc.SetShippingAddress(ctx, 2, SetShippingAddressRequest{CustomerID: c.ID, AddressID: c.Addresses[0].ID})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}
