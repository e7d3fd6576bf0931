package organisations

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/invoxa/invoxa/internal/platform/httpx"
)

type memoryOrgRepo struct {
	orgs   map[int64]Organisation
	nextID int64
}

func newMemoryOrgRepo() *memoryOrgRepo {
	return &memoryOrgRepo{orgs: make(map[int64]Organisation)}
}

func (r *memoryOrgRepo) Create(ctx context.Context, org Organisation) (Organisation, error) {
	for _, existing := range r.orgs {
		if org.GSTIN != "" && existing.GSTIN == org.GSTIN {
			return Organisation{}, fmt.Errorf("%w: gstin already registered with another organisation", httpx.ErrDuplicate)
		}
	}
	r.nextID++
	org.ID = r.nextID
	org.CreatedAt = time.Now()
	org.UpdatedAt = org.CreatedAt
	r.orgs[org.ID] = org
	return org, nil
}

func (r *memoryOrgRepo) CountForUser(ctx context.Context, userID int64) (int, error) {
	count := 0
	for _, o := range r.orgs {
		if o.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (r *memoryOrgRepo) ListForUser(ctx context.Context, userID int64) ([]Organisation, error) {
	var orgs []Organisation
	for _, o := range r.orgs {
		if o.UserID == userID {
			orgs = append(orgs, o)
		}
	}
	sort.Slice(orgs, func(i, j int) bool { return orgs[i].ID < orgs[j].ID })
	return orgs, nil
}

func (r *memoryOrgRepo) GetForUser(ctx context.Context, id, userID int64) (Organisation, error) {
	o, ok := r.orgs[id]
	if !ok || o.UserID != userID {
		return Organisation{}, fmt.Errorf("%w: organisation", httpx.ErrNotFound)
	}
	return o, nil
}

func (r *memoryOrgRepo) DefaultForUser(ctx context.Context, userID int64) (Organisation, error) {
	orgs, _ := r.ListForUser(ctx, userID)
	if len(orgs) == 0 {
		return Organisation{}, fmt.Errorf("%w: organisation", httpx.ErrNotFound)
	}
	return orgs[0], nil
}

func (r *memoryOrgRepo) Update(ctx context.Context, id, userID int64, updates map[string]any) error {
	o, ok := r.orgs[id]
	if !ok || o.UserID != userID {
		return fmt.Errorf("%w: organisation", httpx.ErrNotFound)
	}
	if name, ok := updates["name"].(string); ok {
		o.Name = name
	}
	if state, ok := updates["state"].(string); ok {
		o.State = state
	}
	r.orgs[id] = o
	return nil
}

type stubPlans struct {
	premium bool
}

func (s stubPlans) IsPremium(ctx context.Context, userID int64) (bool, error) {
	return s.premium, nil
}

func TestCreateFirstOrganisationIsFree(t *testing.T) {
	svc := NewService(newMemoryOrgRepo(), stubPlans{premium: false})

	org, err := svc.Create(context.Background(), 1, CreateOrganisationRequest{Name: "Acme Traders", State: "Maharashtra"})
	require.NoError(t, err)
	require.Equal(t, "Acme Traders", org.Name)
	require.NotZero(t, org.ID)
}

func TestCreateSecondOrganisationRequiresPremium(t *testing.T) {
	repo := newMemoryOrgRepo()
	free := NewService(repo, stubPlans{premium: false})
	ctx := context.Background()

	_, err := free.Create(ctx, 1, CreateOrganisationRequest{Name: "First"})
	require.NoError(t, err)

	_, err = free.Create(ctx, 1, CreateOrganisationRequest{Name: "Second"})
	require.ErrorIs(t, err, httpx.ErrForbidden)

	premium := NewService(repo, stubPlans{premium: true})
	_, err = premium.Create(ctx, 1, CreateOrganisationRequest{Name: "Second"})
	require.NoError(t, err)
}

func TestCreateRejectsInvalidGSTIN(t *testing.T) {
	svc := NewService(newMemoryOrgRepo(), stubPlans{})
	_, err := svc.Create(context.Background(), 1, CreateOrganisationRequest{Name: "Acme", GSTIN: "short"})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateDuplicateGSTIN(t *testing.T) {
	repo := newMemoryOrgRepo()
	svc := NewService(repo, stubPlans{premium: true})
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, CreateOrganisationRequest{Name: "Acme", GSTIN: "27AAPFU0939F1ZV"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, 2, CreateOrganisationRequest{Name: "Copycat", GSTIN: "27AAPFU0939F1ZV"})
	require.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestUpdateOrganisation(t *testing.T) {
	repo := newMemoryOrgRepo()
	svc := NewService(repo, stubPlans{})
	ctx := context.Background()

	org, err := svc.Create(ctx, 1, CreateOrganisationRequest{Name: "Acme", State: "Maharashtra"})
	require.NoError(t, err)

	newName := "Acme & Sons"
	newState := "Karnataka"
	updated, err := svc.Update(ctx, org.ID, 1, UpdateOrganisationRequest{Name: &newName, State: &newState})
	require.NoError(t, err)
	require.Equal(t, "Acme & Sons", updated.Name)
	require.Equal(t, "Karnataka", updated.State)
}

func TestUpdateMissingOrganisation(t *testing.T) {
	svc := NewService(newMemoryOrgRepo(), stubPlans{})
	name := "x"
	_, err := svc.Update(context.Background(), 99, 1, UpdateOrganisationRequest{Name: &name})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestDefaultReturnsOldest(t *testing.T) {
	repo := newMemoryOrgRepo()
	svc := NewService(repo, stubPlans{premium: true})
	ctx := context.Background()

	first, err := svc.Create(ctx, 1, CreateOrganisationRequest{Name: "First"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, 1, CreateOrganisationRequest{Name: "Second"})
	require.NoError(t, err)

	def, err := svc.Default(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, first.ID, def.ID)
}
