package invoicing

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/invoxa/invoxa/internal/auth"
	"github.com/invoxa/invoxa/internal/customers"
	"github.com/invoxa/invoxa/internal/money"
	"github.com/invoxa/invoxa/internal/organisations"
)

type singleOrgRepo struct {
	org organisations.Organisation
}

func (r singleOrgRepo) Create(ctx context.Context, org organisations.Organisation) (organisations.Organisation, error) {
	return org, nil
}

func (r singleOrgRepo) CountForUser(ctx context.Context, userID int64) (int, error) {
	return 1, nil
}

func (r singleOrgRepo) ListForUser(ctx context.Context, userID int64) ([]organisations.Organisation, error) {
	return []organisations.Organisation{r.org}, nil
}

func (r singleOrgRepo) GetForUser(ctx context.Context, id, userID int64) (organisations.Organisation, error) {
	return r.org, nil
}

func (r singleOrgRepo) DefaultForUser(ctx context.Context, userID int64) (organisations.Organisation, error) {
	return r.org, nil
}

func (r singleOrgRepo) Update(ctx context.Context, id, userID int64, updates map[string]any) error {
	return nil
}

type freePlan struct{}

func (freePlan) IsPremium(ctx context.Context, userID int64) (bool, error) {
	return false, nil
}

type queuedEmail struct {
	to, subject, body string
}

func sendTestRouter(t *testing.T, enqueue EmailEnqueuer) (chi.Router, *Service) {
	t.Helper()

	repo := newMemoryInvoiceRepo()
	custs := stubCustomers{
		7: {
			ID: 7, OrganisationID: 1, Name: "Sharma Electronics", Email: "accounts@sharma.example",
			Addresses: []customers.Address{{ID: 1, State: "Maharashtra", IsDefault: true}},
		},
	}
	prods := stubProducts{
		3: {ID: 3, OrganisationID: 1, Name: "LED Bulb 9W", HSNCode: "8539", Unit: "pcs", Price: money.FromRupees(100), TaxRate: 18},
	}
	svc := NewService(repo, custs, prods)

	orgs := organisations.NewService(singleOrgRepo{org: organisations.Organisation{
		ID: 1, UserID: 42, Name: "Invoxa Traders", State: "Maharashtra",
	}}, freePlan{})
	handler := NewHandler(slog.Default(), svc, orgs, nil, enqueue)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.ContextWithUserID(req.Context(), 42)))
		})
	})
	r.Route("/invoices", handler.MountRoutes)
	return r, svc
}

func TestSendEndpointQueuesInvoiceEmail(t *testing.T) {
	var queued []queuedEmail
	router, svc := sendTestRouter(t, func(ctx context.Context, to, subject, body string) error {
		queued = append(queued, queuedEmail{to: to, subject: subject, body: body})
		return nil
	})

	inv, err := svc.Create(context.Background(), sellerOrg, CreateInvoiceRequest{
		CustomerID: 7,
		Items:      []LineItemInput{{ProductID: 3, Quantity: 2}},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/invoices/1/send", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, queued, 1)
	require.Equal(t, "accounts@sharma.example", queued[0].to)
	require.Contains(t, queued[0].subject, inv.Number)
	require.Contains(t, queued[0].subject, "Invoxa Traders")
	require.Contains(t, queued[0].body, inv.Total.Display())
}

func TestSendEndpointHonoursRecipientOverride(t *testing.T) {
	var queued []queuedEmail
	router, svc := sendTestRouter(t, func(ctx context.Context, to, subject, body string) error {
		queued = append(queued, queuedEmail{to: to, subject: subject, body: body})
		return nil
	})

	_, err := svc.Create(context.Background(), sellerOrg, CreateInvoiceRequest{
		CustomerID: 7,
		Items:      []LineItemInput{{ProductID: 3, Quantity: 1}},
	})
	require.NoError(t, err)

	body := bytes.NewBufferString(`{"email":"owner@override.example"}`)
	req := httptest.NewRequest(http.MethodPost, "/invoices/1/send", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, queued, 1)
	require.Equal(t, "owner@override.example", queued[0].to)
}

func TestSendEndpointRejectsUnknownInvoice(t *testing.T) {
	router, _ := sendTestRouter(t, func(ctx context.Context, to, subject, body string) error {
		t.Fatal("nothing should be queued")
		return nil
	})

	req := httptest.NewRequest(http.MethodPost, "/invoices/99/send", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
