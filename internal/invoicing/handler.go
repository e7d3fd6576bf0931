package invoicing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/invoxa/invoxa/internal/auth"
	"github.com/invoxa/invoxa/internal/docnum"
	"github.com/invoxa/invoxa/internal/observability"
	"github.com/invoxa/invoxa/internal/organisations"
	"github.com/invoxa/invoxa/internal/platform/httpx"
)

// EmailEnqueuer queues an outbound invoice email for background delivery.
type EmailEnqueuer func(ctx context.Context, to, subject, body string) error

// Handler exposes invoice endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	orgs      *organisations.Service
	metrics   *observability.Metrics
	sendEmail EmailEnqueuer
}

func NewHandler(logger *slog.Logger, service *Service, orgs *organisations.Service, metrics *observability.Metrics, sendEmail EmailEnqueuer) *Handler {
	return &Handler{logger: logger, service: service, orgs: orgs, metrics: metrics, sendEmail: sendEmail}
}

// MountRoutes registers invoice routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Put("/{id}/status", h.updateStatus)
	r.Post("/{id}/payments", h.recordPayment)
	r.Post("/{id}/send", h.send)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) organisation(r *http.Request) (organisations.Organisation, error) {
	userID, _ := auth.UserID(r.Context())
	return h.orgs.Resolve(r.Context(), userID, r.URL.Query().Get("organisation_id"))
}

func invoiceID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	org, err := h.organisation(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req CreateInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request Body", err.Error())
		return
	}
	invoice, err := h.service.Create(r.Context(), OrgInfo{ID: org.ID, State: org.State}, req)
	if err != nil {
		h.logger.Error("create invoice", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.metrics.DocumentCreated(string(docnum.KindInvoice))
	httpx.JSON(w, http.StatusCreated, invoice)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	org, err := h.organisation(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	invoices, err := h.service.List(r.Context(), org.ID)
	if err != nil {
		h.logger.Error("list invoices", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if invoices == nil {
		invoices = []Invoice{}
	}
	httpx.JSON(w, http.StatusOK, invoices)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	org, err := h.organisation(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, ok := invoiceID(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "invoice id must be numeric")
		return
	}
	invoice, err := h.service.Get(r.Context(), id, org.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoice)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	org, err := h.organisation(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, ok := invoiceID(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "invoice id must be numeric")
		return
	}
	var req UpdateStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request Body", err.Error())
		return
	}
	invoice, err := h.service.UpdateStatus(r.Context(), id, org.ID, req)
	if err != nil {
		h.logger.Error("update invoice status", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoice)
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	org, err := h.organisation(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, ok := invoiceID(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "invoice id must be numeric")
		return
	}
	var req RecordPaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request Body", err.Error())
		return
	}
	invoice, err := h.service.RecordPayment(r.Context(), id, org.ID, req)
	if err != nil {
		h.logger.Error("record payment", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoice)
}

// send composes the invoice email and hands it to the background queue.
// The request body is optional; an empty body means "send to the customer".
func (h *Handler) send(w http.ResponseWriter, r *http.Request) {
	org, err := h.organisation(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, ok := invoiceID(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "invoice id must be numeric")
		return
	}
	var req SendInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request Body", err.Error())
		return
	}
	email, err := h.service.BuildEmail(r.Context(), id, org.ID, org.Name, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if h.sendEmail == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Mail Unavailable", "email delivery is not configured")
		return
	}
	if err := h.sendEmail(r.Context(), email.To, email.Subject, email.Body); err != nil {
		h.logger.Error("enqueue invoice email", slog.Any("error", err))
		httpx.RespondError(w, fmt.Errorf("%w: queue invoice email", httpx.ErrUpstream))
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"status": "queued", "to": email.To})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	org, err := h.organisation(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, ok := invoiceID(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "invoice id must be numeric")
		return
	}
	if err := h.service.Delete(r.Context(), id, org.ID); err != nil {
		h.logger.Error("delete invoice", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
