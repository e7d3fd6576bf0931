package report

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/invoxa/invoxa/internal/auth"
	"github.com/invoxa/invoxa/internal/customers"
	"github.com/invoxa/invoxa/internal/invoicing"
	"github.com/invoxa/invoxa/internal/organisations"
	"github.com/invoxa/invoxa/internal/platform/httpx"
)

// Handler renders invoice PDFs through Gotenberg.
type Handler struct {
	logger    *slog.Logger
	gotenberg *Client
	orgs      *organisations.Service
	customers *customers.Service
	invoices  *invoicing.Service
}

func NewHandler(logger *slog.Logger, gotenberg *Client, orgs *organisations.Service, custs *customers.Service, invoices *invoicing.Service) *Handler {
	return &Handler{logger: logger, gotenberg: gotenberg, orgs: orgs, customers: custs, invoices: invoices}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/invoices/{id}/pdf", h.invoicePDF)
}

func (h *Handler) invoicePDF(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	org, err := h.orgs.Resolve(r.Context(), userID, r.URL.Query().Get("organisation_id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "invoice id must be numeric")
		return
	}

	invoice, err := h.invoices.Get(r.Context(), id, org.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	customer, err := h.customers.Get(r.Context(), invoice.CustomerID, org.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	html, err := BuildInvoiceHTML(org, customer, invoice)
	if err != nil {
		h.logger.Error("build invoice html", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	pdf, err := h.gotenberg.RenderHTML(r.Context(), html)
	if err != nil {
		h.logger.Error("render invoice pdf", slog.Any("error", err))
		httpx.RespondError(w, fmt.Errorf("%w: pdf renderer: %s", httpx.ErrUpstream, err))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", invoice.Number+".pdf"))
	_, _ = w.Write(pdf)
}
