package purchasing

import (
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

// Handler exposes purchase endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	orgs    *organisations.Service
	metrics *observability.Metrics
}

func NewHandler(logger *slog.Logger, service *Service, orgs *organisations.Service, metrics *observability.Metrics) *Handler {
	return &Handler{logger: logger, service: service, orgs: orgs, metrics: metrics}
}

// MountRoutes registers purchase routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Put("/{id}/status", h.updateStatus)
	r.Post("/{id}/payments", h.recordPayment)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) organisation(r *http.Request) (organisations.Organisation, error) {
	userID, _ := auth.UserID(r.Context())
	return h.orgs.Resolve(r.Context(), userID, r.URL.Query().Get("organisation_id"))
}

func purchaseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	org, err := h.organisation(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req CreatePurchaseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request Body", err.Error())
		return
	}
	purchase, err := h.service.Create(r.Context(), OrgInfo{ID: org.ID, State: org.State}, req)
	if err != nil {
		h.logger.Error("create purchase", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.metrics.DocumentCreated(string(docnum.KindPurchase))
	httpx.JSON(w, http.StatusCreated, purchase)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	org, err := h.organisation(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	purchases, err := h.service.List(r.Context(), org.ID)
	if err != nil {
		h.logger.Error("list purchases", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if purchases == nil {
		purchases = []Purchase{}
	}
	httpx.JSON(w, http.StatusOK, purchases)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	org, err := h.organisation(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, ok := purchaseID(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "purchase id must be numeric")
		return
	}
	purchase, err := h.service.Get(r.Context(), id, org.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, purchase)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	org, err := h.organisation(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, ok := purchaseID(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "purchase id must be numeric")
		return
	}
	var req UpdateStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request Body", err.Error())
		return
	}
	purchase, err := h.service.UpdateStatus(r.Context(), id, org.ID, req)
	if err != nil {
		h.logger.Error("update purchase status", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, purchase)
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	org, err := h.organisation(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, ok := purchaseID(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "purchase id must be numeric")
		return
	}
	var req RecordPaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request Body", err.Error())
		return
	}
	purchase, err := h.service.RecordPayment(r.Context(), id, org.ID, req)
	if err != nil {
		h.logger.Error("record purchase payment", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, purchase)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	org, err := h.organisation(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, ok := purchaseID(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "purchase id must be numeric")
		return
	}
	if err := h.service.Delete(r.Context(), id, org.ID); err != nil {
		h.logger.Error("delete purchase", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
