package customers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/invoxa/invoxa/internal/auth"
	"github.com/invoxa/invoxa/internal/organisations"
	"github.com/invoxa/invoxa/internal/platform/httpx"
)

// Handler exposes customer endpoints. Requests are scoped to an
// organisation through the organisation_id query parameter, falling back
// to the user's default organisation.
type Handler struct {
	logger  *slog.Logger
	service *Service
	orgs    *organisations.Service
}

func NewHandler(logger *slog.Logger, service *Service, orgs *organisations.Service) *Handler {
	return &Handler{logger: logger, service: service, orgs: orgs}
}

// MountRoutes registers customer routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Post("/shipping-address", h.setShippingAddress)
}

func (h *Handler) organisation(r *http.Request) (organisations.Organisation, error) {
	userID, _ := auth.UserID(r.Context())
	return h.orgs.Resolve(r.Context(), userID, r.URL.Query().Get("organisation_id"))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	org, err := h.organisation(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req CreateCustomerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request Body", err.Error())
		return
	}
	customer, err := h.service.Create(r.Context(), org.ID, req)
	if err != nil {
		h.logger.Error("create customer", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, customer)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	org, err := h.organisation(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	customers, err := h.service.List(r.Context(), org.ID)
	if err != nil {
		h.logger.Error("list customers", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if customers == nil {
		customers = []Customer{}
	}
	httpx.JSON(w, http.StatusOK, customers)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	org, err := h.organisation(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "customer id must be numeric")
		return
	}
	customer, err := h.service.Get(r.Context(), id, org.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, customer)
}

func (h *Handler) setShippingAddress(w http.ResponseWriter, r *http.Request) {
	org, err := h.organisation(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req SetShippingAddressRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request Body", err.Error())
		return
	}
	if err := h.service.SetShippingAddress(r.Context(), org.ID, req); err != nil {
		h.logger.Error("set shipping address", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
