package gstlookup

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/invoxa/invoxa/internal/platform/httpx"
)

// Handler exposes the GSTIN verification endpoint.
type Handler struct {
	logger *slog.Logger
	client *Client
}

func NewHandler(logger *slog.Logger, client *Client) *Handler {
	return &Handler{logger: logger, client: client}
}

// MountRoutes registers lookup routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{gstin}", h.lookup)
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) {
	details, err := h.client.Details(r.Context(), chi.URLParam(r, "gstin"))
	if err != nil {
		h.logger.Error("gstin lookup", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, details)
}
