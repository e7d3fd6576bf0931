package hsn

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/invoxa/invoxa/internal/platform/httpx"
)

// Handler exposes HSN directory endpoints.
type Handler struct {
	logger *slog.Logger
	client *Client
}

func NewHandler(logger *slog.Logger, client *Client) *Handler {
	return &Handler{logger: logger, client: client}
}

// MountRoutes registers HSN routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/search", h.search)
	r.Get("/{code}", h.lookup)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	entries, err := h.client.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.logger.Error("hsn search", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entries)
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	entry, ok := h.client.Lookup(r.Context(), code)
	if !ok {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "hsn code not found")
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}
