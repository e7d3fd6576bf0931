package eway

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/invoxa/invoxa/internal/platform/httpx"
)

// Handler exposes e-way bill endpoints.
type Handler struct {
	logger   *slog.Logger
	client   *Client
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, client *Client) *Handler {
	return &Handler{logger: logger, client: client, validate: validator.New()}
}

// MountRoutes registers e-way bill routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/generate", h.generate)
	r.Get("/{number}", h.fetch)
	r.Post("/{number}/cancel", h.cancel)
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	bill, err := h.client.Generate(r.Context(), req)
	if err != nil {
		h.logger.Error("generate eway bill", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, bill)
}

func (h *Handler) fetch(w http.ResponseWriter, r *http.Request) {
	bill, err := h.client.Fetch(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		h.logger.Error("fetch eway bill", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bill)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Reason string `json:"reason"`
	}
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request Body", err.Error())
		return
	}
	if err := h.client.Cancel(r.Context(), chi.URLParam(r, "number"), body.Reason); err != nil {
		h.logger.Error("cancel eway bill", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}
