package billing

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/invoxa/invoxa/internal/auth"
	"github.com/invoxa/invoxa/internal/platform/httpx"
)

// Handler exposes subscription endpoints.
type Handler struct {
	logger        *slog.Logger
	service       *Service
	webhookSecret string
}

func NewHandler(logger *slog.Logger, service *Service, webhookSecret string) *Handler {
	return &Handler{logger: logger, service: service, webhookSecret: webhookSecret}
}

// MountRoutes registers authenticated subscription routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/order", h.createOrder)
	r.Post("/verify", h.verifyPayment)
	r.Get("/current", h.current)
	r.Get("/", h.history)
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	var req CreateOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request Body", err.Error())
		return
	}
	order, err := h.service.CreateOrder(r.Context(), userID, req)
	if err != nil {
		h.logger.Error("create subscription order", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

func (h *Handler) verifyPayment(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	var req VerifyPaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request Body", err.Error())
		return
	}
	sub, err := h.service.VerifyPayment(r.Context(), userID, req)
	if err != nil {
		h.logger.Error("verify subscription payment", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sub)
}

func (h *Handler) current(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	sub, err := h.service.Current(r.Context(), userID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sub)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	subs, err := h.service.History(r.Context(), userID)
	if err != nil {
		h.logger.Error("list subscriptions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if subs == nil {
		subs = []Subscription{}
	}
	httpx.JSON(w, http.StatusOK, subs)
}

// Webhook handles gateway events. It is mounted outside the authenticated
// router; the HMAC header is the only trust anchor.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request Body", "unable to read body")
		return
	}
	signature := r.Header.Get("X-Razorpay-Signature")
	if !VerifyWebhookSignature(h.webhookSecret, body, signature) {
		h.logger.Warn("webhook signature mismatch")
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "signature mismatch")
		return
	}
	// Payments are activated through the verify endpoint; the webhook is an
	// acknowledgement sink so the gateway stops retrying.
	h.logger.Info("razorpay webhook accepted", slog.Int("bytes", len(body)))
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
