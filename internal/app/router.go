package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/invoxa/invoxa/internal/billing"
	"github.com/invoxa/invoxa/internal/customers"
	"github.com/invoxa/invoxa/internal/eway"
	"github.com/invoxa/invoxa/internal/gstlookup"
	"github.com/invoxa/invoxa/internal/hsn"
	"github.com/invoxa/invoxa/internal/invoicing"
	"github.com/invoxa/invoxa/internal/observability"
	"github.com/invoxa/invoxa/internal/organisations"
	"github.com/invoxa/invoxa/internal/products"
	"github.com/invoxa/invoxa/internal/purchasing"
	"github.com/invoxa/invoxa/internal/suppliers"
	"github.com/invoxa/invoxa/jobs"
	"github.com/invoxa/invoxa/report"
)

// RouterConfig aggregates everything the HTTP router mounts.
type RouterConfig struct {
	Logger  *slog.Logger
	Config  *Config
	Metrics *observability.Metrics

	AuthMiddleware func(http.Handler) http.Handler

	Organisations *organisations.Handler
	Customers     *customers.Handler
	Suppliers     *suppliers.Handler
	Products      *products.Handler
	Invoices      *invoicing.Handler
	Purchases     *purchasing.Handler
	Subscriptions *billing.Handler
	GSTLookup     *gstlookup.Handler
	HSN           *hsn.Handler
	Eway          *eway.Handler
	Reports       *report.Handler
	Jobs          *jobs.Handler
}

// NewRouter builds the chi router with the shared middleware stack, the
// public endpoints and the authenticated API groups.
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(MiddlewareConfig{Logger: cfg.Logger, Config: cfg.Config, Metrics: cfg.Metrics}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	if cfg.Subscriptions != nil {
		r.Post("/webhooks/razorpay", cfg.Subscriptions.Webhook)
	}

	r.Group(func(r chi.Router) {
		if cfg.AuthMiddleware != nil {
			r.Use(cfg.AuthMiddleware)
		}
		if cfg.Organisations != nil {
			r.Route("/organisations", cfg.Organisations.MountRoutes)
		}
		if cfg.Customers != nil {
			r.Route("/customers", cfg.Customers.MountRoutes)
		}
		if cfg.Suppliers != nil {
			r.Route("/suppliers", cfg.Suppliers.MountRoutes)
		}
		if cfg.Products != nil {
			r.Route("/products", cfg.Products.MountRoutes)
		}
		if cfg.Invoices != nil {
			r.Route("/invoices", cfg.Invoices.MountRoutes)
		}
		if cfg.Purchases != nil {
			r.Route("/purchases", cfg.Purchases.MountRoutes)
		}
		if cfg.Subscriptions != nil {
			r.Route("/subscriptions", cfg.Subscriptions.MountRoutes)
		}
		if cfg.GSTLookup != nil {
			r.Route("/gst", cfg.GSTLookup.MountRoutes)
		}
		if cfg.HSN != nil {
			r.Route("/hsn", cfg.HSN.MountRoutes)
		}
		if cfg.Eway != nil {
			r.Route("/eway", cfg.Eway.MountRoutes)
		}
		if cfg.Reports != nil {
			r.Route("/reports", cfg.Reports.MountRoutes)
		}
		if cfg.Jobs != nil {
			r.Route("/jobs", cfg.Jobs.MountRoutes)
		}
	})

	return r
}
