package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/invoxa/invoxa/internal/app"
	"github.com/invoxa/invoxa/internal/auth"
	"github.com/invoxa/invoxa/internal/billing"
	"github.com/invoxa/invoxa/internal/customers"
	"github.com/invoxa/invoxa/internal/eway"
	"github.com/invoxa/invoxa/internal/gstlookup"
	"github.com/invoxa/invoxa/internal/hsn"
	"github.com/invoxa/invoxa/internal/invoicing"
	"github.com/invoxa/invoxa/internal/observability"
	"github.com/invoxa/invoxa/internal/organisations"
	"github.com/invoxa/invoxa/internal/platform/cache"
	"github.com/invoxa/invoxa/internal/platform/db"
	"github.com/invoxa/invoxa/internal/products"
	"github.com/invoxa/invoxa/internal/purchasing"
	"github.com/invoxa/invoxa/internal/suppliers"
	"github.com/invoxa/invoxa/jobs"
	"github.com/invoxa/invoxa/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, lookup caching disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}
	}()

	metrics := observability.NewMetrics()

	gateway := billing.NewRazorpayClient(cfg.RazorpayBaseURL, cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	billingRepo := billing.NewRepository(pool)
	billingService := billing.NewService(billingRepo, gateway)

	orgRepo := organisations.NewRepository(pool)
	orgService := organisations.NewService(orgRepo, billingService)
	orgHandler := organisations.NewHandler(logger, orgService)

	lookupClient := gstlookup.NewClient(cfg.GSTAPIBaseURL, cfg.GSTAPIKey, redisClient, logger)
	lookupHandler := gstlookup.NewHandler(logger, lookupClient)

	customerRepo := customers.NewRepository(pool)
	customerService := customers.NewService(customerRepo, lookupClient)
	customerHandler := customers.NewHandler(logger, customerService, orgService)

	supplierRepo := suppliers.NewRepository(pool)
	supplierService := suppliers.NewService(supplierRepo)
	supplierHandler := suppliers.NewHandler(logger, supplierService, orgService)

	productRepo := products.NewRepository(pool)
	productService := products.NewService(productRepo)
	productHandler := products.NewHandler(logger, productService, orgService)

	queue, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("create queue client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := queue.Close(); err != nil {
			logger.Warn("queue client close", slog.Any("error", err))
		}
	}()
	enqueueEmail := func(ctx context.Context, to, subject, body string) error {
		_, err := queue.EnqueueSendEmail(ctx, jobs.SendEmailPayload{To: to, Subject: subject, Body: body})
		return err
	}

	invoiceRepo := invoicing.NewRepository(pool)
	invoiceService := invoicing.NewService(invoiceRepo, customerService, productService)
	invoiceHandler := invoicing.NewHandler(logger, invoiceService, orgService, metrics, enqueueEmail)

	purchaseRepo := purchasing.NewRepository(pool)
	purchaseService := purchasing.NewService(purchaseRepo, supplierService, productService)
	purchaseHandler := purchasing.NewHandler(logger, purchaseService, orgService, metrics)

	billingHandler := billing.NewHandler(logger, billingService, cfg.RazorpayWebhookSecret)

	hsnClient := hsn.NewClient(cfg.HSNAPIBaseURL, logger)
	hsnHandler := hsn.NewHandler(logger, hsnClient)

	ewayClient := eway.NewClient(cfg.EwayAPIBaseURL, eway.Credentials{
		Username: cfg.EwayUsername,
		Password: cfg.EwayPassword,
		GSTIN:    cfg.EwayGSTIN,
	})
	ewayHandler := eway.NewHandler(logger, ewayClient)

	gotenberg := report.NewClient(cfg.GotenbergURL)
	reportHandler := report.NewHandler(logger, gotenberg, orgService, customerService, invoiceService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterConfig{
		Logger:         logger,
		Config:         cfg,
		Metrics:        metrics,
		AuthMiddleware: auth.Middleware(cfg.JWTSecret),
		Organisations:  orgHandler,
		Customers:      customerHandler,
		Suppliers:      supplierHandler,
		Products:       productHandler,
		Invoices:       invoiceHandler,
		Purchases:      purchaseHandler,
		Subscriptions:  billingHandler,
		GSTLookup:      lookupHandler,
		HSN:            hsnHandler,
		Eway:           ewayHandler,
		Reports:        reportHandler,
		Jobs:           jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
