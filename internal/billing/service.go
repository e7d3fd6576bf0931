package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/invoxa/invoxa/internal/money"
	"github.com/invoxa/invoxa/internal/platform/httpx"
)

// Plan pricing and duration.
var planPrices = map[string]money.Amount{
	PlanMonthly: money.FromRupees(299),
	PlanYearly:  money.FromRupees(2999),
}

var planDurations = map[string]time.Duration{
	PlanMonthly: 30 * 24 * time.Hour,
	PlanYearly:  365 * 24 * time.Hour,
}

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	Create(ctx context.Context, sub Subscription) (Subscription, error)
	GetByOrderID(ctx context.Context, orderID string) (Subscription, error)
	ListForUser(ctx context.Context, userID int64) ([]Subscription, error)
	Activate(ctx context.Context, id int64, paymentID string, startsAt, expiresAt time.Time) error
	HasActive(ctx context.Context, userID int64, now time.Time) (bool, error)
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
	DueForReminder(ctx context.Context, from, until time.Time) ([]Subscription, error)
	MarkReminderSent(ctx context.Context, id int64, at time.Time) error
}

// GatewayPort is the payment gateway surface the service needs.
type GatewayPort interface {
	CreateOrder(ctx context.Context, amount money.Amount) (string, error)
	VerifyPaymentSignature(orderID, paymentID, signature string) bool
	KeyID() string
}

// Service provides subscription business logic. It also serves as the
// premium check for organisation creation.
type Service struct {
	repo     RepositoryPort
	gateway  GatewayPort
	validate *validator.Validate
	now      func() time.Time
}

func NewService(repo RepositoryPort, gateway GatewayPort) *Service {
	return &Service{repo: repo, gateway: gateway, validate: validator.New(), now: time.Now}
}

// CreateOrder registers a gateway order for the plan and stores a pending
// subscription against it.
func (s *Service) CreateOrder(ctx context.Context, userID int64, req CreateOrderRequest) (OrderResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return OrderResponse{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	amount := planPrices[req.Plan]

	orderID, err := s.gateway.CreateOrder(ctx, amount)
	if err != nil {
		return OrderResponse{}, fmt.Errorf("create payment order: %w", err)
	}
	sub, err := s.repo.Create(ctx, Subscription{
		UserID:          userID,
		Plan:            req.Plan,
		Status:          StatusPending,
		Amount:          amount,
		RazorpayOrderID: orderID,
	})
	if err != nil {
		return OrderResponse{}, fmt.Errorf("create subscription: %w", err)
	}
	return OrderResponse{
		SubscriptionID: sub.ID,
		OrderID:        orderID,
		Amount:         amount,
		Currency:       "INR",
		KeyID:          s.gateway.KeyID(),
	}, nil
}

// VerifyPayment checks the checkout signature and activates the pending
// subscription for its plan period.
func (s *Service) VerifyPayment(ctx context.Context, userID int64, req VerifyPaymentRequest) (Subscription, error) {
	if err := s.validate.Struct(req); err != nil {
		return Subscription{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	if !s.gateway.VerifyPaymentSignature(req.OrderID, req.PaymentID, req.Signature) {
		return Subscription{}, fmt.Errorf("%w: payment signature mismatch", httpx.ErrUnauthorized)
	}

	sub, err := s.repo.GetByOrderID(ctx, req.OrderID)
	if err != nil {
		return Subscription{}, err
	}
	if sub.UserID != userID {
		return Subscription{}, fmt.Errorf("%w: subscription", httpx.ErrNotFound)
	}
	if sub.Status == StatusActive {
		return sub, nil
	}

	startsAt := s.now()
	expiresAt := startsAt.Add(planDurations[sub.Plan])
	if err := s.repo.Activate(ctx, sub.ID, req.PaymentID, startsAt, expiresAt); err != nil {
		return Subscription{}, fmt.Errorf("activate subscription: %w", err)
	}
	return s.repo.GetByOrderID(ctx, req.OrderID)
}

// Current returns the user's most recent active subscription, or not found.
func (s *Service) Current(ctx context.Context, userID int64) (Subscription, error) {
	subs, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return Subscription{}, err
	}
	now := s.now()
	for _, sub := range subs {
		if sub.Status == StatusActive && sub.ExpiresAt != nil && sub.ExpiresAt.After(now) {
			return sub, nil
		}
	}
	return Subscription{}, fmt.Errorf("%w: active subscription", httpx.ErrNotFound)
}

// History returns all of the user's subscriptions, newest first.
func (s *Service) History(ctx context.Context, userID int64) ([]Subscription, error) {
	return s.repo.ListForUser(ctx, userID)
}

// IsPremium reports whether the user currently holds an unexpired active
// subscription.
func (s *Service) IsPremium(ctx context.Context, userID int64) (bool, error) {
	return s.repo.HasActive(ctx, userID, s.now())
}

// ExpireOverdue flips active subscriptions whose period ended to EXPIRED
// and returns how many changed. Run periodically by the worker.
func (s *Service) ExpireOverdue(ctx context.Context) (int64, error) {
	return s.repo.ExpireOverdue(ctx, s.now())
}

// ReminderCandidates lists active subscriptions expiring within the window
// that have not been reminded yet.
func (s *Service) ReminderCandidates(ctx context.Context, window time.Duration) ([]Subscription, error) {
	now := s.now()
	return s.repo.DueForReminder(ctx, now, now.Add(window))
}

// MarkReminderSent records that an expiry reminder went out.
func (s *Service) MarkReminderSent(ctx context.Context, id int64) error {
	return s.repo.MarkReminderSent(ctx, id, s.now())
}
