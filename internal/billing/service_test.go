package billing

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/invoxa/invoxa/internal/money"
	"github.com/invoxa/invoxa/internal/platform/httpx"
)

type memorySubscriptionRepo struct {
	subs   map[int64]Subscription
	nextID int64
}

func newMemorySubscriptionRepo() *memorySubscriptionRepo {
	return &memorySubscriptionRepo{subs: make(map[int64]Subscription)}
}

func (r *memorySubscriptionRepo) Create(ctx context.Context, sub Subscription) (Subscription, error) {
	r.nextID++
	sub.ID = r.nextID
	sub.CreatedAt = time.Now()
	sub.UpdatedAt = sub.CreatedAt
	r.subs[sub.ID] = sub
	return sub, nil
}

func (r *memorySubscriptionRepo) GetByOrderID(ctx context.Context, orderID string) (Subscription, error) {
	for _, s := range r.subs {
		if s.RazorpayOrderID == orderID {
			return s, nil
		}
	}
	return Subscription{}, fmt.Errorf("%w: subscription", httpx.ErrNotFound)
}

func (r *memorySubscriptionRepo) ListForUser(ctx context.Context, userID int64) ([]Subscription, error) {
	var out []Subscription
	for _, s := range r.subs {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memorySubscriptionRepo) Activate(ctx context.Context, id int64, paymentID string, startsAt, expiresAt time.Time) error {
	s, ok := r.subs[id]
	if !ok || s.Status != StatusPending {
		return fmt.Errorf("%w: pending subscription", httpx.ErrNotFound)
	}
	s.Status = StatusActive
	s.RazorpayPaymentID = paymentID
	s.StartsAt = &startsAt
	s.ExpiresAt = &expiresAt
	r.subs[id] = s
	return nil
}

func (r *memorySubscriptionRepo) HasActive(ctx context.Context, userID int64, now time.Time) (bool, error) {
	for _, s := range r.subs {
		if s.UserID == userID && s.Status == StatusActive && s.ExpiresAt != nil && s.ExpiresAt.After(now) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memorySubscriptionRepo) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for id, s := range r.subs {
		if s.Status == StatusActive && s.ExpiresAt != nil && !s.ExpiresAt.After(now) {
			s.Status = StatusExpired
			r.subs[id] = s
			n++
		}
	}
	return n, nil
}

func (r *memorySubscriptionRepo) DueForReminder(ctx context.Context, from, until time.Time) ([]Subscription, error) {
	var out []Subscription
	for _, s := range r.subs {
		if s.Status == StatusActive && s.ReminderSentAt == nil && s.ExpiresAt != nil &&
			s.ExpiresAt.After(from) && !s.ExpiresAt.After(until) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memorySubscriptionRepo) MarkReminderSent(ctx context.Context, id int64, at time.Time) error {
	s, ok := r.subs[id]
	if !ok {
		return fmt.Errorf("%w: subscription", httpx.ErrNotFound)
	}
	s.ReminderSentAt = &at
	r.subs[id] = s
	return nil
}

type stubGateway struct {
	secret string
	orders int
}

func (g *stubGateway) CreateOrder(ctx context.Context, amount money.Amount) (string, error) {
	g.orders++
	return fmt.Sprintf("order_%d", g.orders), nil
}

func (g *stubGateway) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	return verifyHMAC(g.secret, orderID+"|"+paymentID, signature)
}

func (g *stubGateway) KeyID() string { return "rzp_test_key" }

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func fixtureService(t *testing.T) (*Service, *memorySubscriptionRepo, *stubGateway) {
	t.Helper()
	repo := newMemorySubscriptionRepo()
	gateway := &stubGateway{secret: "whisper"}
	return NewService(repo, gateway), repo, gateway
}

func TestCreateOrder(t *testing.T) {
	svc, _, _ := fixtureService(t)

	order, err := svc.CreateOrder(context.Background(), 1, CreateOrderRequest{Plan: PlanMonthly})
	require.NoError(t, err)
	require.Equal(t, "order_1", order.OrderID)
	require.Equal(t, money.FromRupees(299), order.Amount)
	require.Equal(t, "INR", order.Currency)
	require.Equal(t, "rzp_test_key", order.KeyID)
}

func TestCreateOrderRejectsUnknownPlan(t *testing.T) {
	svc, _, _ := fixtureService(t)
	_, err := svc.CreateOrder(context.Background(), 1, CreateOrderRequest{Plan: "lifetime"})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestVerifyPaymentActivates(t *testing.T) {
	svc, _, _ := fixtureService(t)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, 1, CreateOrderRequest{Plan: PlanMonthly})
	require.NoError(t, err)

	sub, err := svc.VerifyPayment(ctx, 1, VerifyPaymentRequest{
		OrderID:   order.OrderID,
		PaymentID: "pay_1",
		Signature: sign("whisper", order.OrderID, "pay_1"),
	})
	require.NoError(t, err)
	require.Equal(t, StatusActive, sub.Status)
	require.NotNil(t, sub.ExpiresAt)

	premium, err := svc.IsPremium(ctx, 1)
	require.NoError(t, err)
	require.True(t, premium)
}

func TestVerifyPaymentRejectsBadSignature(t *testing.T) {
	svc, _, _ := fixtureService(t)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, 1, CreateOrderRequest{Plan: PlanMonthly})
	require.NoError(t, err)

	_, err = svc.VerifyPayment(ctx, 1, VerifyPaymentRequest{
		OrderID:   order.OrderID,
		PaymentID: "pay_1",
		Signature: "forged",
	})
	require.ErrorIs(t, err, httpx.ErrUnauthorized)

	premium, err := svc.IsPremium(ctx, 1)
	require.NoError(t, err)
	require.False(t, premium)
}

func TestVerifyPaymentWrongUser(t *testing.T) {
	svc, _, _ := fixtureService(t)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, 1, CreateOrderRequest{Plan: PlanMonthly})
	require.NoError(t, err)

	_, err = svc.VerifyPayment(ctx, 2, VerifyPaymentRequest{
		OrderID:   order.OrderID,
		PaymentID: "pay_1",
		Signature: sign("whisper", order.OrderID, "pay_1"),
	})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestExpireOverdue(t *testing.T) {
	svc, repo, _ := fixtureService(t)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, 1, CreateOrderRequest{Plan: PlanMonthly})
	require.NoError(t, err)
	_, err = svc.VerifyPayment(ctx, 1, VerifyPaymentRequest{
		OrderID:   order.OrderID,
		PaymentID: "pay_1",
		Signature: sign("whisper", order.OrderID, "pay_1"),
	})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(31 * 24 * time.Hour) }
	n, err := svc.ExpireOverdue(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	sub, err := repo.GetByOrderID(ctx, order.OrderID)
	require.NoError(t, err)
	require.Equal(t, StatusExpired, sub.Status)

	premium, err := svc.IsPremium(ctx, 1)
	require.NoError(t, err)
	require.False(t, premium)
}

func TestReminderCandidates(t *testing.T) {
	svc, _, _ := fixtureService(t)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, 1, CreateOrderRequest{Plan: PlanMonthly})
	require.NoError(t, err)
	_, err = svc.VerifyPayment(ctx, 1, VerifyPaymentRequest{
		OrderID:   order.OrderID,
		PaymentID: "pay_1",
		Signature: sign("whisper", order.OrderID, "pay_1"),
	})
	require.NoError(t, err)

	// Jump to two days before expiry.
	svc.now = func() time.Time { return time.Now().Add(28 * 24 * time.Hour) }
	due, err := svc.ReminderCandidates(ctx, 3*24*time.Hour)
	require.NoError(t, err)
	require.Len(t, due, 1)

	require.NoError(t, svc.MarkReminderSent(ctx, due[0].ID))
	due, err = svc.ReminderCandidates(ctx, 3*24*time.Hour)
	require.NoError(t, err)
	require.Empty(t, due)
}

func TestWebhookSignature(t *testing.T) {
	body := []byte(`{"event":"payment.captured"}`)
	mac := hmac.New(sha256.New, []byte("hook-secret"))
	mac.Write(body)
	signature := hex.EncodeToString(mac.Sum(nil))

	require.True(t, VerifyWebhookSignature("hook-secret", body, signature))
	require.False(t, VerifyWebhookSignature("hook-secret", body, "forged"))
	require.False(t, VerifyWebhookSignature("other", body, signature))
}
