package billing

import (
	"time"

	"github.com/invoxa/invoxa/internal/money"
)

// Subscription plans.
const (
	PlanMonthly = "monthly"
	PlanYearly  = "yearly"
)

// Subscription states. A subscription is created PENDING with a payment
// order and becomes ACTIVE once the gateway signature verifies.
const (
	StatusPending = "PENDING"
	StatusActive  = "ACTIVE"
	StatusExpired = "EXPIRED"
)

// Subscription is one paid plan period for a user.
type Subscription struct {
	ID                int64        `json:"id"`
	UserID            int64        `json:"user_id"`
	Plan              string       `json:"plan"`
	Status            string       `json:"status"`
	Amount            money.Amount `json:"amount"`
	RazorpayOrderID   string       `json:"razorpay_order_id"`
	RazorpayPaymentID string       `json:"razorpay_payment_id,omitempty"`
	StartsAt          *time.Time   `json:"starts_at,omitempty"`
	ExpiresAt         *time.Time   `json:"expires_at,omitempty"`
	ReminderSentAt    *time.Time   `json:"reminder_sent_at,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// CreateOrderRequest starts a subscription purchase.
type CreateOrderRequest struct {
	Plan string `json:"plan" validate:"required,oneof=monthly yearly"`
}

// OrderResponse is returned to the client to launch the gateway checkout.
type OrderResponse struct {
	SubscriptionID int64        `json:"subscription_id"`
	OrderID        string       `json:"order_id"`
	Amount         money.Amount `json:"amount"`
	Currency       string       `json:"currency"`
	KeyID          string       `json:"key_id"`
}

// VerifyPaymentRequest completes a checkout with the gateway's signature.
type VerifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id" validate:"required"`
	PaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature string `json:"razorpay_signature" validate:"required"`
}
