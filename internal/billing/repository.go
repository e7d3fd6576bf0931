package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/invoxa/invoxa/internal/platform/httpx"
)

// Repository persists subscriptions in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const subscriptionColumns = `id, user_id, plan, status, amount, razorpay_order_id, razorpay_payment_id,
	starts_at, expires_at, reminder_sent_at, created_at, updated_at`

func scanSubscription(row pgx.Row) (Subscription, error) {
	var s Subscription
	err := row.Scan(&s.ID, &s.UserID, &s.Plan, &s.Status, &s.Amount, &s.RazorpayOrderID, &s.RazorpayPaymentID,
		&s.StartsAt, &s.ExpiresAt, &s.ReminderSentAt, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (r *Repository) Create(ctx context.Context, sub Subscription) (Subscription, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO subscriptions (user_id, plan, status, amount, razorpay_order_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+subscriptionColumns,
		sub.UserID, sub.Plan, sub.Status, int64(sub.Amount), sub.RazorpayOrderID)
	created, err := scanSubscription(row)
	if err != nil {
		return Subscription{}, fmt.Errorf("insert subscription: %w", err)
	}
	return created, nil
}

func (r *Repository) GetByOrderID(ctx context.Context, orderID string) (Subscription, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE razorpay_order_id = $1`, orderID)
	s, err := scanSubscription(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Subscription{}, fmt.Errorf("%w: subscription", httpx.ErrNotFound)
	}
	if err != nil {
		return Subscription{}, fmt.Errorf("get subscription: %w", err)
	}
	return s, nil
}

func (r *Repository) ListForUser(ctx context.Context, userID int64) ([]Subscription, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var out []Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repository) Activate(ctx context.Context, id int64, paymentID string, startsAt, expiresAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE subscriptions
		SET status = 'ACTIVE', razorpay_payment_id = $1, starts_at = $2, expires_at = $3, updated_at = NOW()
		WHERE id = $4 AND status = 'PENDING'`,
		paymentID, startsAt, expiresAt, id)
	if err != nil {
		return fmt.Errorf("activate subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: pending subscription", httpx.ErrNotFound)
	}
	return nil
}

func (r *Repository) HasActive(ctx context.Context, userID int64, now time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM subscriptions
			WHERE user_id = $1 AND status = 'ACTIVE' AND expires_at > $2
		)`, userID, now).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check active subscription: %w", err)
	}
	return exists, nil
}

func (r *Repository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE subscriptions
		SET status = 'EXPIRED', updated_at = NOW()
		WHERE status = 'ACTIVE' AND expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("expire subscriptions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *Repository) DueForReminder(ctx context.Context, from, until time.Time) ([]Subscription, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE status = 'ACTIVE'
		  AND expires_at > $1 AND expires_at <= $2
		  AND reminder_sent_at IS NULL
		ORDER BY expires_at`, from, until)
	if err != nil {
		return nil, fmt.Errorf("list reminder candidates: %w", err)
	}
	defer rows.Close()

	var out []Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repository) MarkReminderSent(ctx context.Context, id int64, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE subscriptions SET reminder_sent_at = $1, updated_at = NOW()
		WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("mark reminder sent: %w", err)
	}
	return nil
}
