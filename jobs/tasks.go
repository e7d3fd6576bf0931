package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/invoxa/invoxa/internal/billing"
	"github.com/invoxa/invoxa/internal/mail"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeExpirySweep flips overdue subscriptions to EXPIRED.
	TaskTypeExpirySweep = "billing:expiry_sweep"
	// TaskTypeExpiryReminders emails users whose subscription is about to lapse.
	TaskTypeExpiryReminders = "billing:expiry_reminders"
)

// reminderWindow is how far ahead of expiry the reminder goes out.
const reminderWindow = 3 * 24 * time.Hour

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	HTML    bool   `json:"html"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// NewExpirySweepTask constructs the periodic subscription sweep task.
func NewExpirySweepTask() *asynq.Task {
	return asynq.NewTask(TaskTypeExpirySweep, nil)
}

// NewExpiryRemindersTask constructs the periodic reminder task.
func NewExpiryRemindersTask() *asynq.Task {
	return asynq.NewTask(TaskTypeExpiryReminders, nil)
}

// NewSendEmailHandler returns the mail:send handler bound to the SMTP
// sender.
func NewSendEmailHandler(sender *mail.Sender, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload SendEmailPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if err := sender.Send(mail.Message{
			To:      []string{payload.To},
			Subject: payload.Subject,
			Body:    payload.Body,
			HTML:    payload.HTML,
		}); err != nil {
			logger.Error("send email task", slog.String("to", payload.To), slog.Any("error", err))
			return err
		}
		logger.Info("email sent", slog.String("to", payload.To), slog.String("subject", payload.Subject))
		return nil
	}
}

// NewExpirySweepHandler returns the handler that expires lapsed
// subscriptions.
func NewExpirySweepHandler(svc *billing.Service, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		n, err := svc.ExpireOverdue(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			logger.Info("subscriptions expired", slog.Int64("count", n))
		}
		return nil
	}
}

// UserEmailLookup resolves a user's email address for reminder delivery.
type UserEmailLookup func(ctx context.Context, userID int64) (string, error)

// NewExpiryRemindersHandler returns the handler that emails users whose
// plan lapses within the reminder window.
func NewExpiryRemindersHandler(svc *billing.Service, emails UserEmailLookup, enqueue func(ctx context.Context, payload SendEmailPayload) error, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		due, err := svc.ReminderCandidates(ctx, reminderWindow)
		if err != nil {
			return err
		}
		for _, sub := range due {
			address, err := emails(ctx, sub.UserID)
			if err != nil {
				logger.Warn("reminder email lookup", slog.Int64("user_id", sub.UserID), slog.Any("error", err))
				continue
			}
			body := fmt.Sprintf("Your %s plan expires on %s. Renew to keep creating invoices without interruption.",
				sub.Plan, sub.ExpiresAt.Format("02 Jan 2006"))
			if err := enqueue(ctx, SendEmailPayload{
				To:      address,
				Subject: "Your subscription is about to expire",
				Body:    body,
			}); err != nil {
				logger.Warn("enqueue reminder", slog.Int64("subscription_id", sub.ID), slog.Any("error", err))
				continue
			}
			if err := svc.MarkReminderSent(ctx, sub.ID); err != nil {
				logger.Warn("mark reminder sent", slog.Int64("subscription_id", sub.ID), slog.Any("error", err))
			}
		}
		return nil
	}
}
