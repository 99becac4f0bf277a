package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeInviteEmail is the task type for sending invitation emails.
	TaskTypeInviteEmail = "mail:invite"
	// TaskTypeEventProgress is the task type for advancing event schedules.
	TaskTypeEventProgress = "event:progress"
)

// InviteEmailPayload describes an invitation notification.
type InviteEmailPayload struct {
	Email   string `json:"email"`
	EventID int64  `json:"eventId"`
	Title   string `json:"title"`
}

// NewInviteEmailTask constructs an Asynq task.
func NewInviteEmailTask(payload InviteEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeInviteEmail, data), nil
}

// NewEventProgressTask constructs the scheduled progress task.
func NewEventProgressTask() *asynq.Task {
	return asynq.NewTask(TaskTypeEventProgress, nil)
}

// NewInviteEmailHandler returns a handler that delivers invitation emails.
func NewInviteEmailHandler(mailer Mailer, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload InviteEmailPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		subject := fmt.Sprintf("You are invited: %s", payload.Title)
		body := fmt.Sprintf("You have been invited to %q (event #%d). Log in to respond.", payload.Title, payload.EventID)
		if err := mailer.Send(payload.Email, subject, body); err != nil {
			if logger != nil {
				logger.Error("send invite email", slog.String("to", payload.Email), slog.Any("error", err))
			}
			return err
		}
		if logger != nil {
			logger.Info("invite email sent", slog.String("to", payload.Email), slog.Int64("event_id", payload.EventID))
		}
		return nil
	}
}
