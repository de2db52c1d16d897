package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	// Outbound email tasks (consumed by cmd/worker)
	TypeOrderConfirmation   = "email:order_confirmation"
	TypeCommentNotification = "email:comment_notification"
)

// EmailPayload is the common payload for email delivery tasks
type EmailPayload struct {
	OrderID   string `json:"order_id,omitempty"`
	CommentID string `json:"comment_id,omitempty"`
}

// NewOrderConfirmationTask creates a task to email an order confirmation
func NewOrderConfirmationTask(orderID string) (*asynq.Task, error) {
	payload, err := json.Marshal(EmailPayload{
		OrderID: orderID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeOrderConfirmation, payload), nil
}

// NewCommentNotificationTask creates a task to notify admins of a new comment
func NewCommentNotificationTask(commentID string) (*asynq.Task, error) {
	payload, err := json.Marshal(EmailPayload{
		CommentID: commentID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeCommentNotification, payload), nil
}

// ParseEmailPayload parses an email payload from an Asynq task
func ParseEmailPayload(task *asynq.Task) (EmailPayload, error) {
	var payload EmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return payload, nil
}
