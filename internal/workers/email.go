package workers

import (
	"context"
	"fmt"
	"strings"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/graylock-sec/graylock/internal/mailer"
	"github.com/graylock-sec/graylock/internal/models"
	"github.com/graylock-sec/graylock/internal/tasks"
)

// HandleOrderConfirmation emails the customer a summary of their order
func HandleOrderConfirmation(ctx context.Context, t *asynq.Task, db *gorm.DB, m mailer.Mailer, log zerolog.Logger) error {
	payload, err := tasks.ParseEmailPayload(t)
	if err != nil {
		return err
	}

	var order models.Order
	err = db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Where("id = ?", payload.OrderID).
		First(&order).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			// Order was deleted before the task ran; nothing to send
			log.Warn().Str("order_id", payload.OrderID).Msg("Order gone before confirmation email")
			return nil
		}
		return fmt.Errorf("failed to load order %s: %w", payload.OrderID, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Thank you for your order %s.\n\n", order.ID)
	for _, item := range order.Items {
		name := item.ProductID
		if item.Product != nil {
			name = item.Product.Name
		}
		fmt.Fprintf(&b, "  %dx %s @ %.2f\n", item.Quantity, name, item.UnitPrice)
	}
	fmt.Fprintf(&b, "\nTotal: %.2f\n", order.Total)
	fmt.Fprintf(&b, "Status: %s\n", order.Status)

	subject := fmt.Sprintf("Graylock Security - order %s received", order.ID)
	if err := m.Send(order.Email, subject, b.String()); err != nil {
		// Returning the error lets asynq retry delivery
		return err
	}

	log.Info().Str("order_id", order.ID).Msg("Order confirmation email sent")
	return nil
}

// HandleCommentNotification emails every admin about a comment waiting
// for moderation
func HandleCommentNotification(ctx context.Context, t *asynq.Task, db *gorm.DB, m mailer.Mailer, log zerolog.Logger) error {
	payload, err := tasks.ParseEmailPayload(t)
	if err != nil {
		return err
	}

	var comment models.Comment
	if err := db.WithContext(ctx).Where("id = ?", payload.CommentID).First(&comment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			log.Warn().Str("comment_id", payload.CommentID).Msg("Comment gone before notification email")
			return nil
		}
		return fmt.Errorf("failed to load comment %s: %w", payload.CommentID, err)
	}

	var admins []models.User
	err = db.WithContext(ctx).
		Where("role IN ?", []models.Role{models.RoleAdmin, models.RoleSuperAdmin}).
		Find(&admins).Error
	if err != nil {
		return fmt.Errorf("failed to load admins: %w", err)
	}

	body := fmt.Sprintf("New comment from %s awaiting moderation:\n\n%s\n", comment.AuthorName, comment.Body)
	subject := "Graylock Security - comment awaiting moderation"

	for _, admin := range admins {
		if err := m.Send(admin.Email, subject, body); err != nil {
			return err
		}
	}

	log.Info().Str("comment_id", comment.ID).Int("admins", len(admins)).Msg("Comment notification sent")
	return nil
}
