package workers

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/graylock-sec/graylock/internal/models"
)

// StartMaintenance schedules the nightly cleanup jobs and returns the
// running scheduler so the caller can stop it on shutdown.
func StartMaintenance(db *gorm.DB, pendingMaxAge time.Duration, log zerolog.Logger) *cron.Cron {
	c := cron.New()

	// 3am daily, after the day's traffic has settled
	_, err := c.AddFunc("0 3 * * *", func() {
		CancelStaleOrders(db, pendingMaxAge, log)
		PruneRejectedComments(db, log)
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to schedule maintenance job")
		return c
	}

	c.Start()
	log.Info().Dur("pending_max_age", pendingMaxAge).Msg("Maintenance scheduler started")
	return c
}

// CancelStaleOrders cancels PENDING orders that were never paid.
// The payment intent is left to expire on the provider's side.
func CancelStaleOrders(db *gorm.DB, maxAge time.Duration, log zerolog.Logger) {
	cutoff := time.Now().Add(-maxAge)

	result := db.Model(&models.Order{}).
		Where("status = ? AND created_at < ?", models.OrderPending, cutoff).
		Update("status", models.OrderCancelled)
	if result.Error != nil {
		log.Error().Err(result.Error).Msg("Failed to cancel stale orders")
		return
	}

	if result.RowsAffected > 0 {
		log.Info().Int64("count", result.RowsAffected).Msg("Cancelled stale pending orders")
	}
}

// PruneRejectedComments deletes comments that sat unapproved for 30
// days; moderation treats silence as rejection.
func PruneRejectedComments(db *gorm.DB, log zerolog.Logger) {
	cutoff := time.Now().AddDate(0, 0, -30)

	result := db.Where("approved = ? AND created_at < ?", false, cutoff).Delete(&models.Comment{})
	if result.Error != nil {
		log.Error().Err(result.Error).Msg("Failed to prune unapproved comments")
		return
	}

	if result.RowsAffected > 0 {
		log.Info().Int64("count", result.RowsAffected).Msg("Pruned unapproved comments")
	}
}
