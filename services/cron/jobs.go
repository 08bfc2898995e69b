package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/cocalhq/cocal-api/model"
)

const (
	// reminderLeadTime is how far ahead of an event's start a reminder fires.
	reminderLeadTime = 15 * time.Minute
	// deadTokenRetention is how long revoked/expired refresh records are kept
	// before the sweep removes them.
	deadTokenRetention = 7 * 24 * time.Hour
	jobTimeout         = 30 * time.Second
)

// DispatchEventReminders creates an EVENT_REMINDER notification for every
// event starting within the lead window that has not been reminded yet.
func (m *CronManager) DispatchEventReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	now := time.Now()
	horizon := now.Add(reminderLeadTime)

	var events []model.Event
	err := m.db.WithContext(ctx).
		Where("reminder_sent_at IS NULL AND start_at > ? AND start_at <= ?", now, horizon).
		Find(&events).Error
	if err != nil {
		log.Println("Reminder sweep failed to load events:", err)
		return
	}

	for _, event := range events {
		payload, err := json.Marshal(map[string]interface{}{
			"event_id": event.ID,
			"start_at": event.StartAt,
		})
		if err != nil {
			continue
		}

		notification := model.Notification{
			UserID:  event.OwnerID,
			Type:    model.NotificationEventReminder,
			Message: fmt.Sprintf("'%s' starts at %s", event.Title, event.StartAt.Format("15:04")),
			Payload: datatypes.JSON(payload),
		}

		err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&notification).Error; err != nil {
				return err
			}
			return tx.Model(&model.Event{}).
				Where("id = ?", event.ID).
				Update("reminder_sent_at", now).Error
		})
		if err != nil {
			log.Println("Failed to dispatch reminder for event", event.ID, ":", err)
		}
	}
}

// PurgeDeadRefreshTokens removes refresh records that have been revoked or
// expired for longer than the retention window.
func (m *CronManager) PurgeDeadRefreshTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	purged, err := m.refreshTokens.PurgeDead(ctx, deadTokenRetention)
	if err != nil {
		log.Println("Refresh token sweep failed:", err)
		return
	}
	if purged > 0 {
		log.Println("Refresh token sweep removed", purged, "dead records")
	}
}
