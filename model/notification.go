package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notification types
const (
	NotificationEventReminder = "EVENT_REMINDER"
	NotificationInvite        = "INVITE"
	NotificationSystem        = "SYSTEM"
)

// Notification represents an in-app notification for a user
type Notification struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	Type      string         `gorm:"type:varchar(30);not null" json:"type"`
	Message   string         `gorm:"not null" json:"message"`
	// Type-specific context, e.g. {"event_id": 42, "start_at": "..."}
	Payload datatypes.JSON `json:"payload,omitempty"`
	ReadAt  *time.Time     `json:"read_at,omitempty"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
