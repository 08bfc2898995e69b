package model

import (
	"time"

	"gorm.io/gorm"
)

// Event represents a calendar event owned by a user
type Event struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	OwnerID     uint           `gorm:"not null;index" json:"owner_id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	Location    string         `json:"location,omitempty"`
	Color       string         `gorm:"type:varchar(20)" json:"color,omitempty"`
	AllDay      bool           `gorm:"default:false" json:"all_day"`
	StartAt     time.Time      `gorm:"not null;index" json:"start_at"`
	EndAt       time.Time      `gorm:"not null" json:"end_at"`
	// Set once the reminder sweep has dispatched a notification for this event
	ReminderSentAt *time.Time `json:"-"`

	// Relationships
	Owner User `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
}
