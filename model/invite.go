package model

import (
	"time"

	"gorm.io/gorm"
)

// Invite statuses
const (
	InviteStatusPending  = "PENDING"
	InviteStatusAccepted = "ACCEPTED"
	InviteStatusDeclined = "DECLINED"
)

// Invite asks a user to join a project. Pending invites expire; a declined
// invite keeps its row so repeated invitations can be rate-limited.
type Invite struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	ProjectID   uint           `gorm:"not null;index" json:"project_id"`
	InviterID   uint           `gorm:"not null" json:"inviter_id"`
	InviteeID   uint           `gorm:"not null;index" json:"invitee_id"`
	Status      string         `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	ExpiresAt   time.Time      `gorm:"not null" json:"expires_at"`
	RespondedAt *time.Time     `json:"responded_at,omitempty"`

	// Relationships
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	Inviter User    `gorm:"foreignKey:InviterID;constraint:OnDelete:CASCADE" json:"-"`
	Invitee User    `gorm:"foreignKey:InviteeID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsExpired reports whether the invite can no longer be accepted.
func (i *Invite) IsExpired(now time.Time) bool {
	return !i.ExpiresAt.After(now)
}
