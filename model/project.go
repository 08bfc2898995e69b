package model

import (
	"time"

	"gorm.io/gorm"
)

// Project statuses
const (
	ProjectInProgress = "IN_PROGRESS"
	ProjectCompleted  = "COMPLETED"
)

// Project member roles
const (
	MemberRoleOwner  = "OWNER"
	MemberRoleAdmin  = "ADMIN"
	MemberRoleMember = "MEMBER"
)

// Project represents a shared team calendar space
type Project struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	OwnerID     uint           `gorm:"not null;index" json:"owner_id"`
	Name        string         `gorm:"type:varchar(200);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	StartDate   time.Time      `gorm:"not null" json:"start_date"`
	EndDate     time.Time      `gorm:"not null" json:"end_date"`
	Status      string         `gorm:"type:varchar(20);not null;default:'IN_PROGRESS'" json:"status"`

	// Relationships
	Owner   User            `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	Members []ProjectMember `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
}

// ProjectMember links a user to a project with a role. One row per
// (project, user).
type ProjectMember struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ProjectID uint      `gorm:"not null;uniqueIndex:uq_project_member" json:"project_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:uq_project_member;index" json:"user_id"`
	Role      string    `gorm:"type:varchar(20);not null;default:'MEMBER'" json:"role"` // OWNER, ADMIN, MEMBER

	// Relationships
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	User    User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for ProjectMember
func (ProjectMember) TableName() string {
	return "project_members"
}

// CanInvite reports whether the member's role allows inviting others.
func (m *ProjectMember) CanInvite() bool {
	return m.Role == MemberRoleOwner || m.Role == MemberRoleAdmin
}
