package model

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User represents a registered user in the system
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"` // Never expose password in JSON
	Nickname     string         `gorm:"not null" json:"nickname"`
	Role         string         `gorm:"type:varchar(20);default:'USER'" json:"role"` // USER, ADMIN

	// Relationships
	RefreshTokens []RefreshToken  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Events        []Event         `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	Todos         []Todo          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Notifications []Notification  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Memberships   []ProjectMember `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// Roles returns the role claim list embedded into access tokens.
func (u *User) Roles() []string {
	if u.Role == "" {
		return []string{RoleUser}
	}
	return []string{u.Role}
}
