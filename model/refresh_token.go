package model

import (
	"time"
)

// RefreshToken is one long-lived session per (user, device). The client holds
// an opaque secret; only its SHA-256 digest is stored here.
//
// Two invariants are enforced by the database, not application code:
//   - at most one live row (revoked_at IS NULL) per (user_id, device_info)
//   - token_hash is unique among live rows
type RefreshToken struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	UserID     uint   `gorm:"not null;uniqueIndex:uq_refresh_live_device,where:revoked_at IS NULL;index:idx_refresh_user_active,priority:1" json:"user_id"`
	DeviceInfo string `gorm:"type:varchar(255);not null;uniqueIndex:uq_refresh_live_device,where:revoked_at IS NULL" json:"device_info"`
	// SHA-256 of the raw refresh secret, 32 bytes
	TokenHash []byte     `gorm:"type:bytea;not null;uniqueIndex:uq_refresh_live_hash,where:revoked_at IS NULL" json:"-"`
	ExpiresAt time.Time  `gorm:"not null;index:idx_refresh_user_active,priority:2" json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for RefreshToken
func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

// IsRevoked reports whether the record has been explicitly revoked.
func (r *RefreshToken) IsRevoked() bool {
	return r.RevokedAt != nil
}

// IsActive reports whether the record is live and unexpired at the given time.
// "Revoked" and "expired" are distinct causes with the same effect on reissue.
func (r *RefreshToken) IsActive(now time.Time) bool {
	return r.RevokedAt == nil && r.ExpiresAt.After(now)
}
