package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cocalhq/cocal-api/model"
)

var (
	// ErrRefreshTokenNotFound means no live, unexpired record matched.
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	// ErrTokenHashConflict means the stored digest collided with another live
	// record. Requires a 32-byte SHA-256 collision, so in practice a bug.
	ErrTokenHashConflict = errors.New("refresh token hash already in use")
)

// RefreshTokenService persists one refresh session per (user, device) on
// Postgres. All mutation goes through these methods; the live-row uniqueness
// is enforced by partial unique indexes so concurrent logins cannot create
// two live rows for the same device.
type RefreshTokenService struct {
	db *gorm.DB
}

// NewRefreshTokenService creates a new refresh token service
func NewRefreshTokenService(db *gorm.DB) *RefreshTokenService {
	return &RefreshTokenService{db: db}
}

// Upsert inserts a live record for (userID, deviceInfo) or, when one already
// exists, replaces its hash and bumps updated_at. expires_at and revoked_at
// are deliberately left untouched: expiry is fixed at first issuance for a
// device (fixed-window policy) and a revoked row is never revived. The
// ON CONFLICT clause targets the partial live-row index, making the whole
// operation a single atomic statement.
func (s *RefreshTokenService) Upsert(ctx context.Context, userID uint, deviceInfo string, hash []byte, expiresAt time.Time) error {
	record := model.RefreshToken{
		UserID:     userID,
		DeviceInfo: deviceInfo,
		TokenHash:  hash,
		ExpiresAt:  expiresAt,
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "device_info"}},
		TargetWhere: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "revoked_at IS NULL"},
		}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"token_hash": hash,
			"updated_at": time.Now(),
		}),
	}).Create(&record).Error

	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrTokenHashConflict
	}
	return err
}

// FindActiveByHash looks up a record by digest. The query itself filters on
// revoked_at IS NULL and expires_at > now, so expired-but-unrevoked rows are
// not found rather than filtered after the read.
func (s *RefreshTokenService) FindActiveByHash(ctx context.Context, hash []byte) (*model.RefreshToken, error) {
	var record model.RefreshToken
	err := s.db.WithContext(ctx).
		Where("token_hash = ? AND revoked_at IS NULL AND expires_at > ?", hash, time.Now()).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefreshTokenNotFound
		}
		return nil, err
	}
	return &record, nil
}

// RevokeDevice marks the live record for (userID, deviceInfo) revoked and
// also forces expires_at to now as a second invalidation. No-op when no live
// record exists; logging out twice is not an error.
func (s *RefreshTokenService) RevokeDevice(ctx context.Context, userID uint, deviceInfo string) error {
	now := time.Now()
	return s.db.WithContext(ctx).
		Model(&model.RefreshToken{}).
		Where("user_id = ? AND device_info = ? AND revoked_at IS NULL", userID, deviceInfo).
		Updates(map[string]interface{}{
			"revoked_at": now,
			"expires_at": now,
			"updated_at": now,
		}).Error
}

// RevokeAll marks every live record for the user revoked and returns how many
// rows were affected, so callers can distinguish "logged out N sessions" from
// "already logged out everywhere".
func (s *RefreshTokenService) RevokeAll(ctx context.Context, userID uint) (int64, error) {
	now := time.Now()
	result := s.db.WithContext(ctx).
		Model(&model.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Updates(map[string]interface{}{
			"revoked_at": now,
			"expires_at": now,
			"updated_at": now,
		})
	return result.RowsAffected, result.Error
}

// DeleteAllForUser hard-deletes every record for the user. Account deletion
// only; logout always revokes instead.
func (s *RefreshTokenService) DeleteAllForUser(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.RefreshToken{}).Error
}

// PurgeDead removes revoked or expired records that have been dead longer
// than the retention window. Called by the housekeeping sweep.
func (s *RefreshTokenService) PurgeDead(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	result := s.db.WithContext(ctx).
		Where("(revoked_at IS NOT NULL AND revoked_at < ?) OR expires_at < ?", cutoff, cutoff).
		Delete(&model.RefreshToken{})
	return result.RowsAffected, result.Error
}
