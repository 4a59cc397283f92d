package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/pedidos-backend/internal/domain"
)

// StoreRefresh persists a refresh token hash for userID.
func StoreRefresh(ctx context.Context, db *gorm.DB, userID uint, hash string, expiresAt time.Time) (*domain.RefreshToken, error) {
	rt := &domain.RefreshToken{
		TokenHash: hash,
		UserID:    userID,
		ExpiresAt: expiresAt.UTC(),
	}
	if err := db.WithContext(ctx).Create(rt).Error; err != nil {
		return nil, err
	}
	return rt, nil
}

// FindRefresh looks a token up by hash regardless of its state.
func FindRefresh(ctx context.Context, db *gorm.DB, hash string) (*domain.RefreshToken, error) {
	var rt domain.RefreshToken
	if err := db.WithContext(ctx).Where("token_hash = ?", hash).First(&rt).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

// RevokeRefresh marks a single token revoked. It reports whether a live
// token was actually revoked, so concurrent rotations cannot both win.
func RevokeRefresh(ctx context.Context, db *gorm.DB, id uint) (bool, error) {
	res := db.WithContext(ctx).Model(&domain.RefreshToken{}).
		Where("id = ? AND revoked = ?", id, false).
		Update("revoked", true)
	return res.RowsAffected == 1, res.Error
}

// RevokeAllForUser revokes every live token of userID and returns how many
// rows changed.
func RevokeAllForUser(ctx context.Context, db *gorm.DB, userID uint) (int64, error) {
	res := db.WithContext(ctx).Model(&domain.RefreshToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true)
	return res.RowsAffected, res.Error
}

// CountActiveRefresh counts non-revoked, unexpired tokens of userID.
func CountActiveRefresh(ctx context.Context, db *gorm.DB, userID uint, now time.Time) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.RefreshToken{}).
		Where("user_id = ? AND revoked = ? AND expires_at > ?", userID, false, now).
		Count(&n).Error
	return n, err
}

// DeleteExpiredRefresh removes tokens that expired before now.
func DeleteExpiredRefresh(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&domain.RefreshToken{})
	return res.RowsAffected, res.Error
}
