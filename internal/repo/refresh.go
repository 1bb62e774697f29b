package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/camera_shop/internal/models"
)

var ErrRefreshUnusable = errors.New("refresh token expired or revoked")

func (r *GormRepo) AddRefreshToken(ctx context.Context, t *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Create(t).Error
}

func refreshExpiredOrRevoked(tx *gorm.DB, jti, tokenHash string) error {
	var t models.RefreshToken
	if err := tx.Where("jti = ?", jti).First(&t).Error; err != nil {
		return err
	}
	if t.Revoked || t.ExpiresAt < time.Now().Unix() || t.Token != tokenHash {
		return ErrRefreshUnusable
	}
	return nil
}

func revoke(tx *gorm.DB, jti string) *gorm.DB {
	return tx.Model(&models.RefreshToken{}).
		Where("jti = ? AND revoked = ?", jti, false).
		Update("revoked", true)
}

// RotateRefreshToken revokes the presented token and stores its replacement in
// one transaction, so a token can be exchanged at most once.
func (r *GormRepo) RotateRefreshToken(ctx context.Context, oldJTI, oldHash string, next *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := refreshExpiredOrRevoked(tx, oldJTI, oldHash); err != nil {
			return err
		}
		res := revoke(tx, oldJTI)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRefreshUnusable
		}
		return tx.Create(next).Error
	})
}

func (r *GormRepo) RevokeRefreshToken(ctx context.Context, jti string) error {
	return revoke(r.DB.WithContext(ctx), jti).Error
}
