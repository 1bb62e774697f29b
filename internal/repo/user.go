package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/camera_shop/internal/models"
)

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return r.DB.WithContext(ctx).Create(u).Error
}

func (r *GormRepo) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormRepo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormRepo) EmailTaken(ctx context.Context, email string, except uuid.UUID) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("email = ? AND id <> ?", strings.ToLower(strings.TrimSpace(email)), except).
		Count(&n).Error
	return n > 0, err
}

func (r *GormRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := r.DB.WithContext(ctx).Order("created_at ASC").Find(&users).Error
	return users, err
}

func (r *GormRepo) SaveUser(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return r.DB.WithContext(ctx).Save(u).Error
}

// DeleteUser removes the user and their refresh tokens. Orders and reviews keep
// the user id for history.
func (r *GormRepo) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.User{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
