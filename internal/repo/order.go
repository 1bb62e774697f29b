package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/camera_shop/internal/models"
)

func (r *GormRepo) FindOrderByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).
		Where("user_id = ? AND idempotency_key = ?", userID, key).
		First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormRepo) CreateOrder(ctx context.Context, o *models.Order) error {
	return r.DB.WithContext(ctx).Omit("User").Create(o).Error
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).
		Preload("OrderItems").
		Preload("User").
		First(&o, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormRepo) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	orders := []models.Order{}
	err := r.DB.WithContext(ctx).
		Preload("OrderItems").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (r *GormRepo) ListOrders(ctx context.Context) ([]models.Order, error) {
	orders := []models.Order{}
	err := r.DB.WithContext(ctx).
		Preload("OrderItems").
		Preload("User").
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (r *GormRepo) MarkOrderPaid(ctx context.Context, id uuid.UUID, result models.PaymentResult, at time.Time) error {
	return r.updateOrder(ctx, id,
		models.Order{IsPaid: true, PaidAt: &at, PaymentResult: &result},
		"is_paid", "paid_at", "payment_result")
}

func (r *GormRepo) MarkOrderDelivered(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.updateOrder(ctx, id,
		models.Order{IsDelivered: true, DeliveredAt: &at},
		"is_delivered", "delivered_at")
}

// updateOrder writes the selected columns from a struct so serialized fields
// go through their serializer.
func (r *GormRepo) updateOrder(ctx context.Context, id uuid.UUID, values models.Order, cols ...string) error {
	res := r.DB.WithContext(ctx).Model(&models.Order{ID: id}).Select(cols).Updates(&values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
