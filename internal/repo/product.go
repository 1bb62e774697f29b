package repo

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/camera_shop/internal/models"
)

func (r *GormRepo) keywordScope(keyword string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		keyword = strings.TrimSpace(keyword)
		if keyword == "" {
			return db
		}
		return db.Where(`LOWER(name) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(keyword))+"%")
	}
}

func (r *GormRepo) ListProducts(ctx context.Context, keyword string, offset, limit int) (int64, []models.Product, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Scopes(r.keywordScope(keyword)).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, limit)
	if err := r.DB.WithContext(ctx).
		Scopes(r.keywordScope(keyword)).
		Preload("Reviews").
		Order("created_at ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).Preload("Reviews").First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProductsByIDs returns the products in the order of ids, skipping ids that no longer exist.
func (r *GormRepo) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var found []models.Product
	if err := r.DB.WithContext(ctx).Preload("Reviews").Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *GormRepo) TopProducts(ctx context.Context, n int) ([]models.Product, error) {
	items := make([]models.Product, 0, n)
	if err := r.DB.WithContext(ctx).Order("rating DESC, num_reviews DESC").Limit(n).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Omit("Reviews").Create(p).Error
}

// UpdateProductColumns writes only cols of p. Counters maintained by
// other statements (stock, rating, num_reviews) must not be listed unless
// the caller sets them explicitly. The slug follows the name.
func (r *GormRepo) UpdateProductColumns(ctx context.Context, p *models.Product, cols []string) error {
	if len(cols) == 0 {
		return nil
	}
	if slices.Contains(cols, "name") && !slices.Contains(cols, "slug") {
		cols = append(cols, "slug")
	}
	cols = append(cols, "updated_at")
	res := r.DB.WithContext(ctx).Model(p).Select(cols).Updates(p)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Product{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// LockProduct reads the product row FOR UPDATE so concurrent writers of its
// counters queue behind the caller's transaction. SQLite ignores the lock.
func (r *GormRepo) LockProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) HasReviewed(ctx context.Context, productID, userID uuid.UUID) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Review{}).
		Where("product_id = ? AND user_id = ?", productID, userID).
		Count(&n).Error
	return n > 0, err
}

func (r *GormRepo) CreateReview(ctx context.Context, rv *models.Review) error {
	return r.DB.WithContext(ctx).Create(rv).Error
}

// RecomputeRating sets rating to the mean of the product's reviews and
// numReviews to their count.
func (r *GormRepo) RecomputeRating(ctx context.Context, productID uuid.UUID) error {
	var agg struct {
		N   int64
		Avg float64
	}
	if err := r.DB.WithContext(ctx).Model(&models.Review{}).
		Select("COUNT(*) AS n, COALESCE(AVG(rating), 0) AS avg").
		Where("product_id = ?", productID).
		Scan(&agg).Error; err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumns(map[string]any{"rating": agg.Avg, "num_reviews": agg.N}).Error
}

// DecrementStock takes qty units only if that many are left. It reports false
// when the row was not updated.
func (r *GormRepo) DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
