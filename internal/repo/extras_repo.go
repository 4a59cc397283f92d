package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/pedidos-backend/internal/domain"
)

// CreateComment inserts a staff comment.
func CreateComment(ctx context.Context, db *gorm.DB, c *domain.OrderComment) error {
	return db.WithContext(ctx).Create(c).Error
}

// ListComments returns an order's comments, oldest first.
func ListComments(ctx context.Context, db *gorm.DB, orderID uint) ([]domain.OrderComment, error) {
	var out []domain.OrderComment
	err := db.WithContext(ctx).Where("order_id = ?", orderID).
		Order("created_at ASC").Order("id ASC").Find(&out).Error
	return out, err
}

// CreateImage inserts an image reference.
func CreateImage(ctx context.Context, db *gorm.DB, img *domain.OrderImage) error {
	return db.WithContext(ctx).Create(img).Error
}

// ListImages returns an order's images in insertion order.
func ListImages(ctx context.Context, db *gorm.DB, orderID uint) ([]domain.OrderImage, error) {
	var out []domain.OrderImage
	err := db.WithContext(ctx).Where("order_id = ?", orderID).Order("id ASC").Find(&out).Error
	return out, err
}

// DeleteImage removes one image reference.
func DeleteImage(ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).Delete(&domain.OrderImage{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateFilter inserts a saved filter.
func CreateFilter(ctx context.Context, db *gorm.DB, f *domain.SavedFilter) error {
	return db.WithContext(ctx).Create(f).Error
}

// GetFilter fetches a filter owned by userID.
func GetFilter(ctx context.Context, db *gorm.DB, id, userID uint) (*domain.SavedFilter, error) {
	var f domain.SavedFilter
	if err := db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

// ListFilters returns a user's filters, default first.
func ListFilters(ctx context.Context, db *gorm.DB, userID uint) ([]domain.SavedFilter, error) {
	var out []domain.SavedFilter
	err := db.WithContext(ctx).Where("user_id = ?", userID).
		Order("is_default DESC").Order("created_at ASC").Order("id ASC").
		Find(&out).Error
	return out, err
}

// ClearDefaultFilters unsets is_default on every filter of userID except keepID.
func ClearDefaultFilters(ctx context.Context, db *gorm.DB, userID, keepID uint) error {
	return db.WithContext(ctx).Model(&domain.SavedFilter{}).
		Where("user_id = ? AND id <> ? AND is_default = ?", userID, keepID, true).
		Update("is_default", false).Error
}

// SaveFilter writes every column of f.
func SaveFilter(ctx context.Context, db *gorm.DB, f *domain.SavedFilter) error {
	return db.WithContext(ctx).Save(f).Error
}

// DeleteFilter removes a filter owned by userID.
func DeleteFilter(ctx context.Context, db *gorm.DB, id, userID uint) error {
	res := db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&domain.SavedFilter{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
