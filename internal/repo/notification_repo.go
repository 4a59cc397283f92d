package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/pedidos-backend/internal/domain"
)

// CreateNotification persists the outcome of one delivery attempt.
func CreateNotification(ctx context.Context, db *gorm.DB, n *domain.NotificationRecord) error {
	return db.WithContext(ctx).Create(n).Error
}

// ListNotifications returns the delivery attempts for an order, oldest first.
func ListNotifications(ctx context.Context, db *gorm.DB, orderID uint) ([]domain.NotificationRecord, error) {
	var out []domain.NotificationRecord
	err := db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("sent_at ASC").Order("id ASC").
		Find(&out).Error
	return out, err
}

// ListNotificationsByCategory returns every attempt of the given category.
func ListNotificationsByCategory(ctx context.Context, db *gorm.DB, c domain.NotificationCategory) ([]domain.NotificationRecord, error) {
	var out []domain.NotificationRecord
	err := db.WithContext(ctx).Where("category = ?", c).Order("id ASC").Find(&out).Error
	return out, err
}
