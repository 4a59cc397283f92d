package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/pedidos-backend/internal/domain"
)

// AppendHistory inserts one audit row. History rows are never updated.
func AppendHistory(ctx context.Context, db *gorm.DB, e *domain.HistoryEntry) error {
	return db.WithContext(ctx).Create(e).Error
}

// ListHistory returns the audit trail of an order, oldest first.
func ListHistory(ctx context.Context, db *gorm.DB, orderID uint) ([]domain.HistoryEntry, error) {
	var out []domain.HistoryEntry
	err := db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("changed_at ASC").Order("id ASC").
		Find(&out).Error
	return out, err
}

// CountHistory returns how many transitions an order went through.
func CountHistory(ctx context.Context, db *gorm.DB, orderID uint) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.HistoryEntry{}).Where("order_id = ?", orderID).Count(&n).Error
	return n, err
}
