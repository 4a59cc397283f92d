package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/pedidos-backend/internal/domain"
)

// CreateMessageLog stores an inbound chat message.
func CreateMessageLog(ctx context.Context, db *gorm.DB, m *domain.MessageLog) error {
	return db.WithContext(ctx).Create(m).Error
}

// MarkMessageLogOrder flags a logged message as having produced orders.
func MarkMessageLogOrder(ctx context.Context, db *gorm.DB, id uint) error {
	return db.WithContext(ctx).Model(&domain.MessageLog{}).Where("id = ?", id).Update("is_order", true).Error
}

// CountMessageLogs counts logged messages; externalUserID 0 counts all users.
func CountMessageLogs(ctx context.Context, db *gorm.DB, externalUserID int64) (int64, error) {
	var n int64
	q := db.WithContext(ctx).Model(&domain.MessageLog{})
	if externalUserID != 0 {
		q = q.Where("external_user_id = ?", externalUserID)
	}
	err := q.Count(&n).Error
	return n, err
}
