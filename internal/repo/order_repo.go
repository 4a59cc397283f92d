// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Order model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions. They follow the thin repository approach:
// no business rules, only persistence and query composition.
//
// Error semantics:
//   - When an order is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - Other DB errors are propagated unchanged.
package repo

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/pedidos-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// OrderFilter narrows order listings. Zero values mean "no constraint".
type OrderFilter struct {
	State          domain.State
	Priority       domain.Priority
	ExternalUserID int64
	Username       string // substring, case-insensitive
	AssignedTo     string
	CreatedFrom    *time.Time
	CreatedTo      *time.Time
	States         []domain.State
	Limit          int
	Offset         int
}

func applyOrderFilter(q *gorm.DB, f OrderFilter) *gorm.DB {
	if f.State != "" {
		q = q.Where("state = ?", f.State)
	}
	if len(f.States) > 0 {
		q = q.Where("state IN ?", f.States)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}
	if f.ExternalUserID != 0 {
		q = q.Where("external_user_id = ?", f.ExternalUserID)
	}
	if f.Username != "" {
		q = q.Where("LOWER(external_username) LIKE ?", "%"+strings.ToLower(f.Username)+"%")
	}
	if f.AssignedTo != "" {
		q = q.Where("assigned_to = ?", f.AssignedTo)
	}
	if f.CreatedFrom != nil {
		q = q.Where("created_at >= ?", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		q = q.Where("created_at <= ?", *f.CreatedTo)
	}
	return q
}

// CreateOrder inserts o. Defaults for State and Priority are applied when empty.
func CreateOrder(ctx context.Context, db *gorm.DB, o *domain.Order) error {
	if o.State == "" {
		o.State = domain.StatePending
	}
	if o.Priority == "" {
		o.Priority = domain.PriorityMedium
	}
	return db.WithContext(ctx).Create(o).Error
}

// GetOrder fetches an order by id.
func GetOrder(ctx context.Context, db *gorm.DB, id uint) (*domain.Order, error) {
	var o domain.Order
	if err := db.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// GetOrderForUpdate fetches an order and locks the row on server databases.
// It must be called on a transaction handle.
func GetOrderForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*domain.Order, error) {
	var o domain.Order
	if err := forUpdate(tx.WithContext(ctx)).First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// SaveOrder writes every column of o.
func SaveOrder(ctx context.Context, db *gorm.DB, o *domain.Order) error {
	return db.WithContext(ctx).Save(o).Error
}

// UpdateOrderFields applies a partial update and returns ErrNotFound when no
// row matched.
func UpdateOrderFields(ctx context.Context, db *gorm.DB, id uint, fields map[string]any) error {
	res := db.WithContext(ctx).Model(&domain.Order{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteOrder removes an order; dependent rows follow the FK rules.
func DeleteOrder(ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).Delete(&domain.Order{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountOrders returns the number of orders matching f (paging ignored).
func CountOrders(ctx context.Context, db *gorm.DB, f OrderFilter) (int64, error) {
	var n int64
	err := applyOrderFilter(db.WithContext(ctx).Model(&domain.Order{}), f).Count(&n).Error
	return n, err
}

// ListOrders returns orders matching f, newest first. A zero Limit means
// no limit.
func ListOrders(ctx context.Context, db *gorm.DB, f OrderFilter) ([]domain.Order, error) {
	q := applyOrderFilter(db.WithContext(ctx).Model(&domain.Order{}), f).
		Order("created_at DESC").Order("id DESC")
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var out []domain.Order
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListOrdersByIDs returns the orders with the given ids, in id order.
func ListOrdersByIDs(ctx context.Context, db *gorm.DB, ids []uint) ([]domain.Order, error) {
	var out []domain.Order
	if len(ids) == 0 {
		return out, nil
	}
	err := db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&out).Error
	return out, err
}

// ListActiveOrders returns non-terminal orders ordered by creation time.
func ListActiveOrders(ctx context.Context, db *gorm.DB) ([]domain.Order, error) {
	var out []domain.Order
	err := db.WithContext(ctx).
		Where("state IN ?", domain.ActiveStates()).
		Order("created_at ASC").Order("id ASC").
		Find(&out).Error
	return out, err
}
