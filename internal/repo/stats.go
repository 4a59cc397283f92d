// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides aggregate queries used by the statistics
// endpoints and for conditional responses (ETag generation) in the HTTP layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/pedidos-backend/internal/domain"
)

// OrdersStats returns the total number of orders and the greatest
// UpdatedAt among them. When there are no orders maxUpdatedAt is nil.
func OrdersStats(ctx context.Context, db *gorm.DB) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Order{})

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}

// CountOrdersByState returns a count for every known state, zeros included.
// externalUserID 0 counts all users.
func CountOrdersByState(ctx context.Context, db *gorm.DB, externalUserID int64) (map[domain.State]int64, error) {
	var rows []struct {
		State domain.State
		N     int64
	}
	q := db.WithContext(ctx).Model(&domain.Order{}).Select("state, COUNT(*) AS n")
	if externalUserID != 0 {
		q = q.Where("external_user_id = ?", externalUserID)
	}
	if err := q.Group("state").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[domain.State]int64, len(domain.AllStates()))
	for _, s := range domain.AllStates() {
		out[s] = 0
	}
	for _, r := range rows {
		out[r.State] = r.N
	}
	return out, nil
}

// CountOrdersByPriority returns a count per priority, zeros included.
func CountOrdersByPriority(ctx context.Context, db *gorm.DB) (map[domain.Priority]int64, error) {
	var rows []struct {
		Priority domain.Priority
		N        int64
	}
	if err := db.WithContext(ctx).Model(&domain.Order{}).
		Select("priority, COUNT(*) AS n").Group("priority").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := map[domain.Priority]int64{
		domain.PriorityHigh:   0,
		domain.PriorityMedium: 0,
		domain.PriorityLow:    0,
	}
	for _, r := range rows {
		out[r.Priority] = r.N
	}
	return out, nil
}

// CountOrdersByAssignee groups assigned orders by assignee.
func CountOrdersByAssignee(ctx context.Context, db *gorm.DB) (map[string]int64, error) {
	var rows []struct {
		AssignedTo string
		N          int64
	}
	if err := db.WithContext(ctx).Model(&domain.Order{}).
		Select("assigned_to, COUNT(*) AS n").
		Where("assigned_to IS NOT NULL AND assigned_to <> ''").
		Group("assigned_to").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.AssignedTo] = r.N
	}
	return out, nil
}

// OrderTimes is the projection used to compute lifecycle durations.
type OrderTimes struct {
	CreatedAt       time.Time
	ConfirmedAt     *time.Time
	InPreparationAt *time.Time
	CompletedAt     *time.Time
}

// ListOrderTimes loads the lifecycle timestamps of every order. Durations
// and hour buckets are computed in Go so the query stays portable across
// SQLite, PostgreSQL and MySQL.
func ListOrderTimes(ctx context.Context, db *gorm.DB) ([]OrderTimes, error) {
	var out []OrderTimes
	err := db.WithContext(ctx).Model(&domain.Order{}).
		Select("created_at, confirmed_at, in_preparation_at, completed_at").
		Scan(&out).Error
	return out, err
}
