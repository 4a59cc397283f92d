// Package services – StatsService
//
// StatsService computes the dashboard statistics. Counts are grouped in SQL;
// durations and hour buckets are computed in Go from the lifecycle
// timestamps so the same code runs on every supported database.
package services

import (
	"context"
	"math"
	"strconv"
	"time"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"

	"github.com/tbourn/pedidos-backend/internal/domain"
	"github.com/tbourn/pedidos-backend/internal/repo"
)

// BasicStats is the /estadisticas payload.
type BasicStats struct {
	TotalMessages int64                     `json:"total_mensajes"`
	TotalOrders   int64                     `json:"total_pedidos"`
	ByState       map[domain.State]int64    `json:"pedidos_por_estado"`
	ByPriority    map[domain.Priority]int64 `json:"pedidos_por_prioridad"`
}

// AdvancedStats extends BasicStats with lifecycle timings.
type AdvancedStats struct {
	BasicStats

	// Averages in minutes; nil when no order reached the stage.
	AvgMinutesToConfirm  *float64 `json:"tiempo_promedio_confirmacion"`
	AvgMinutesToPrepare  *float64 `json:"tiempo_promedio_preparacion"`
	AvgMinutesToComplete *float64 `json:"tiempo_promedio_completado"`

	// CancelRate is a percentage rounded to two decimals.
	CancelRate float64 `json:"tasa_cancelacion"`

	// ByHour has keys "0".."23", zeros included.
	ByHour map[string]int64 `json:"pedidos_por_hora"`

	// ByAssignee is nil when no order is assigned.
	ByAssignee map[string]int64 `json:"pedidos_por_staff"`
}

// StatsService aggregates order statistics.
type StatsService struct {
	DB *gorm.DB
}

// NewStatsService wires a StatsService.
func NewStatsService(db *gorm.DB) *StatsService { return &StatsService{DB: db} }

// Basic returns totals and per-state and per-priority counts.
func (s *StatsService) Basic(ctx context.Context) (*BasicStats, error) {
	tr := otel.Tracer("services/StatsService")
	ctx, span := tr.Start(ctx, "Basic")
	defer span.End()

	msgs, err := repo.CountMessageLogs(ctx, s.DB, 0)
	if err != nil {
		return nil, err
	}
	orders, err := repo.CountOrders(ctx, s.DB, repo.OrderFilter{})
	if err != nil {
		return nil, err
	}
	byState, err := repo.CountOrdersByState(ctx, s.DB, 0)
	if err != nil {
		return nil, err
	}
	byPrio, err := repo.CountOrdersByPriority(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	return &BasicStats{TotalMessages: msgs, TotalOrders: orders, ByState: byState, ByPriority: byPrio}, nil
}

// Advanced returns Basic plus average stage durations, cancel rate, orders
// per hour of day and orders per assignee.
func (s *StatsService) Advanced(ctx context.Context) (*AdvancedStats, error) {
	tr := otel.Tracer("services/StatsService")
	ctx, span := tr.Start(ctx, "Advanced")
	defer span.End()

	basic, err := s.Basic(ctx)
	if err != nil {
		return nil, err
	}
	times, err := repo.ListOrderTimes(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	byAssignee, err := repo.CountOrdersByAssignee(ctx, s.DB)
	if err != nil {
		return nil, err
	}

	out := &AdvancedStats{BasicStats: *basic, ByHour: make(map[string]int64, 24)}
	for h := 0; h < 24; h++ {
		out.ByHour[strconv.Itoa(h)] = 0
	}

	var confirm, prepare, complete mean
	for _, t := range times {
		out.ByHour[strconv.Itoa(t.CreatedAt.UTC().Hour())]++
		if t.ConfirmedAt != nil {
			confirm.add(t.ConfirmedAt.Sub(t.CreatedAt))
		}
		if t.InPreparationAt != nil && t.ConfirmedAt != nil {
			prepare.add(t.InPreparationAt.Sub(*t.ConfirmedAt))
		}
		if t.CompletedAt != nil {
			complete.add(t.CompletedAt.Sub(t.CreatedAt))
		}
	}
	out.AvgMinutesToConfirm = confirm.minutes()
	out.AvgMinutesToPrepare = prepare.minutes()
	out.AvgMinutesToComplete = complete.minutes()

	if basic.TotalOrders > 0 {
		rate := float64(basic.ByState[domain.StateCancelled]) / float64(basic.TotalOrders) * 100
		out.CancelRate = math.Round(rate*100) / 100
	}
	if len(byAssignee) > 0 {
		out.ByAssignee = byAssignee
	}
	return out, nil
}

type mean struct {
	sum time.Duration
	n   int
}

func (m *mean) add(d time.Duration) { m.sum += d; m.n++ }

func (m *mean) minutes() *float64 {
	if m.n == 0 {
		return nil
	}
	v := m.sum.Minutes() / float64(m.n)
	return &v
}

// CustomerStats is what a chat user sees for /stats.
type CustomerStats struct {
	Messages  int64
	Orders    int64
	Pending   int64
	Confirmed int64
	Cancelled int64
}

// ForCustomer returns message and order counts for one chat user.
func (s *StatsService) ForCustomer(ctx context.Context, externalUserID int64) (*CustomerStats, error) {
	tr := otel.Tracer("services/StatsService")
	ctx, span := tr.Start(ctx, "ForCustomer")
	defer span.End()

	msgs, err := repo.CountMessageLogs(ctx, s.DB, externalUserID)
	if err != nil {
		return nil, err
	}
	byState, err := repo.CountOrdersByState(ctx, s.DB, externalUserID)
	if err != nil {
		return nil, err
	}
	out := &CustomerStats{
		Messages:  msgs,
		Pending:   byState[domain.StatePending],
		Confirmed: byState[domain.StateConfirmed],
		Cancelled: byState[domain.StateCancelled],
	}
	for _, n := range byState {
		out.Orders += n
	}
	return out, nil
}
