// Package services – LifecycleEngine
//
// This file implements the order state machine. A transition loads the
// order inside a transaction, stamps the timestamp owned by the new state
// (once; an existing stamp is never overwritten), appends one history row
// and returns the notification the customer should receive.
//
// The engine is permissive by default: any known state may follow any other.
// Strict mode restricts moves to the canonical flow
// pending → confirmed → in_preparation → ready_for_pickup → completed,
// with cancellation allowed from every non-terminal state.
//
// The engine never sends anything itself; delivery belongs to Dispatcher.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/pedidos-backend/internal/domain"
	"github.com/tbourn/pedidos-backend/internal/observability"
	"github.com/tbourn/pedidos-backend/internal/repo"
)

// TransitionResult describes a committed transition.
type TransitionResult struct {
	Order    *domain.Order
	Previous domain.State
	Entry    *domain.HistoryEntry
	// Intent is nil when the new state produces no customer message.
	Intent *NotificationIntent
}

// LifecycleEngine applies state transitions to orders.
type LifecycleEngine struct {
	DB     *gorm.DB
	Strict bool

	now func() time.Time
}

// NewLifecycleEngine returns an engine bound to db.
func NewLifecycleEngine(db *gorm.DB, strict bool) *LifecycleEngine {
	return &LifecycleEngine{DB: db, Strict: strict, now: func() time.Time { return time.Now().UTC() }}
}

// Transition moves order orderID to newState on behalf of actor.
//
// An unknown state fails with ErrInvalidState before touching the store.
// A missing order yields ErrOrderNotFound. In strict mode a non-canonical
// move yields ErrIllegalTransition. Either the state change and its history
// row are both committed or nothing is.
func (e *LifecycleEngine) Transition(ctx context.Context, orderID uint, newState, actor string, note *string) (*TransitionResult, error) {
	tr := otel.Tracer("services/LifecycleEngine")
	ctx, span := tr.Start(ctx, "Transition",
		trace.WithAttributes(
			attribute.Int64("pedido.id", int64(orderID)),
			attribute.String("estado.nuevo", newState),
			attribute.String("actor", actor),
		),
	)
	defer span.End()

	next, ok := domain.ParseState(newState)
	if !ok {
		return nil, ErrInvalidState
	}

	var res *TransitionResult
	err := e.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		o, err := repo.GetOrderForUpdate(ctx, tx, orderID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		prev := o.State
		if e.Strict && !domain.CanTransition(prev, next) {
			return ErrIllegalTransition
		}

		now := e.now()
		o.State = next
		o.StampTime(next, now)
		if err := repo.SaveOrder(ctx, tx, o); err != nil {
			return err
		}

		entry := &domain.HistoryEntry{
			OrderID:       o.ID,
			PreviousState: &prev,
			NewState:      next,
			Actor:         actor,
			Note:          note,
			ChangedAt:     now,
		}
		if err := repo.AppendHistory(ctx, tx, entry); err != nil {
			return err
		}

		res = &TransitionResult{Order: o, Previous: prev, Entry: entry}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	res.Intent, _ = BuildNotification(res.Order, next)
	observability.TransitionsTotal.WithLabelValues(string(next)).Inc()
	return res, nil
}
