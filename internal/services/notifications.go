// Package services – Dispatcher
//
// This file builds customer-facing notifications and delivers them through a
// MessageSender. Each delivery is a single attempt; its outcome is recorded
// as an immutable NotificationRecord whether it succeeded or not.
package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/pedidos-backend/internal/domain"
	"github.com/tbourn/pedidos-backend/internal/observability"
	"github.com/tbourn/pedidos-backend/internal/repo"
)

// MessageSender delivers a plain text message to a chat.
type MessageSender interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

// NotificationIntent is a message the dispatcher should try to deliver.
type NotificationIntent struct {
	OrderID        *uint
	ExternalUserID int64
	Category       domain.NotificationCategory
	Message        string
}

// stateTemplates holds one entry per state. An empty template means the
// state is announced elsewhere (pending orders get inline buttons).
// Arguments: order id, item summary.
var stateTemplates = map[domain.State]string{
	domain.StatePending: "",
	domain.StateConfirmed: "✅ TU PEDIDO #%d HA SIDO CONFIRMADO\n\n" +
		"📦 %s\n\n" +
		"Tu pedido ha sido confirmado y está en espera de preparación.\n" +
		"Te notificaremos cuando esté listo.",
	domain.StateInPreparation: "🔄 TU PEDIDO #%d ESTÁ EN PREPARACIÓN\n\n" +
		"📦 %s\n\n" +
		"Estamos preparando tu pedido.\n" +
		"Te avisaremos cuando esté listo para recoger.",
	domain.StateReady: "✅ ¡TU PEDIDO #%d ESTÁ LISTO!\n\n" +
		"📦 %s\n\n" +
		"Tu pedido está listo para recoger.\n" +
		"¡Te esperamos!",
	domain.StateCompleted: "🎉 ¡GRACIAS POR TU PEDIDO #%d!\n\n" +
		"📦 %s\n\n" +
		"Tu pedido ha sido completado.\n" +
		"¡Esperamos verte pronto!",
	domain.StateCancelled: "❌ TU PEDIDO #%d HA SIDO CANCELADO\n\n" +
		"📦 %s\n\n" +
		"Tu pedido ha sido cancelado.\n" +
		"Si tienes alguna pregunta, contáctanos.",
}

// BuildNotification returns the state-change message for o entering state,
// or false when that state sends nothing.
func BuildNotification(o *domain.Order, state domain.State) (*NotificationIntent, bool) {
	tpl := stateTemplates[state]
	if tpl == "" {
		return nil, false
	}
	id := o.ID
	return &NotificationIntent{
		OrderID:        &id,
		ExternalUserID: o.ExternalUserID,
		Category:       domain.NotifyStateChange,
		Message:        fmt.Sprintf(tpl, o.ID, o.ItemSummary),
	}, true
}

// Dispatcher delivers intents and records every attempt.
type Dispatcher struct {
	DB     *gorm.DB
	Sender MessageSender

	now func() time.Time
}

// NewDispatcher returns a Dispatcher. sender may be nil, in which case every
// delivery is recorded as failed.
func NewDispatcher(db *gorm.DB, sender MessageSender) *Dispatcher {
	return &Dispatcher{DB: db, Sender: sender, now: func() time.Time { return time.Now().UTC() }}
}

var errNoSender = errors.New("messaging channel not configured")

// Deliver makes exactly one send attempt for intent and persists its
// outcome. On failure the returned error wraps ErrDeliveryFailed and the
// record is still returned.
func (d *Dispatcher) Deliver(ctx context.Context, intent *NotificationIntent) (*domain.NotificationRecord, error) {
	var sendErr error
	if d.Sender == nil {
		sendErr = errNoSender
	} else {
		sendErr = d.Sender.SendText(ctx, intent.ExternalUserID, intent.Message)
	}

	rec := &domain.NotificationRecord{
		OrderID:        intent.OrderID,
		ExternalUserID: intent.ExternalUserID,
		Category:       intent.Category,
		Message:        intent.Message,
		Success:        sendErr == nil,
		SentAt:         d.now(),
	}
	if sendErr != nil {
		msg := sendErr.Error()
		rec.Error = &msg
	}
	observability.NotificationsTotal.WithLabelValues(string(intent.Category), strconv.FormatBool(rec.Success)).Inc()

	if err := repo.CreateNotification(ctx, d.DB, rec); err != nil {
		log.Error().Err(err).Int64("telegram_user_id", intent.ExternalUserID).Msg("notification record not saved")
		if sendErr == nil {
			return rec, err
		}
	}
	if sendErr != nil {
		return rec, fmt.Errorf("%w: %v", ErrDeliveryFailed, sendErr)
	}
	return rec, nil
}
