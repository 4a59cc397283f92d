// Package services – SummaryService
//
// SummaryService posts the periodic digest of active orders to the staff
// chat. Orders are grouped by priority, high first, followed by a count per
// state. Delivery goes through Dispatcher, so every digest leaves a summary
// NotificationRecord.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/pedidos-backend/internal/classifier"
	"github.com/tbourn/pedidos-backend/internal/domain"
	"github.com/tbourn/pedidos-backend/internal/repo"
)

const summaryItemRunes = 50

var priorityHeadings = []struct {
	p     domain.Priority
	title string
}{
	{domain.PriorityHigh, "🔴 PRIORIDAD ALTA"},
	{domain.PriorityMedium, "🟡 PRIORIDAD MEDIA"},
	{domain.PriorityLow, "🟢 PRIORIDAD BAJA"},
}

var stateBreakdown = []struct {
	s     domain.State
	label string
}{
	{domain.StatePending, "⏳ Por confirmar"},
	{domain.StateConfirmed, "✅ Confirmados"},
	{domain.StateInPreparation, "🔄 En preparación"},
	{domain.StateReady, "🎉 Listos"},
}

// StateEmoji is the marker shown before a state label in chat messages.
func StateEmoji(s domain.State) string {
	switch s {
	case domain.StatePending:
		return "⏳ "
	case domain.StateConfirmed:
		return "✅ "
	case domain.StateInPreparation:
		return "🔄 "
	case domain.StateReady:
		return "🎉 "
	case domain.StateCompleted:
		return "✔️ "
	case domain.StateCancelled:
		return "❌ "
	}
	return ""
}

// SummaryService builds and sends the active-orders digest.
type SummaryService struct {
	DB         *gorm.DB
	Dispatcher *Dispatcher
	ChatID     int64

	now func() time.Time
}

// NewSummaryService wires a SummaryService. chatID 0 disables sending.
func NewSummaryService(db *gorm.DB, d *Dispatcher, chatID int64) *SummaryService {
	return &SummaryService{DB: db, Dispatcher: d, ChatID: chatID, now: func() time.Time { return time.Now().UTC() }}
}

// Send posts the digest. It returns a nil record without sending when no
// chat is configured or no order is active.
func (s *SummaryService) Send(ctx context.Context) (*domain.NotificationRecord, error) {
	tr := otel.Tracer("services/SummaryService")
	ctx, span := tr.Start(ctx, "Send", trace.WithAttributes(attribute.Bool("chat.configured", s.ChatID != 0)))
	defer span.End()

	if s.ChatID == 0 || s.Dispatcher == nil {
		return nil, nil
	}
	orders, err := repo.ListActiveOrders(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, nil
	}
	span.SetAttributes(attribute.Int("pedidos.activos", len(orders)))

	return s.Dispatcher.Deliver(ctx, &NotificationIntent{
		ExternalUserID: s.ChatID,
		Category:       domain.NotifySummary,
		Message:        BuildSummary(orders, s.now()),
	})
}

// BuildSummary renders the digest for orders, which must all be active and
// sorted by creation time.
func BuildSummary(orders []domain.Order, now time.Time) string {
	var b strings.Builder
	b.WriteString("📊 RESUMEN DE PEDIDOS ACTIVOS\n")
	fmt.Fprintf(&b, "🕐 %s\n\n", now.Format("02/01/2006 15:04"))
	fmt.Fprintf(&b, "📦 Total: %d pedidos activos\n\n", len(orders))

	for _, h := range priorityHeadings {
		var group []domain.Order
		for _, o := range orders {
			if o.Priority == h.p {
				group = append(group, o)
			}
		}
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s (%d):\n", h.title, len(group))
		for _, o := range group {
			b.WriteString(summaryLine(o, now))
		}
		b.WriteString("\n")
	}

	b.WriteString("ESTADOS:\n")
	for _, sb := range stateBreakdown {
		n := 0
		for _, o := range orders {
			if o.State == sb.s {
				n++
			}
		}
		if n > 0 {
			fmt.Fprintf(&b, "%s: %d\n", sb.label, n)
		}
	}
	return b.String()
}

func summaryLine(o domain.Order, now time.Time) string {
	var b strings.Builder
	item := []rune(o.ItemSummary)
	if len(item) > summaryItemRunes {
		fmt.Fprintf(&b, "\n🔢 #%d - %s...", o.ID, string(item[:summaryItemRunes]))
	} else {
		fmt.Fprintf(&b, "\n🔢 #%d - %s", o.ID, o.ItemSummary)
	}
	fmt.Fprintf(&b, "\n   📍 Estado: %s%s\n", StateEmoji(o.State), o.State.Label())
	if o.RequestedDate != nil {
		when := classifier.HumanDate(*o.RequestedDate, now)
		if o.RequestedTime != nil {
			fmt.Fprintf(&b, "   📅 Para: %s a las %s\n", when, *o.RequestedTime)
		} else {
			fmt.Fprintf(&b, "   📅 Para: %s\n", when)
		}
	}
	return b.String()
}
