// Package services – event fan-out
//
// Services announce order changes as domain.Event values. Delivery targets
// (the websocket hub, the Redis bridge and the AMQP queue) implement
// EventPublisher and are combined with Fanout. Publishing is best effort:
// a failing target is logged and never fails the originating operation.
package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/pedidos-backend/internal/domain"
)

// EventPublisher delivers a domain event to one target.
type EventPublisher interface {
	Publish(ctx context.Context, ev domain.Event) error
}

// Fanout publishes each event to every non-nil target in order.
type Fanout []EventPublisher

// Publish implements EventPublisher. It returns nil; per-target errors are
// logged.
func (f Fanout) Publish(ctx context.Context, ev domain.Event) error {
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, ev); err != nil {
			log.Warn().Err(err).Str("event", string(ev.Type)).Uint("pedido_id", ev.OrderID).Msg("event publish failed")
		}
	}
	return nil
}

// publish is a nil-safe helper used by the services.
func publish(ctx context.Context, p EventPublisher, ev domain.Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, ev); err != nil {
		log.Warn().Err(err).Str("event", string(ev.Type)).Msg("event publish failed")
	}
}
