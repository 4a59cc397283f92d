package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/tbourn/pedidos-backend/internal/domain"
)

// PubSub is the part of *redis.Client the bridge uses.
type PubSub interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
	Subscribe(ctx context.Context, channels ...string) *redis.PubSub
}

type envelope struct {
	Origin string       `json:"origin"`
	Event  domain.Event `json:"event"`
}

// RedisBridge shares events between API replicas over a Redis channel.
// Publish only writes to Redis; Run relays events from other replicas into
// the local hub. Local delivery stays with the hub itself.
type RedisBridge struct {
	rdb     PubSub
	channel string
	origin  string
	hub     *Hub
	log     zerolog.Logger
}

// NewRedisBridge returns a bridge with a fresh origin id.
func NewRedisBridge(rdb PubSub, channel string, hub *Hub, logger zerolog.Logger) *RedisBridge {
	return &RedisBridge{
		rdb:     rdb,
		channel: channel,
		origin:  uuid.NewString(),
		hub:     hub,
		log:     logger.With().Str("component", "redis_bridge").Logger(),
	}
}

// Publish implements services.EventPublisher.
func (b *RedisBridge) Publish(ctx context.Context, ev domain.Event) error {
	body, err := json.Marshal(envelope{Origin: b.origin, Event: ev})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := b.rdb.Publish(ctx, b.channel, body).Err(); err != nil {
		b.log.Warn().Err(err).Str("event", string(ev.Type)).Msg("redis publish failed")
		return err
	}
	return nil
}

// Run subscribes to the channel and relays until ctx is done.
func (b *RedisBridge) Run(ctx context.Context) error {
	sub := b.rdb.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	b.log.Info().Str("channel", b.channel).Msg("redis bridge subscribed")

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-msgs:
			if !ok {
				return nil
			}
			b.relay(ctx, m.Payload)
		}
	}
}

// relay reports whether the payload was forwarded to the hub.
func (b *RedisBridge) relay(ctx context.Context, payload string) bool {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		b.log.Debug().Err(err).Msg("dropping malformed bridge payload")
		return false
	}
	if env.Origin == b.origin || env.Event.Type == "" {
		return false
	}
	b.hub.Broadcast(ctx, env.Event)
	return true
}
