// Package realtime fans order events out to role-scoped rooms over Redis
// pub/sub. Delivery is best-effort and at-most-once: a failed publish is
// logged and dropped, never retried, so a slow subscriber cannot stall the
// fulfillment write path.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bazarly/bazarly-backend/pkg/config"
	"github.com/bazarly/bazarly-backend/pkg/enums"
	"github.com/bazarly/bazarly-backend/pkg/logger"
)

// Broker is the pub/sub surface the publisher needs from the redis client.
type Broker interface {
	Publish(ctx context.Context, channel string, payload any) error
}

// Event is the wire envelope pushed into rooms. Seq carries the per-order
// event sequence so subscribers can detect gaps and re-sync over HTTP.
type Event struct {
	Type      enums.OrderEventType    `json:"type"`
	OrderID   string                  `json:"order_id"`
	Seq       int64                   `json:"seq"`
	Status    enums.FulfillmentStatus `json:"status"`
	Payload   map[string]any          `json:"payload,omitempty"`
	EmittedAt time.Time               `json:"emitted_at"`
}

// Publisher writes events into per-recipient rooms plus the admin broadcast
// room.
type Publisher struct {
	broker Broker
	prefix string
	wait   time.Duration
	logg   *logger.Logger
}

func NewPublisher(broker Broker, cfg config.RealtimeConfig, logg *logger.Logger) *Publisher {
	return &Publisher{
		broker: broker,
		prefix: cfg.ChannelPrefix,
		wait:   cfg.PublishTimeout,
		logg:   logg,
	}
}

// Room returns the channel name for a role-scoped recipient room.
func (p *Publisher) Room(role enums.ActorRole, recipientID string) string {
	return fmt.Sprintf("%s:%s:%s", p.prefix, role, recipientID)
}

// AdminRoom returns the shared admin broadcast channel.
func (p *Publisher) AdminRoom() string {
	return fmt.Sprintf("%s:%s", p.prefix, enums.ActorRoleAdmin)
}

// PublishToRooms writes the event to every named room independently. Rooms
// that fail are skipped; the remaining rooms still receive the event.
func (p *Publisher) PublishToRooms(ctx context.Context, event Event, rooms ...string) {
	body, err := json.Marshal(event)
	if err != nil {
		p.logg.Error(ctx, "marshaling realtime event", err)
		return
	}
	ctx = p.logg.WithOrderID(ctx, event.OrderID)
	if p.wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.wait)
		defer cancel()
	}
	for _, room := range rooms {
		if room == "" {
			continue
		}
		if err := p.broker.Publish(ctx, room, body); err != nil {
			p.logg.Warn(ctx, fmt.Sprintf("publishing realtime event to %s: %v", room, err))
		}
	}
}
