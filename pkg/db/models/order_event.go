package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/bazarly/bazarly-backend/pkg/enums"
)

// OrderEvent records one committed fulfillment transition. Seq carries the
// per-order ordering the notification fan-out relies on; (order_id, seq) is
// unique so a botched double-commit surfaces as a constraint violation.
type OrderEvent struct {
	ID        uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID            `gorm:"column:order_id;type:uuid;not null;uniqueIndex:ux_order_events_order_seq"`
	Seq       int64                `gorm:"column:seq;not null;uniqueIndex:ux_order_events_order_seq"`
	EventType enums.OrderEventType `gorm:"column:event_type;type:text;not null"`
	ActorRole enums.ActorRole      `gorm:"column:actor_role;type:text;not null"`
	ActorID   *uuid.UUID           `gorm:"column:actor_id;type:uuid"`
	Payload   json.RawMessage      `gorm:"column:payload;type:jsonb"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
}
