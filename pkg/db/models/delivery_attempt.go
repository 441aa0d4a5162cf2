package models

import (
	"time"

	"github.com/google/uuid"
)

// DeliveryAttempt records one delivery confirmation attempt, successful or
// not, so support can reconstruct what happened at the door.
type DeliveryAttempt struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	AgentID     uuid.UUID `gorm:"column:agent_id;type:uuid;not null"`
	Method      string    `gorm:"column:method;type:text;not null"`
	Succeeded   bool      `gorm:"column:succeeded;not null"`
	FailureCode *string   `gorm:"column:failure_code"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}
