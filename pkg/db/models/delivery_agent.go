package models

import (
	"time"

	"github.com/google/uuid"
)

// DeliveryAgent tracks availability and active-order exclusivity for one
// agent. CurrentOrderID is owned by the fulfillment state machine: it is set
// on Accept and cleared on Deliver (or admin reassign), never by flag setters.
type DeliveryAgent struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Name           string     `gorm:"column:name;type:text;not null"`
	Phone          string     `gorm:"column:phone;type:text;not null"`
	IsOnline       bool       `gorm:"column:is_online;not null;default:false"`
	IsAvailable    bool       `gorm:"column:is_available;not null;default:false"`
	CurrentOrderID *uuid.UUID `gorm:"column:current_order_id;type:uuid"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// CanReceiveOffers reports whether the dispatcher may surface orders to the
// agent.
func (a *DeliveryAgent) CanReceiveOffers() bool {
	return a.IsOnline && a.IsAvailable && a.CurrentOrderID == nil
}
