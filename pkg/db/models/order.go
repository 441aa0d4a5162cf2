package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bazarly/bazarly-backend/pkg/enums"
)

// Order is the unit of fulfillment. FulfillmentStatus is the single
// authoritative lifecycle stage; the assignment/pickup/delivery columns carry
// gate-specific evidence only. EventSeq is bumped together with every status
// update so committed transitions observe a per-order total order.
type Order struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber int64     `gorm:"column:order_number;not null;uniqueIndex"`

	BuyerID    uuid.UUID `gorm:"column:buyer_id;type:uuid;not null"`
	SellerID   uuid.UUID `gorm:"column:seller_id;type:uuid;not null"`
	BuyerPhone string    `gorm:"column:buyer_phone;type:text;not null"`

	FulfillmentStatus enums.FulfillmentStatus `gorm:"column:fulfillment_status;type:fulfillment_status;not null;default:'created'"`
	EventSeq          int64                   `gorm:"column:event_seq;not null;default:0"`

	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;type:payment_method;not null;default:'prepaid'"`
	TotalAmount   decimal.Decimal     `gorm:"column:total_amount;type:numeric(12,2);not null"`

	// PickupReference is the seller-supplied reference the agent must echo
	// verbatim at the pickup gate. It is not secret.
	PickupReference string `gorm:"column:pickup_reference;type:text;not null"`

	AssignmentStatus enums.AssignmentStatus `gorm:"column:assignment_status;type:assignment_status;not null;default:'unassigned'"`
	AgentID          *uuid.UUID             `gorm:"column:agent_id;type:uuid"`
	AssignedAt       *time.Time             `gorm:"column:assigned_at"`
	AcceptedAt       *time.Time             `gorm:"column:accepted_at"`

	PickupCompleted          bool       `gorm:"column:pickup_completed;not null;default:false"`
	PickupCompletedAt        *time.Time `gorm:"column:pickup_completed_at"`
	PickupVerificationMethod *string    `gorm:"column:pickup_verification_method"`

	DeliveryCompleted    bool       `gorm:"column:delivery_completed;not null;default:false"`
	DeliveredAt          *time.Time `gorm:"column:delivered_at"`
	DeliveryAttemptCount int        `gorm:"column:delivery_attempt_count;not null;default:0"`

	CODCollectedAmount *decimal.Decimal `gorm:"column:cod_collected_amount;type:numeric(12,2)"`
	CODCollectedAt     *time.Time       `gorm:"column:cod_collected_at"`

	CancelReason *string    `gorm:"column:cancel_reason"`
	CancelledAt  *time.Time `gorm:"column:cancelled_at"`

	Events           []OrderEvent      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	DeliveryAttempts []DeliveryAttempt `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// CODRequired reports whether delivery confirmation must record a cash
// collection instead of an OTP.
func (o *Order) CODRequired() bool {
	return o.PaymentMethod == enums.PaymentMethodCashOnDelivery
}
