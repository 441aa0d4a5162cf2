package fulfillment

import (
	"time"

	"github.com/bazarly/bazarly-backend/pkg/db/models"
	"github.com/bazarly/bazarly-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderList is one page of orders plus the cursor for the next page.
type OrderList struct {
	Orders     []models.Order `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// OrderSummary is the listing row shared by buyer and seller surfaces.
type OrderSummary struct {
	ID                uuid.UUID               `json:"id"`
	OrderNumber       int64                   `json:"order_number"`
	FulfillmentStatus enums.FulfillmentStatus `json:"fulfillment_status"`
	PaymentMethod     enums.PaymentMethod     `json:"payment_method"`
	TotalAmount       decimal.Decimal         `json:"total_amount"`
	CreatedAt         time.Time               `json:"created_at"`
}

// NewOrderSummary projects an order row into its listing shape.
func NewOrderSummary(order models.Order) OrderSummary {
	return OrderSummary{
		ID:                order.ID,
		OrderNumber:       order.OrderNumber,
		FulfillmentStatus: order.FulfillmentStatus,
		PaymentMethod:     order.PaymentMethod,
		TotalAmount:       order.TotalAmount,
		CreatedAt:         order.CreatedAt,
	}
}

// OrderTimeline is the admin/support view: the order plus its full event log
// and delivery attempt history.
type OrderTimeline struct {
	Order    models.Order             `json:"order"`
	Events   []models.OrderEvent      `json:"events"`
	Attempts []models.DeliveryAttempt `json:"delivery_attempts"`
}
