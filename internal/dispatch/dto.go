package dispatch

import (
	"time"

	"github.com/bazarly/bazarly-backend/pkg/db/models"
	"github.com/bazarly/bazarly-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QueueItem is the offer an agent sees before accepting. It deliberately
// withholds the order number, buyer identity, and buyer phone; those unlock
// only after the agent accepts.
type QueueItem struct {
	OrderID       uuid.UUID           `json:"order_id"`
	SellerID      uuid.UUID           `json:"seller_id"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	TotalAmount   decimal.Decimal     `json:"total_amount"`
	QueuedAt      time.Time           `json:"queued_at"`
}

// NewQueueItem projects an offerable order into its agent-facing shape.
func NewQueueItem(order models.Order) QueueItem {
	return QueueItem{
		OrderID:       order.ID,
		SellerID:      order.SellerID,
		PaymentMethod: order.PaymentMethod,
		TotalAmount:   order.TotalAmount,
		QueuedAt:      order.CreatedAt,
	}
}
