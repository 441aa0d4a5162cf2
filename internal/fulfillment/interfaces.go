package fulfillment

import (
	"context"

	"github.com/bazarly/bazarly-backend/pkg/db/models"
	"github.com/bazarly/bazarly-backend/pkg/enums"
	"github.com/bazarly/bazarly-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for order lifecycle tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	Find(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindByNumber(ctx context.Context, orderNumber int64) (*models.Order, error)
	// UpdateStatusCAS applies updates only when the row still carries the
	// expected status, and reports how many rows matched. Zero means the
	// caller lost the race.
	UpdateStatusCAS(ctx context.Context, orderID uuid.UUID, expected enums.FulfillmentStatus, updates map[string]any) (int64, error)
	CreateEvent(ctx context.Context, event *models.OrderEvent) error
	ListEvents(ctx context.Context, orderID uuid.UUID) ([]models.OrderEvent, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID, params pagination.Params) (*OrderList, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*OrderList, error)
	ListByAgent(ctx context.Context, agentID uuid.UUID, params pagination.Params) (*OrderList, error)
	ListByStatus(ctx context.Context, status enums.FulfillmentStatus, params pagination.Params) (*OrderList, error)
	CreateDeliveryAttempt(ctx context.Context, attempt *models.DeliveryAttempt) error
	ListDeliveryAttempts(ctx context.Context, orderID uuid.UUID) ([]models.DeliveryAttempt, error)
}

// CodeVerifier is the slice of the verification issuer the state machine
// consumes at the pickup and delivery gates. Both calls join the caller's
// transaction so a consumed code and a failed transition cannot diverge.
type CodeVerifier interface {
	VerifyInTx(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, purpose enums.CodePurpose, code string) error
	CancelPendingInTx(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error
}

// AgentReleaser frees an agent's active-order slot when an order leaves the
// agent's hands (delivery, cancellation, admin reassignment).
type AgentReleaser interface {
	ReleaseInTx(ctx context.Context, tx *gorm.DB, agentID uuid.UUID) error
}

// Notifier fans a committed transition out to interested parties. Called
// after commit only; implementations must not block the request path on
// delivery.
type Notifier interface {
	OrderEvent(ctx context.Context, order *models.Order, event *models.OrderEvent)
}
