package dispatch

import (
	"context"
	"time"

	"github.com/bazarly/bazarly-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the queue reads the dispatcher needs on top of the
// fulfillment tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	// ListQueue returns offerable orders oldest-first. An order is offerable
	// once payment clears, until an assignment is accepted.
	ListQueue(ctx context.Context, limit int) ([]models.Order, error)
	Find(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
}

// OrderBinder is the slice of the agent registry the dispatcher uses to claim
// and free the active-order slot.
type OrderBinder interface {
	BindOrderInTx(ctx context.Context, tx *gorm.DB, agentID, orderID uuid.UUID) error
}

// CooldownStore hides recently rejected orders from the rejecting agent.
type CooldownStore interface {
	MarkRejectCooldown(ctx context.Context, agentID, orderID string, ttl time.Duration) error
	InRejectCooldown(ctx context.Context, agentID, orderID string) (bool, error)
}

// AgentLookup reads agent receivability for queue filtering.
type AgentLookup interface {
	GetAgent(ctx context.Context, agentID uuid.UUID) (*models.DeliveryAgent, error)
}
