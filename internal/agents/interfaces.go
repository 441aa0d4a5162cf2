package agents

import (
	"context"

	"github.com/bazarly/bazarly-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for the delivery agent registry.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, agent *models.DeliveryAgent) (*models.DeliveryAgent, error)
	Find(ctx context.Context, agentID uuid.UUID) (*models.DeliveryAgent, error)
	Update(ctx context.Context, agentID uuid.UUID, updates map[string]any) error
	// BindOrder claims the agent's single active-order slot. The update only
	// matches when the slot is free and the agent is receivable; zero rows
	// means the agent is busy or offline.
	BindOrder(ctx context.Context, agentID, orderID uuid.UUID) (int64, error)
	ReleaseOrder(ctx context.Context, agentID uuid.UUID) error
	ListOnline(ctx context.Context) ([]models.DeliveryAgent, error)
}
