package agents

import (
	"context"

	"github.com/bazarly/bazarly-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an agent registry repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, agent *models.DeliveryAgent) (*models.DeliveryAgent, error) {
	if err := r.db.WithContext(ctx).Create(agent).Error; err != nil {
		return nil, err
	}
	return agent, nil
}

func (r *repository) Find(ctx context.Context, agentID uuid.UUID) (*models.DeliveryAgent, error) {
	var agent models.DeliveryAgent
	err := r.db.WithContext(ctx).
		Where("id = ?", agentID).
		First(&agent).Error
	if err != nil {
		return nil, err
	}
	return &agent, nil
}

func (r *repository) Update(ctx context.Context, agentID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.DeliveryAgent{}).
		Where("id = ?", agentID).
		Updates(updates).Error
}

func (r *repository) BindOrder(ctx context.Context, agentID, orderID uuid.UUID) (int64, error) {
	// Claiming the slot also withdraws the agent from the offer pool, so
	// current_order_id != nil always implies is_available = false.
	result := r.db.WithContext(ctx).
		Model(&models.DeliveryAgent{}).
		Where("id = ? AND current_order_id IS NULL AND is_online = ? AND is_available = ?", agentID, true, true).
		Updates(map[string]any{
			"current_order_id": orderID,
			"is_available":     false,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repository) ReleaseOrder(ctx context.Context, agentID uuid.UUID) error {
	// Availability comes back only while the agent is still online; an agent
	// who went offline mid-delivery stays out of the offer pool.
	return r.db.WithContext(ctx).
		Model(&models.DeliveryAgent{}).
		Where("id = ?", agentID).
		Updates(map[string]any{
			"current_order_id": nil,
			"is_available":     gorm.Expr("is_online"),
		}).Error
}

func (r *repository) ListOnline(ctx context.Context) ([]models.DeliveryAgent, error) {
	var agents []models.DeliveryAgent
	err := r.db.WithContext(ctx).
		Where("is_online = ?", true).
		Order("name ASC").
		Find(&agents).Error
	if err != nil {
		return nil, err
	}
	return agents, nil
}
