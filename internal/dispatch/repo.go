package dispatch

import (
	"context"

	"github.com/bazarly/bazarly-backend/pkg/db/models"
	"github.com/bazarly/bazarly-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a dispatch repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListQueue(ctx context.Context, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("fulfillment_status IN ? AND assignment_status IN ?",
			[]enums.FulfillmentStatus{enums.FulfillmentStatusPaymentCleared, enums.FulfillmentStatusPickupReady},
			[]enums.AssignmentStatus{enums.AssignmentStatusUnassigned, enums.AssignmentStatusRejected}).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) Find(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}
