package fulfillment

import (
	"context"

	"github.com/bazarly/bazarly-backend/pkg/db/models"
	"github.com/bazarly/bazarly-backend/pkg/enums"
	"github.com/bazarly/bazarly-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a fulfillment repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
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

func (r *repository) FindByNumber(ctx context.Context, orderNumber int64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("order_number = ?", orderNumber).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) UpdateStatusCAS(ctx context.Context, orderID uuid.UUID, expected enums.FulfillmentStatus, updates map[string]any) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND fulfillment_status = ?", orderID, expected).
		Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repository) CreateEvent(ctx context.Context, event *models.OrderEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) ListEvents(ctx context.Context, orderID uuid.UUID) ([]models.OrderEvent, error) {
	var events []models.OrderEvent
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("seq ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *repository) ListByBuyer(ctx context.Context, buyerID uuid.UUID, params pagination.Params) (*OrderList, error) {
	return r.listOrders(ctx, params, "buyer_id = ?", buyerID)
}

func (r *repository) ListBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*OrderList, error) {
	return r.listOrders(ctx, params, "seller_id = ?", sellerID)
}

func (r *repository) ListByAgent(ctx context.Context, agentID uuid.UUID, params pagination.Params) (*OrderList, error) {
	return r.listOrders(ctx, params, "agent_id = ?", agentID)
}

func (r *repository) ListByStatus(ctx context.Context, status enums.FulfillmentStatus, params pagination.Params) (*OrderList, error) {
	return r.listOrders(ctx, params, "fulfillment_status = ?", status)
}

func (r *repository) listOrders(ctx context.Context, params pagination.Params, condition string, args ...any) (*OrderList, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	query := r.db.WithContext(ctx).
		Where(condition, args...).
		Order("created_at DESC, id DESC").
		Limit(limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}

	list := &OrderList{Orders: orders}
	if len(orders) == limit {
		last := orders[limit-2]
		list.Orders = orders[:limit-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return list, nil
}

func (r *repository) CreateDeliveryAttempt(ctx context.Context, attempt *models.DeliveryAttempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r *repository) ListDeliveryAttempts(ctx context.Context, orderID uuid.UUID) ([]models.DeliveryAttempt, error) {
	var attempts []models.DeliveryAttempt
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}
	return attempts, nil
}
