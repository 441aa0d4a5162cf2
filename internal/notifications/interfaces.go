package notifications

import (
	"context"

	"github.com/bazarly/bazarly-backend/pkg/db/models"
	"github.com/bazarly/bazarly-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for the notification inbox.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateBatch(ctx context.Context, notifications []models.Notification) error
	ListByRecipient(ctx context.Context, recipientID uuid.UUID, params pagination.Params) (*NotificationList, error)
	MarkRead(ctx context.Context, recipientID, notificationID uuid.UUID) (int64, error)
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) error
	CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error)
}
