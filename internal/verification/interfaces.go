package verification

import (
	"context"

	"github.com/bazarly/bazarly-backend/pkg/db/models"
	"github.com/bazarly/bazarly-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for verification codes.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, code *models.VerificationCode) (*models.VerificationCode, error)
	// FindActiveForUpdate returns the newest pending code for the pair and
	// row-locks it so concurrent verify attempts serialize.
	FindActiveForUpdate(ctx context.Context, orderID uuid.UUID, purpose enums.CodePurpose) (*models.VerificationCode, error)
	// FindLatest returns the newest code for the pair regardless of status.
	FindLatest(ctx context.Context, orderID uuid.UUID, purpose enums.CodePurpose) (*models.VerificationCode, error)
	Update(ctx context.Context, codeID uuid.UUID, updates map[string]any) error
	CancelPending(ctx context.Context, orderID uuid.UUID) error
	CancelPendingForPurpose(ctx context.Context, orderID uuid.UUID, purpose enums.CodePurpose) error
}
