package verification

import (
	"context"

	"github.com/bazarly/bazarly-backend/pkg/db/models"
	"github.com/bazarly/bazarly-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a verification repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, code *models.VerificationCode) (*models.VerificationCode, error) {
	if err := r.db.WithContext(ctx).Create(code).Error; err != nil {
		return nil, err
	}
	return code, nil
}

func (r *repository) FindActiveForUpdate(ctx context.Context, orderID uuid.UUID, purpose enums.CodePurpose) (*models.VerificationCode, error) {
	var code models.VerificationCode
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_id = ? AND purpose = ? AND status = ?", orderID, purpose, enums.CodeStatusPending).
		Order("created_at DESC").
		First(&code).Error
	if err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *repository) FindLatest(ctx context.Context, orderID uuid.UUID, purpose enums.CodePurpose) (*models.VerificationCode, error) {
	var code models.VerificationCode
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND purpose = ?", orderID, purpose).
		Order("created_at DESC").
		First(&code).Error
	if err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *repository) Update(ctx context.Context, codeID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.VerificationCode{}).
		Where("id = ?", codeID).
		Updates(updates).Error
}

func (r *repository) CancelPending(ctx context.Context, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.VerificationCode{}).
		Where("order_id = ? AND status = ?", orderID, enums.CodeStatusPending).
		Update("status", enums.CodeStatusCancelled).Error
}

func (r *repository) CancelPendingForPurpose(ctx context.Context, orderID uuid.UUID, purpose enums.CodePurpose) error {
	return r.db.WithContext(ctx).
		Model(&models.VerificationCode{}).
		Where("order_id = ? AND purpose = ? AND status = ?", orderID, purpose, enums.CodeStatusPending).
		Update("status", enums.CodeStatusCancelled).Error
}
