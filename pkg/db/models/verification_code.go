package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bazarly/bazarly-backend/pkg/enums"
)

// VerificationCode is a short-lived numeric secret bound to one
// (order, purpose) pair. The row id doubles as the opaque handle returned to
// callers; the code itself never leaves the issuer outside sandbox mode.
type VerificationCode struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID      uuid.UUID         `gorm:"column:order_id;type:uuid;not null;index:ix_verification_codes_order_purpose"`
	Purpose      enums.CodePurpose `gorm:"column:purpose;type:code_purpose;not null;index:ix_verification_codes_order_purpose"`
	Phone        string            `gorm:"column:phone;type:text;not null"`
	Code         string            `gorm:"column:code;type:text;not null"`
	Status       enums.CodeStatus  `gorm:"column:status;type:code_status;not null;default:'pending'"`
	ExpiresAt    time.Time         `gorm:"column:expires_at;not null"`
	AttemptCount int               `gorm:"column:attempt_count;not null;default:0"`
	MaxAttempts  int               `gorm:"column:max_attempts;not null;default:3"`
	VerifiedAt   *time.Time        `gorm:"column:verified_at"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
}
