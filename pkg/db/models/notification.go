package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bazarly/bazarly-backend/pkg/enums"
)

// Notification stores the in-app inbox entry written alongside each live
// fan-out so subscribers that missed the push can reconcile.
type Notification struct {
	ID          uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RecipientID uuid.UUID              `gorm:"type:uuid;not null;index"`
	Role        enums.ActorRole        `gorm:"type:text;not null"`
	Type        enums.NotificationType `gorm:"type:notification_type;not null"`
	Title       string                 `gorm:"type:text;not null"`
	Message     string                 `gorm:"type:text;not null"`
	OrderID     *uuid.UUID             `gorm:"type:uuid"`
	ReadAt      *time.Time             `gorm:"type:timestamptz"`
	CreatedAt   time.Time              `gorm:"type:timestamptz;default:now()"`
}
