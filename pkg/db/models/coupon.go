package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/adiprasetyo/lokalmart-backend/pkg/db/types"
)

// Coupon is a platform-only flat discount code. CurrentUsage counts
// redemptions monotonically; when MaxUsage is set the invariant
// CurrentUsage <= MaxUsage holds because the check and increment run in the
// same checkout transaction.
type Coupon struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code            string            `gorm:"column:code;not null;uniqueIndex"`
	Description     *string           `gorm:"column:description"`
	DiscountAmount  int64             `gorm:"column:discount_amount;not null"`
	IsActive        bool              `gorm:"column:is_active;not null;default:true"`
	ExpiresAt       *time.Time        `gorm:"column:expires_at"`
	MaxUsage        *int              `gorm:"column:max_usage"`
	CurrentUsage    int               `gorm:"column:current_usage;not null;default:0"`
	ValidProductIDs dbtypes.UUIDArray `gorm:"type:uuid[];column:valid_product_ids;not null;default:ARRAY[]::uuid[]"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
