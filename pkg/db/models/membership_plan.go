package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adiprasetyo/lokalmart-backend/pkg/enums"
)

// MembershipPlan is a purchasable subscription tier. PointCost is charged
// through the points ledger; DisplayPrice is the rupiah figure shown in the
// storefront.
type MembershipPlan struct {
	ID           uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Tier         enums.MembershipTier `gorm:"column:tier;type:text;not null;uniqueIndex"`
	Name         string               `gorm:"column:name;not null"`
	PointCost    int64                `gorm:"column:point_cost;not null"`
	DurationDays int                  `gorm:"column:duration_days;not null"`
	DisplayPrice decimal.Decimal      `gorm:"column:display_price;type:numeric(12,2);not null"`
	IsActive     bool                 `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
