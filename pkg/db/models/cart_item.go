package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is an ephemeral staging row keyed by a cart-scoped synthetic id,
// not by product id: the same product may stack as multiple lines, and the
// coupon-apply path reuses an existing id to rewrite that line's discount.
// Price and name are denormalized snapshots; checkout re-reads the
// authoritative product before charging.
type CartItem struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID         uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index"`
	ProductID      uuid.UUID  `gorm:"column:product_id;type:uuid;not null"`
	SellerID       *uuid.UUID `gorm:"column:seller_id;type:uuid"`
	ProductName    string     `gorm:"column:product_name;not null"`
	UnitPrice      int64      `gorm:"column:unit_price;not null"`
	Quantity       int        `gorm:"column:quantity;not null;default:1"`
	CouponCode     *string    `gorm:"column:coupon_code"`
	DiscountAmount int64      `gorm:"column:discount_amount;not null;default:0"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
