package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/adiprasetyo/lokalmart-backend/pkg/enums"
)

// Order is an immutable transaction record once it leaves PENDING, except
// for payment proof attachment and status transitions. Price is snapshotted
// at creation from the then-current product price minus any coupon
// discount; OriginalPrice preserves the pre-discount figure.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber     string            `gorm:"column:order_number;not null;uniqueIndex"`
	UserID          uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	SellerID        *uuid.UUID        `gorm:"column:seller_id;type:uuid;index"`
	ProductID       uuid.UUID         `gorm:"column:product_id;type:uuid;not null"`
	ProductName     string            `gorm:"column:product_name;not null"`
	Quantity        int               `gorm:"column:quantity;not null;default:1"`
	OriginalPrice   int64             `gorm:"column:original_price;not null"`
	DiscountAmount  int64             `gorm:"column:discount_amount;not null;default:0"`
	Price           int64             `gorm:"column:price;not null"`
	CouponCode      *string           `gorm:"column:coupon_code"`
	Status          enums.OrderStatus `gorm:"column:status;type:text;not null;default:'PENDING'"`
	PaymentProofURL *string           `gorm:"column:payment_proof_url"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
