package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalog entry. A nil SellerID marks a platform-owned listing;
// only platform listings are eligible for coupons.
type Product struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID    *uuid.UUID `gorm:"column:seller_id;type:uuid;index"`
	Name        string     `gorm:"column:name;not null"`
	Description *string    `gorm:"column:description"`
	Category    string     `gorm:"column:category;not null;default:''"`
	Price       int64      `gorm:"column:price;not null"`
	Stock       int        `gorm:"column:stock;not null;default:0"`
	ImageURL    *string    `gorm:"column:image_url"`
	IsFlashSale bool       `gorm:"column:is_flash_sale;not null;default:false"`
	IsBoosted   bool       `gorm:"column:is_boosted;not null;default:false"`
	IsActive    bool       `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
