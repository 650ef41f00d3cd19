package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/adiprasetyo/lokalmart-backend/pkg/db/types"
	"github.com/adiprasetyo/lokalmart-backend/pkg/enums"
)

// User is the canonical identity entity. Seller and membership sub-records
// live inline: a user becomes a seller by opening a store, and the points
// balance is only ever mutated through the points service.
type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string         `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	Name         string         `gorm:"column:name;not null"`
	PhotoURL     *string        `gorm:"column:photo_url"`
	Role         enums.UserRole `gorm:"column:role;type:text;not null;default:'MEMBER'"`
	Points       int64          `gorm:"column:points;not null;default:0"`
	IsBanned     bool           `gorm:"column:is_banned;not null;default:false"`
	IsVerified   bool           `gorm:"column:is_verified;not null;default:false"`

	Followers dbtypes.UUIDArray `gorm:"type:uuid[];column:followers;not null;default:ARRAY[]::uuid[]"`
	Following dbtypes.UUIDArray `gorm:"type:uuid[];column:following;not null;default:ARRAY[]::uuid[]"`

	StoreName   *string           `gorm:"column:store_name"`
	StoreLevel  int               `gorm:"column:store_level;not null;default:0"`
	StoreExp    int               `gorm:"column:store_exp;not null;default:0"`
	StoreStatus enums.StoreStatus `gorm:"column:store_status;type:text;not null;default:'NONE'"`

	MembershipTier     enums.MembershipTier `gorm:"column:membership_tier;type:text;not null;default:'NONE'"`
	SubscriptionEndsAt *time.Time           `gorm:"column:subscription_ends_at"`

	LastLoginAt *time.Time `gorm:"column:last_login_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// IsSeller reports whether the user has an open storefront.
func (u *User) IsSeller() bool {
	return u.Role == enums.UserRoleSeller && u.StoreStatus == enums.StoreStatusActive
}
