package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivityLog is the append-only audit trail covering logins, orders,
// moderation and point changes. It is independent of PointHistory.
type ActivityLog struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    *uuid.UUID `gorm:"column:user_id;type:uuid;index"`
	ActorName string     `gorm:"column:actor_name;not null"`
	Action    string     `gorm:"column:action;not null"`
	Detail    *string    `gorm:"column:detail"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}
