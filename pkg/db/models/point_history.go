package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/adiprasetyo/lokalmart-backend/pkg/enums"
)

// PointHistory is the append-only ledger of balance changes and the only
// audit trail for user points. Amount is signed; BalanceAfter records the
// clamped balance the row left behind.
type PointHistory struct {
	ID           uuid.UUID                  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID                  `gorm:"column:user_id;type:uuid;not null;index"`
	Amount       int64                      `gorm:"column:amount;not null"`
	Type         enums.PointTransactionType `gorm:"column:type;type:text;not null"`
	Reason       string                     `gorm:"column:reason;not null"`
	ActorName    *string                    `gorm:"column:actor_name"`
	BalanceAfter int64                      `gorm:"column:balance_after;not null"`
	CreatedAt    time.Time                  `gorm:"column:created_at;autoCreateTime"`
}
