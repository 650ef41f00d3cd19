package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/adiprasetyo/lokalmart-backend/pkg/types"
)

// EventConfig is the singleton lucky-wheel configuration document.
type EventConfig struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	IsActive  bool              `gorm:"column:is_active;not null;default:false"`
	SpinCost  int64             `gorm:"column:spin_cost;not null;default:0"`
	Prizes    types.WheelPrizes `gorm:"column:prizes;type:jsonb;serializer:json"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
