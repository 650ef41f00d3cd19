package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/adiprasetyo/lokalmart-backend/pkg/enums"
)

// Archive captures the JSON payloads of rows removed by the weekly cleanup
// job. The archive row is written before the batch delete commits.
type Archive struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Kind      enums.ArchiveKind `gorm:"column:kind;type:text;not null"`
	Payload   json.RawMessage   `gorm:"column:payload;type:jsonb;not null"`
	ItemCount int               `gorm:"column:item_count;not null"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
}
