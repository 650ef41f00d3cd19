package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/adiprasetyo/lokalmart-backend/pkg/enums"
)

// Media is an uploaded file (payment proof, product photo, avatar)
// stored in object storage and served from a public URL.
type Media struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index"`
	Kind      enums.MediaKind `gorm:"column:kind;type:text;not null"`
	ObjectKey string          `gorm:"column:object_key;not null;uniqueIndex"`
	URL       string          `gorm:"column:url;not null"`
	FileName  string          `gorm:"column:file_name;not null"`
	MimeType  string          `gorm:"column:mime_type;not null"`
	SizeBytes int64           `gorm:"column:size_bytes;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
