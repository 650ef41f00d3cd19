package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/adiprasetyo/lokalmart-backend/pkg/enums"
)

// Report is a user-filed complaint against a product, seller or review.
type Report struct {
	ID         uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ReporterID uuid.UUID          `gorm:"column:reporter_id;type:uuid;not null;index"`
	TargetType string             `gorm:"column:target_type;not null"`
	TargetID   uuid.UUID          `gorm:"column:target_id;type:uuid;not null"`
	Reason     string             `gorm:"column:reason;not null"`
	Status     enums.ReportStatus `gorm:"column:status;type:text;not null;default:'OPEN'"`
	ResolvedBy *uuid.UUID         `gorm:"column:resolved_by;type:uuid"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// Feedback is free-form user feedback about the platform.
type Feedback struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	Message   string    `gorm:"column:message;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
