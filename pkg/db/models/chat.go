package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/adiprasetyo/lokalmart-backend/pkg/enums"
)

// ChatSession is a conversation between a buyer and support or a seller.
type ChatSession struct {
	ID            uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID               `gorm:"column:user_id;type:uuid;not null;index"`
	SellerID      *uuid.UUID              `gorm:"column:seller_id;type:uuid;index"`
	Kind          enums.ChatSessionKind   `gorm:"column:kind;type:text;not null"`
	Status        enums.ChatSessionStatus `gorm:"column:status;type:text;not null;default:'OPEN'"`
	LastMessageAt *time.Time              `gorm:"column:last_message_at"`
	CreatedAt     time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

// ChatMessage is an append-only message inside a session.
type ChatMessage struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SessionID uuid.UUID `gorm:"column:session_id;type:uuid;not null;index"`
	SenderID  uuid.UUID `gorm:"column:sender_id;type:uuid;not null"`
	Body      string    `gorm:"column:body;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
