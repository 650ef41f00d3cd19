package chat

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adiprasetyo/lokalmart-backend/pkg/db/models"
	"github.com/adiprasetyo/lokalmart-backend/pkg/enums"
	"github.com/adiprasetyo/lokalmart-backend/pkg/pagination"
)

// Repository manages chat sessions and their append-only messages.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateSession(ctx context.Context, session *models.ChatSession) error
	FindSessionByID(ctx context.Context, id uuid.UUID) (*models.ChatSession, error)
	FindOpenSession(ctx context.Context, userID uuid.UUID, kind enums.ChatSessionKind, sellerID *uuid.UUID) (*models.ChatSession, error)
	UpdateSession(ctx context.Context, id uuid.UUID, updates map[string]any) error
	ListSessionsByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.ChatSession, string, error)
	ListSessionsBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) ([]models.ChatSession, string, error)
	ListSessionsAll(ctx context.Context, params pagination.Params) ([]models.ChatSession, string, error)
	CreateMessage(ctx context.Context, message *models.ChatMessage) error
	ListMessages(ctx context.Context, sessionID uuid.UUID, params pagination.Params) ([]models.ChatMessage, string, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a chat repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateSession(ctx context.Context, session *models.ChatSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *repository) FindSessionByID(ctx context.Context, id uuid.UUID) (*models.ChatSession, error) {
	var session models.ChatSession
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *repository) FindOpenSession(ctx context.Context, userID uuid.UUID, kind enums.ChatSessionKind, sellerID *uuid.UUID) (*models.ChatSession, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("kind = ?", kind).
		Where("status = ?", enums.ChatSessionOpen)
	if sellerID != nil {
		query = query.Where("seller_id = ?", *sellerID)
	} else {
		query = query.Where("seller_id IS NULL")
	}
	var session models.ChatSession
	if err := query.First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *repository) UpdateSession(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.ChatSession{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) ListSessionsByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.ChatSession, string, error) {
	return r.listSessions(r.db.WithContext(ctx).Where("user_id = ?", userID), params)
}

func (r *repository) ListSessionsBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) ([]models.ChatSession, string, error) {
	return r.listSessions(r.db.WithContext(ctx).Where("seller_id = ?", sellerID), params)
}

func (r *repository) ListSessionsAll(ctx context.Context, params pagination.Params) ([]models.ChatSession, string, error) {
	return r.listSessions(r.db.WithContext(ctx), params)
}

func (r *repository) listSessions(query *gorm.DB, params pagination.Params) ([]models.ChatSession, string, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.ChatSession
	if err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error; err != nil {
		return nil, "", err
	}

	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, next, nil
}

func (r *repository) CreateMessage(ctx context.Context, message *models.ChatMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *repository) ListMessages(ctx context.Context, sessionID uuid.UUID, params pagination.Params) ([]models.ChatMessage, string, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	query := r.db.WithContext(ctx).Where("session_id = ?", sessionID)
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.ChatMessage
	if err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error; err != nil {
		return nil, "", err
	}

	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, next, nil
}
