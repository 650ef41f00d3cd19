package points

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/adiprasetyo/lokalmart-backend/pkg/db/models"
	"github.com/adiprasetyo/lokalmart-backend/pkg/pagination"
)

// Repository manages the point ledger and the balance column on users.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindUserForUpdate(ctx context.Context, userID uuid.UUID) (*models.User, error)
	UpdateUserBalance(ctx context.Context, userID uuid.UUID, balance int64) error
	CreateHistory(ctx context.Context, row *models.PointHistory) error
	ListHistoryByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.PointHistory, string, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a points repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindUserForUpdate(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", userID).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) UpdateUserBalance(ctx context.Context, userID uuid.UUID, balance int64) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("points", balance).Error
}

func (r *repository) CreateHistory(ctx context.Context, row *models.PointHistory) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *repository) ListHistoryByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.PointHistory, string, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.PointHistory
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
