package archive

import (
	"context"

	"gorm.io/gorm"

	"github.com/adiprasetyo/lokalmart-backend/pkg/db/models"
	"github.com/adiprasetyo/lokalmart-backend/pkg/pagination"
)

// Repository manages cleanup archive rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, archive *models.Archive) error
	List(ctx context.Context, params pagination.Params) ([]models.Archive, string, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an archive repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, archive *models.Archive) error {
	return r.db.WithContext(ctx).Create(archive).Error
}

func (r *repository) List(ctx context.Context, params pagination.Params) ([]models.Archive, string, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	query := r.db.WithContext(ctx).Model(&models.Archive{})
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Archive
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
