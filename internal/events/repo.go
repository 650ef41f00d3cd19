package events

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/adiprasetyo/lokalmart-backend/pkg/db/models"
)

// Repository manages the singleton lucky-wheel configuration row.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Get(ctx context.Context) (*models.EventConfig, error)
	Save(ctx context.Context, config *models.EventConfig) error
	FindUserForUpdate(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an events repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Get(ctx context.Context) (*models.EventConfig, error) {
	var config models.EventConfig
	if err := r.db.WithContext(ctx).Order("updated_at DESC").First(&config).Error; err != nil {
		return nil, err
	}
	return &config, nil
}

func (r *repository) Save(ctx context.Context, config *models.EventConfig) error {
	return r.db.WithContext(ctx).Save(config).Error
}

func (r *repository) FindUserForUpdate(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}
