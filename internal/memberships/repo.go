package memberships

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/adiprasetyo/lokalmart-backend/pkg/db/models"
	"github.com/adiprasetyo/lokalmart-backend/pkg/enums"
)

// Repository manages membership plans and the membership columns on users.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreatePlan(ctx context.Context, plan *models.MembershipPlan) error
	FindPlanByID(ctx context.Context, id uuid.UUID) (*models.MembershipPlan, error)
	FindPlanByTier(ctx context.Context, tier enums.MembershipTier) (*models.MembershipPlan, error)
	ListPlans(ctx context.Context, includeInactive bool) ([]models.MembershipPlan, error)
	UpdatePlan(ctx context.Context, id uuid.UUID, updates map[string]any) error
	DeletePlan(ctx context.Context, id uuid.UUID) error

	FindUserForUpdate(ctx context.Context, id uuid.UUID) (*models.User, error)
	SetUserMembership(ctx context.Context, userID uuid.UUID, tier enums.MembershipTier, endsAt *time.Time) error
	FindExpiredMembers(ctx context.Context, cutoff time.Time, limit int) ([]models.User, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a memberships repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreatePlan(ctx context.Context, plan *models.MembershipPlan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

func (r *repository) FindPlanByID(ctx context.Context, id uuid.UUID) (*models.MembershipPlan, error) {
	var plan models.MembershipPlan
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *repository) FindPlanByTier(ctx context.Context, tier enums.MembershipTier) (*models.MembershipPlan, error) {
	var plan models.MembershipPlan
	if err := r.db.WithContext(ctx).Where("tier = ?", tier).First(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *repository) ListPlans(ctx context.Context, includeInactive bool) ([]models.MembershipPlan, error) {
	query := r.db.WithContext(ctx).Model(&models.MembershipPlan{})
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	var plans []models.MembershipPlan
	if err := query.Order("point_cost ASC").Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *repository) UpdatePlan(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.MembershipPlan{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) DeletePlan(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.MembershipPlan{}).Error
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

func (r *repository) SetUserMembership(ctx context.Context, userID uuid.UUID, tier enums.MembershipTier, endsAt *time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"membership_tier":      tier,
			"subscription_ends_at": endsAt,
		}).Error
}

func (r *repository) FindExpiredMembers(ctx context.Context, cutoff time.Time, limit int) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("membership_tier <> ?", enums.MembershipTierNone).
		Where("subscription_ends_at IS NOT NULL AND subscription_ends_at < ?", cutoff).
		Order("subscription_ends_at ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
