package memberships

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/adiprasetyo/lokalmart-backend/internal/activity"
	"github.com/adiprasetyo/lokalmart-backend/internal/points"
	"github.com/adiprasetyo/lokalmart-backend/pkg/db/models"
	"github.com/adiprasetyo/lokalmart-backend/pkg/enums"
	pkgerrors "github.com/adiprasetyo/lokalmart-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages membership plans and tier purchases.
type Service interface {
	ListPlans(ctx context.Context, includeInactive bool) ([]models.MembershipPlan, error)
	GetPlan(ctx context.Context, id uuid.UUID) (*models.MembershipPlan, error)
	CreatePlan(ctx context.Context, actor Actor, input PlanInput) (*models.MembershipPlan, error)
	UpdatePlan(ctx context.Context, actor Actor, id uuid.UUID, input PlanInput) (*models.MembershipPlan, error)
	DeletePlan(ctx context.Context, actor Actor, id uuid.UUID) error
	Purchase(ctx context.Context, userID uuid.UUID, planID uuid.UUID) (*models.User, error)
	ReconcileExpired(ctx context.Context, now time.Time, limit int) (int, error)
}

// Actor identifies the admin performing a plan mutation.
type Actor struct {
	UserID uuid.UUID
	Name   string
}

// PlanInput carries the writable plan fields.
type PlanInput struct {
	Tier         enums.MembershipTier
	Name         string
	PointCost    int64
	DurationDays int
	DisplayPrice decimal.Decimal
	IsActive     bool
}

type service struct {
	repo     Repository
	points   points.Service
	activity activity.Service
	tx       txRunner
}

// NewService wires a memberships service with the required dependencies.
func NewService(repo Repository, pointsSvc points.Service, activitySvc activity.Service, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("memberships repository required")
	}
	if pointsSvc == nil {
		return nil, fmt.Errorf("points service required")
	}
	if activitySvc == nil {
		return nil, fmt.Errorf("activity service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, points: pointsSvc, activity: activitySvc, tx: tx}, nil
}

func (s *service) ListPlans(ctx context.Context, includeInactive bool) ([]models.MembershipPlan, error) {
	return s.repo.ListPlans(ctx, includeInactive)
}

func (s *service) GetPlan(ctx context.Context, id uuid.UUID) (*models.MembershipPlan, error) {
	plan, err := s.repo.FindPlanByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "membership plan not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load membership plan")
	}
	return plan, nil
}

func (s *service) CreatePlan(ctx context.Context, actor Actor, input PlanInput) (*models.MembershipPlan, error) {
	if err := validatePlanInput(input); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindPlanByTier(ctx, input.Tier); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a plan for this tier already exists")
	} else if err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check tier uniqueness")
	}

	plan := &models.MembershipPlan{
		Tier:         input.Tier,
		Name:         strings.TrimSpace(input.Name),
		PointCost:    input.PointCost,
		DurationDays: input.DurationDays,
		DisplayPrice: input.DisplayPrice,
		IsActive:     input.IsActive,
	}
	if err := s.repo.CreatePlan(ctx, plan); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create membership plan")
	}
	s.audit(ctx, actor, "membership.plan_create", fmt.Sprintf("plan %s (%s)", plan.Name, plan.Tier))
	return plan, nil
}

func (s *service) UpdatePlan(ctx context.Context, actor Actor, id uuid.UUID, input PlanInput) (*models.MembershipPlan, error) {
	if err := validatePlanInput(input); err != nil {
		return nil, err
	}
	plan, err := s.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	if plan.Tier != input.Tier {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "plan tier is immutable")
	}
	updates := map[string]any{
		"name":          strings.TrimSpace(input.Name),
		"point_cost":    input.PointCost,
		"duration_days": input.DurationDays,
		"display_price": input.DisplayPrice,
		"is_active":     input.IsActive,
	}
	if err := s.repo.UpdatePlan(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update membership plan")
	}
	s.audit(ctx, actor, "membership.plan_update", fmt.Sprintf("plan %s (%s)", input.Name, plan.Tier))
	return s.GetPlan(ctx, id)
}

func (s *service) DeletePlan(ctx context.Context, actor Actor, id uuid.UUID) error {
	plan, err := s.GetPlan(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeletePlan(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete membership plan")
	}
	s.audit(ctx, actor, "membership.plan_delete", fmt.Sprintf("plan %s (%s)", plan.Name, plan.Tier))
	return nil
}

// Purchase charges the plan's point cost through the ledger and stamps the
// membership columns. Buying the tier the user already holds extends the
// current subscription end instead of restarting it.
func (s *service) Purchase(ctx context.Context, userID uuid.UUID, planID uuid.UUID) (*models.User, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	var updated *models.User
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		plan, err := repo.FindPlanByID(ctx, planID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "membership plan not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load membership plan")
		}
		if !plan.IsActive {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "membership plan is not for sale")
		}

		user, err := repo.FindUserForUpdate(ctx, userID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
		}
		if user.Points < plan.PointCost {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient points for this plan")
		}

		now := time.Now()
		start := now
		if user.MembershipTier == plan.Tier && user.SubscriptionEndsAt != nil && user.SubscriptionEndsAt.After(now) {
			start = *user.SubscriptionEndsAt
		}
		endsAt := start.AddDate(0, 0, plan.DurationDays)

		if _, err := s.points.AddTransactionTx(ctx, tx, points.AddTransactionInput{
			UserID:    user.ID,
			Amount:    plan.PointCost,
			Type:      enums.PointTransactionMembership,
			Reason:    fmt.Sprintf("membership %s (%s)", plan.Name, plan.Tier),
			ActorName: user.Name,
		}); err != nil {
			return err
		}

		if err := repo.SetUserMembership(ctx, user.ID, plan.Tier, &endsAt); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stamp membership")
		}

		user.MembershipTier = plan.Tier
		user.SubscriptionEndsAt = &endsAt
		user.Points -= plan.PointCost
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ReconcileExpired clears the tier on users whose subscription lapsed before
// now. Each user is handled in its own transaction so one bad row does not
// block the rest of the sweep.
func (s *service) ReconcileExpired(ctx context.Context, now time.Time, limit int) (int, error) {
	expired, err := s.repo.FindExpiredMembers(ctx, now, limit)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expired memberships")
	}

	cleared := 0
	for _, user := range expired {
		user := user
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)

			fresh, err := repo.FindUserForUpdate(ctx, user.ID)
			if err != nil {
				return err
			}
			// Re-check under the lock; the user may have renewed since
			// the sweep listed them.
			if fresh.MembershipTier == enums.MembershipTierNone ||
				fresh.SubscriptionEndsAt == nil ||
				fresh.SubscriptionEndsAt.After(now) {
				return nil
			}

			if err := repo.SetUserMembership(ctx, fresh.ID, enums.MembershipTierNone, nil); err != nil {
				return err
			}
			detail := fmt.Sprintf("tier %s expired at %s", fresh.MembershipTier, fresh.SubscriptionEndsAt.Format(time.RFC3339))
			return s.activity.RecordTx(ctx, tx, activity.RecordInput{
				UserID: &fresh.ID,
				Action: "membership.expire",
				Detail: &detail,
			})
		})
		if err != nil {
			return cleared, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear expired membership")
		}
		cleared++
	}
	return cleared, nil
}

func (s *service) audit(ctx context.Context, actor Actor, action, detail string) {
	input := activity.RecordInput{
		ActorName: actor.Name,
		Action:    action,
		Detail:    &detail,
	}
	if actor.UserID != uuid.Nil {
		input.UserID = &actor.UserID
	}
	_ = s.activity.Record(ctx, input)
}

func validatePlanInput(input PlanInput) error {
	if !input.Tier.IsPaid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "tier must be a paid membership tier")
	}
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "plan name is required")
	}
	if input.PointCost <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "point cost must be positive")
	}
	if input.DurationDays <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "duration must be positive")
	}
	if input.DisplayPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "display price cannot be negative")
	}
	return nil
}
