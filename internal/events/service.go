package events

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adiprasetyo/lokalmart-backend/internal/activity"
	"github.com/adiprasetyo/lokalmart-backend/internal/points"
	"github.com/adiprasetyo/lokalmart-backend/pkg/db/models"
	"github.com/adiprasetyo/lokalmart-backend/pkg/enums"
	pkgerrors "github.com/adiprasetyo/lokalmart-backend/pkg/errors"
	"github.com/adiprasetyo/lokalmart-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service runs the lucky-wheel event: a weighted prize wheel whose spins
// are paid for and paid out through the points ledger.
type Service interface {
	GetConfig(ctx context.Context) (*models.EventConfig, error)
	UpdateConfig(ctx context.Context, actor Actor, input ConfigInput) (*models.EventConfig, error)
	Spin(ctx context.Context, userID uuid.UUID) (*SpinResult, error)
}

// Actor identifies the admin updating the wheel configuration.
type Actor struct {
	UserID uuid.UUID
	Name   string
}

// ConfigInput carries the writable wheel fields.
type ConfigInput struct {
	IsActive bool
	SpinCost int64
	Prizes   types.WheelPrizes
}

// SpinResult is the outcome of one paid spin.
type SpinResult struct {
	Prize        types.WheelPrize `json:"prize"`
	SpinCost     int64            `json:"spinCost"`
	BalanceAfter int64            `json:"balanceAfter"`
}

type service struct {
	repo     Repository
	points   points.Service
	activity activity.Service
	tx       txRunner
}

// NewService wires an events service with the required dependencies.
func NewService(repo Repository, pointsSvc points.Service, activitySvc activity.Service, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("events repository required")
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

func (s *service) GetConfig(ctx context.Context) (*models.EventConfig, error) {
	config, err := s.repo.Get(ctx)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			// No config yet means the wheel has never been set up.
			return &models.EventConfig{IsActive: false}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load event config")
	}
	return config, nil
}

func (s *service) UpdateConfig(ctx context.Context, actor Actor, input ConfigInput) (*models.EventConfig, error) {
	if input.SpinCost < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "spin cost cannot be negative")
	}
	for _, prize := range input.Prizes {
		if strings.TrimSpace(prize.Label) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "every prize needs a label")
		}
		if prize.Points < 0 || prize.Weight < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "prize points and weight cannot be negative")
		}
	}
	if input.IsActive && input.Prizes.TotalWeight() == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "an active wheel needs at least one weighted prize")
	}

	config, err := s.repo.Get(ctx)
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load event config")
	}
	if config == nil {
		config = &models.EventConfig{}
	}
	config.IsActive = input.IsActive
	config.SpinCost = input.SpinCost
	config.Prizes = input.Prizes

	if err := s.repo.Save(ctx, config); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save event config")
	}

	detail := fmt.Sprintf("active=%t cost=%d prizes=%d", config.IsActive, config.SpinCost, len(config.Prizes))
	_ = s.activity.Record(ctx, activity.RecordInput{
		UserID:    actorID(actor),
		ActorName: actor.Name,
		Action:    "event.config_update",
		Detail:    &detail,
	})
	return config, nil
}

// Spin charges the spin cost, rolls the weighted wheel and credits the
// prize, all through the points ledger inside one transaction.
func (s *service) Spin(ctx context.Context, userID uuid.UUID) (*SpinResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	var result *SpinResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		config, err := repo.Get(ctx)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "no event is running")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load event config")
		}
		if !config.IsActive {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "the event is not active")
		}
		total := config.Prizes.TotalWeight()
		if total == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "the wheel has no prizes")
		}

		user, err := repo.FindUserForUpdate(ctx, userID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
		}
		if user.Points < config.SpinCost {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient points to spin")
		}

		roll, err := rollWheel(total)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "roll wheel")
		}
		prize, ok := config.Prizes.Pick(roll)
		if !ok {
			return pkgerrors.New(pkgerrors.CodeInternal, "wheel roll out of range")
		}

		balance := user.Points
		if config.SpinCost > 0 {
			row, err := s.points.AddTransactionTx(ctx, tx, points.AddTransactionInput{
				UserID:    user.ID,
				Amount:    config.SpinCost,
				Type:      enums.PointTransactionSpend,
				Reason:    "lucky wheel spin",
				ActorName: user.Name,
			})
			if err != nil {
				return err
			}
			balance = row.BalanceAfter
		}
		if prize.Points > 0 {
			row, err := s.points.AddTransactionTx(ctx, tx, points.AddTransactionInput{
				UserID:    user.ID,
				Amount:    prize.Points,
				Type:      enums.PointTransactionEventReward,
				Reason:    fmt.Sprintf("lucky wheel prize: %s", prize.Label),
				ActorName: user.Name,
			})
			if err != nil {
				return err
			}
			balance = row.BalanceAfter
		}

		detail := fmt.Sprintf("won %q (%d points) for %d", prize.Label, prize.Points, config.SpinCost)
		if err := s.activity.RecordTx(ctx, tx, activity.RecordInput{
			UserID:    &user.ID,
			ActorName: user.Name,
			Action:    "event.spin",
			Detail:    &detail,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record spin")
		}

		result = &SpinResult{Prize: prize, SpinCost: config.SpinCost, BalanceAfter: balance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func rollWheel(totalWeight int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(totalWeight)))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()), nil
}

func actorID(actor Actor) *uuid.UUID {
	if actor.UserID == uuid.Nil {
		return nil
	}
	return &actor.UserID
}
