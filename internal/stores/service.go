package stores

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adiprasetyo/lokalmart-backend/internal/activity"
	"github.com/adiprasetyo/lokalmart-backend/internal/users"
	"github.com/adiprasetyo/lokalmart-backend/pkg/db/models"
	"github.com/adiprasetyo/lokalmart-backend/pkg/enums"
	pkgerrors "github.com/adiprasetyo/lokalmart-backend/pkg/errors"
	"github.com/adiprasetyo/lokalmart-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service manages seller storefront lifecycle and progression.
type Service interface {
	OpenStore(ctx context.Context, userID uuid.UUID, storeName string) (*models.User, error)
	GetStorefront(ctx context.Context, sellerID uuid.UUID) (*Storefront, error)
	Levels() []Level
	AddExpTx(ctx context.Context, tx *gorm.DB, sellerID uuid.UUID, exp int) error
	SetStoreStatus(ctx context.Context, actor users.Actor, sellerID uuid.UUID, status enums.StoreStatus) error
}

// Storefront is the public view of a seller's store.
type Storefront struct {
	SellerID   uuid.UUID         `json:"seller_id"`
	StoreName  string            `json:"store_name"`
	Level      Level             `json:"level"`
	Exp        int               `json:"exp"`
	Status     enums.StoreStatus `json:"status"`
	IsVerified bool              `json:"is_verified"`
	Followers  int               `json:"followers"`
}

// StoreLevelUpEvent is emitted when a store crosses a level threshold.
type StoreLevelUpEvent struct {
	SellerID  uuid.UUID `json:"seller_id"`
	StoreName string    `json:"store_name"`
	FromLevel int       `json:"from_level"`
	ToLevel   int       `json:"to_level"`
	Exp       int       `json:"exp"`
}

type service struct {
	users    users.Repository
	tx       txRunner
	outbox   outboxPublisher
	activity activity.Service
}

// NewService wires a stores service with the required dependencies.
func NewService(usersRepo users.Repository, tx txRunner, outboxSvc outboxPublisher, activitySvc activity.Service) (Service, error) {
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if activitySvc == nil {
		return nil, fmt.Errorf("activity service required")
	}
	return &service{users: usersRepo, tx: tx, outbox: outboxSvc, activity: activitySvc}, nil
}

func (s *service) OpenStore(ctx context.Context, userID uuid.UUID, storeName string) (*models.User, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	name := strings.TrimSpace(storeName)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store name is required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.users.WithTx(tx)

		user, err := repo.FindByIDForUpdate(ctx, userID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
		}
		if user.IsBanned {
			return pkgerrors.New(pkgerrors.CodeForbidden, "banned users cannot open a store")
		}
		if user.StoreStatus != enums.StoreStatusNone {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "store already opened")
		}
		if user.Role == enums.UserRoleAdmin {
			return pkgerrors.New(pkgerrors.CodeForbidden, "admins cannot open a store")
		}

		updates := map[string]any{
			"role":         enums.UserRoleSeller,
			"store_name":   name,
			"store_status": enums.StoreStatusActive,
			"store_level":  1,
			"store_exp":    0,
		}
		if err := repo.Update(ctx, user.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open store")
		}

		detail := fmt.Sprintf("store %q opened", name)
		return s.activity.RecordTx(ctx, tx, activity.RecordInput{
			UserID:    &user.ID,
			ActorName: user.Name,
			Action:    "store.open",
			Detail:    &detail,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, userID)
}

func (s *service) GetStorefront(ctx context.Context, sellerID uuid.UUID) (*Storefront, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	user, err := s.users.FindByID(ctx, sellerID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller")
	}
	if user.StoreStatus == enums.StoreStatusNone || user.StoreName == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
	}

	return &Storefront{
		SellerID:   user.ID,
		StoreName:  *user.StoreName,
		Level:      LevelForExp(user.StoreExp),
		Exp:        user.StoreExp,
		Status:     user.StoreStatus,
		IsVerified: user.IsVerified,
		Followers:  len(user.Followers),
	}, nil
}

func (s *service) Levels() []Level {
	return LevelTable()
}

// AddExpTx awards exp inside the caller's transaction and promotes the store
// when a threshold is crossed. Levels never decrease.
func (s *service) AddExpTx(ctx context.Context, tx *gorm.DB, sellerID uuid.UUID, exp int) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for exp award")
	}
	if sellerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	if exp <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "exp must be positive")
	}

	repo := s.users.WithTx(tx)
	user, err := repo.FindByIDForUpdate(ctx, sellerID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "seller not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller")
	}
	if user.StoreStatus == enums.StoreStatusNone {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "user has no store")
	}

	newExp := user.StoreExp + exp
	newLevel := LevelForExp(newExp).Level
	if newLevel < user.StoreLevel {
		newLevel = user.StoreLevel
	}

	updates := map[string]any{
		"store_exp":   newExp,
		"store_level": newLevel,
	}
	if err := repo.Update(ctx, user.ID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "award store exp")
	}

	if newLevel > user.StoreLevel {
		storeName := ""
		if user.StoreName != nil {
			storeName = *user.StoreName
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventStoreLevelUp,
			AggregateType: enums.AggregateUser,
			AggregateID:   user.ID,
			Version:       1,
			Data: StoreLevelUpEvent{
				SellerID:  user.ID,
				StoreName: storeName,
				FromLevel: user.StoreLevel,
				ToLevel:   newLevel,
				Exp:       newExp,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) SetStoreStatus(ctx context.Context, actor users.Actor, sellerID uuid.UUID, status enums.StoreStatus) error {
	if sellerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	if actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}
	if status != enums.StoreStatusActive && status != enums.StoreStatusSuspended {
		return pkgerrors.New(pkgerrors.CodeValidation, "status must be ACTIVE or SUSPENDED")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.users.WithTx(tx)
		user, err := repo.FindByIDForUpdate(ctx, sellerID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "seller not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller")
		}
		if user.StoreStatus == enums.StoreStatusNone {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "user has no store")
		}
		if err := repo.Update(ctx, sellerID, map[string]any{"store_status": status}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update store status")
		}
		detail := fmt.Sprintf("store status set to %s", status)
		return s.activity.RecordTx(ctx, tx, activity.RecordInput{
			UserID:    &sellerID,
			ActorName: actor.Name,
			Action:    "store.status",
			Detail:    &detail,
		})
	})
}
