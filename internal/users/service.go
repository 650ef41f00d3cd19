package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adiprasetyo/lokalmart-backend/internal/activity"
	"github.com/adiprasetyo/lokalmart-backend/pkg/db/models"
	dbtypes "github.com/adiprasetyo/lokalmart-backend/pkg/db/types"
	pkgerrors "github.com/adiprasetyo/lokalmart-backend/pkg/errors"
	"github.com/adiprasetyo/lokalmart-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes profile, social graph and moderation operations.
type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*models.User, error)
	Follow(ctx context.Context, followerID, targetID uuid.UUID) error
	Unfollow(ctx context.Context, followerID, targetID uuid.UUID) error
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.User, string, error)
	SetBanned(ctx context.Context, actor Actor, userID uuid.UUID, banned bool) error
	SetVerified(ctx context.Context, actor Actor, userID uuid.UUID, verified bool) error
	Delete(ctx context.Context, actor Actor, userID uuid.UUID) error
}

// Actor identifies the admin performing a moderation action.
type Actor struct {
	UserID uuid.UUID
	Name   string
}

// UpdateProfileInput carries the self-editable profile fields.
type UpdateProfileInput struct {
	Name     *string
	PhotoURL *string
}

type service struct {
	repo     Repository
	tx       txRunner
	activity activity.Service
}

// NewService wires a users service with the required dependencies.
func NewService(repo Repository, tx txRunner, activitySvc activity.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if activitySvc == nil {
		return nil, fmt.Errorf("activity service required")
	}
	return &service{repo: repo, tx: tx, activity: activitySvc}, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*models.User, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		updates["name"] = name
	}
	if input.PhotoURL != nil {
		updates["photo_url"] = *input.PhotoURL
	}
	if len(updates) == 0 {
		return s.GetByID(ctx, userID)
	}

	if err := s.repo.Update(ctx, userID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
	}
	return s.GetByID(ctx, userID)
}

func (s *service) Follow(ctx context.Context, followerID, targetID uuid.UUID) error {
	return s.changeFollow(ctx, followerID, targetID, true)
}

func (s *service) Unfollow(ctx context.Context, followerID, targetID uuid.UUID) error {
	return s.changeFollow(ctx, followerID, targetID, false)
}

func (s *service) changeFollow(ctx context.Context, followerID, targetID uuid.UUID, follow bool) error {
	if followerID == uuid.Nil || targetID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user ids required")
	}
	if followerID == targetID {
		return pkgerrors.New(pkgerrors.CodeValidation, "cannot follow yourself")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		follower, err := repo.FindByIDForUpdate(ctx, followerID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load follower")
		}
		target, err := repo.FindByIDForUpdate(ctx, targetID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "target user not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load target")
		}

		var following, followers dbtypes.UUIDArray
		if follow {
			following = appendUnique(follower.Following, target.ID)
			followers = appendUnique(target.Followers, follower.ID)
		} else {
			following = removeID(follower.Following, target.ID)
			followers = removeID(target.Followers, follower.ID)
		}

		if err := repo.Update(ctx, follower.ID, map[string]any{"following": following}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update following")
		}
		if err := repo.Update(ctx, target.ID, map[string]any{"followers": followers}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update followers")
		}
		return nil
	})
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.User, string, error) {
	return s.repo.List(ctx, params, filters)
}

func (s *service) SetBanned(ctx context.Context, actor Actor, userID uuid.UUID, banned bool) error {
	action := "user.unban"
	if banned {
		action = "user.ban"
	}
	return s.moderate(ctx, actor, userID, map[string]any{"is_banned": banned}, action)
}

func (s *service) SetVerified(ctx context.Context, actor Actor, userID uuid.UUID, verified bool) error {
	action := "user.unverify"
	if verified {
		action = "user.verify"
	}
	return s.moderate(ctx, actor, userID, map[string]any{"is_verified": verified}, action)
}

func (s *service) moderate(ctx context.Context, actor Actor, userID uuid.UUID, updates map[string]any, action string) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByID(ctx, userID); err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
		}
		if err := repo.Update(ctx, userID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply moderation update")
		}
		return s.activity.RecordTx(ctx, tx, activity.RecordInput{
			UserID:    &userID,
			ActorName: actor.Name,
			Action:    action,
		})
	})
}

func (s *service) Delete(ctx context.Context, actor Actor, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Delete(ctx, userID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete user")
		}
		detail := fmt.Sprintf("user %s removed", userID)
		return s.activity.RecordTx(ctx, tx, activity.RecordInput{
			UserID:    &actor.UserID,
			ActorName: actor.Name,
			Action:    "user.delete",
			Detail:    &detail,
		})
	})
}

func appendUnique(list dbtypes.UUIDArray, id uuid.UUID) dbtypes.UUIDArray {
	for _, existing := range list {
		if existing == id {
			return list
		}
	}
	return append(list, id)
}

func removeID(list dbtypes.UUIDArray, id uuid.UUID) dbtypes.UUIDArray {
	out := make(dbtypes.UUIDArray, 0, len(list))
	for _, existing := range list {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}
