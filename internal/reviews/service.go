package reviews

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adiprasetyo/lokalmart-backend/internal/products"
	"github.com/adiprasetyo/lokalmart-backend/pkg/db/models"
	"github.com/adiprasetyo/lokalmart-backend/pkg/enums"
	pkgerrors "github.com/adiprasetyo/lokalmart-backend/pkg/errors"
	"github.com/adiprasetyo/lokalmart-backend/pkg/pagination"
)

// Service manages per-user product ratings.
type Service interface {
	Submit(ctx context.Context, userID uuid.UUID, input SubmitInput) (*models.Review, error)
	ListByProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) ([]models.Review, string, error)
	Summary(ctx context.Context, productID uuid.UUID) (*RatingSummary, error)
	Delete(ctx context.Context, actor Actor, productID, reviewUserID uuid.UUID) error
}

// Actor identifies who is deleting a review.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// SubmitInput carries one rating submission. Resubmitting overwrites the
// user's previous review of the product.
type SubmitInput struct {
	ProductID uuid.UUID
	Rating    int
	Comment   *string
}

// RatingSummary aggregates a product's reviews.
type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

type service struct {
	repo     Repository
	products products.Repository
}

// NewService wires a reviews service with the required dependencies.
func NewService(repo Repository, productsRepo products.Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reviews repository required")
	}
	if productsRepo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	return &service{repo: repo, products: productsRepo}, nil
}

func (s *service) Submit(ctx context.Context, userID uuid.UUID, input SubmitInput) (*models.Review, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}
	if input.Comment != nil {
		trimmed := strings.TrimSpace(*input.Comment)
		if trimmed == "" {
			input.Comment = nil
		} else {
			input.Comment = &trimmed
		}
	}

	if _, err := s.products.FindByID(ctx, input.ProductID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	review := &models.Review{
		ProductID: input.ProductID,
		UserID:    userID,
		Rating:    input.Rating,
		Comment:   input.Comment,
	}
	if err := s.repo.Upsert(ctx, review); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save review")
	}
	return s.repo.FindByProductAndUser(ctx, input.ProductID, userID)
}

func (s *service) ListByProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) ([]models.Review, string, error) {
	if productID == uuid.Nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	return s.repo.ListByProduct(ctx, productID, params)
}

func (s *service) Summary(ctx context.Context, productID uuid.UUID) (*RatingSummary, error) {
	average, count, err := s.repo.AverageRating(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate ratings")
	}
	return &RatingSummary{Average: average, Count: count}, nil
}

// Delete removes a review; users may delete their own, admins anyone's.
func (s *service) Delete(ctx context.Context, actor Actor, productID, reviewUserID uuid.UUID) error {
	if actor.Role != enums.UserRoleAdmin && actor.UserID != reviewUserID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "cannot delete another user's review")
	}
	review, err := s.repo.FindByProductAndUser(ctx, productID, reviewUserID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load review")
	}
	if err := s.repo.Delete(ctx, review.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete review")
	}
	return nil
}
