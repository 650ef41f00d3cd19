package products

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adiprasetyo/lokalmart-backend/internal/activity"
	"github.com/adiprasetyo/lokalmart-backend/internal/stores"
	"github.com/adiprasetyo/lokalmart-backend/internal/users"
	"github.com/adiprasetyo/lokalmart-backend/pkg/db/models"
	"github.com/adiprasetyo/lokalmart-backend/pkg/enums"
	pkgerrors "github.com/adiprasetyo/lokalmart-backend/pkg/errors"
	"github.com/adiprasetyo/lokalmart-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes catalog reads plus seller and admin mutations.
type Service interface {
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Product, string, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	CreateSellerProduct(ctx context.Context, sellerID uuid.UUID, input CreateInput) (*models.Product, error)
	CreatePlatformProduct(ctx context.Context, actor users.Actor, input CreateInput) (*models.Product, error)
	UpdateSellerProduct(ctx context.Context, sellerID, productID uuid.UUID, input UpdateInput) (*models.Product, error)
	DeleteSellerProduct(ctx context.Context, sellerID, productID uuid.UUID) error
	SetFlashSale(ctx context.Context, actor users.Actor, productID uuid.UUID, on bool) error
	SetBoosted(ctx context.Context, actor users.Actor, productID uuid.UUID, on bool) error
}

// CreateInput carries the writable catalog fields.
type CreateInput struct {
	Name        string
	Description *string
	Category    string
	Price       int64
	Stock       int
	ImageURL    *string
}

// UpdateInput carries optional updates; nil fields are untouched.
type UpdateInput struct {
	Name        *string
	Description *string
	Category    *string
	Price       *int64
	Stock       *int
	ImageURL    *string
	IsActive    *bool
}

type service struct {
	repo     Repository
	users    users.Repository
	tx       txRunner
	activity activity.Service
}

// NewService wires a products service with the required dependencies.
func NewService(repo Repository, usersRepo users.Repository, tx txRunner, activitySvc activity.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if activitySvc == nil {
		return nil, fmt.Errorf("activity service required")
	}
	return &service{repo: repo, users: usersRepo, tx: tx, activity: activitySvc}, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Product, string, error) {
	return s.repo.List(ctx, params, filters)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func validateCreate(input CreateInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if input.Price < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if input.Stock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	return nil
}

func (s *service) CreateSellerProduct(ctx context.Context, sellerID uuid.UUID, input CreateInput) (*models.Product, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "seller identity missing")
	}
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	var product *models.Product
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		usersRepo := s.users.WithTx(tx)
		repo := s.repo.WithTx(tx)

		seller, err := usersRepo.FindByID(ctx, sellerID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "seller not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller")
		}
		if seller.StoreStatus != enums.StoreStatusActive {
			return pkgerrors.New(pkgerrors.CodeForbidden, "store is not active")
		}

		count, err := repo.CountBySeller(ctx, sellerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count listings")
		}
		limit := stores.ListingLimitForLevel(seller.StoreLevel)
		if count >= int64(limit) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("listing limit reached for store level %d", seller.StoreLevel))
		}

		product = &models.Product{
			SellerID:    &sellerID,
			Name:        strings.TrimSpace(input.Name),
			Description: input.Description,
			Category:    input.Category,
			Price:       input.Price,
			Stock:       input.Stock,
			ImageURL:    input.ImageURL,
			IsActive:    true,
		}
		if err := repo.Create(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *service) CreatePlatformProduct(ctx context.Context, actor users.Actor, input CreateInput) (*models.Product, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Category:    input.Category,
		Price:       input.Price,
		Stock:       input.Stock,
		ImageURL:    input.ImageURL,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create platform product")
	}
	return product, nil
}

func (s *service) UpdateSellerProduct(ctx context.Context, sellerID, productID uuid.UUID, input UpdateInput) (*models.Product, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "seller identity missing")
	}
	product, err := s.ownedProduct(ctx, sellerID, productID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be empty")
		}
		updates["name"] = name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Category != nil {
		updates["category"] = *input.Category
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		updates["price"] = *input.Price
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
		}
		updates["stock"] = *input.Stock
	}
	if input.ImageURL != nil {
		updates["image_url"] = *input.ImageURL
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if len(updates) == 0 {
		return product, nil
	}

	if err := s.repo.Update(ctx, product.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return s.repo.FindByID(ctx, product.ID)
}

func (s *service) DeleteSellerProduct(ctx context.Context, sellerID, productID uuid.UUID) error {
	if sellerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "seller identity missing")
	}
	product, err := s.ownedProduct(ctx, sellerID, productID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, product.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func (s *service) ownedProduct(ctx context.Context, sellerID, productID uuid.UUID) (*models.Product, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.SellerID == nil || *product.SellerID != sellerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product does not belong to seller")
	}
	return product, nil
}

// SetFlashSale is admin-only; sellers cannot flag their own listings.
func (s *service) SetFlashSale(ctx context.Context, actor users.Actor, productID uuid.UUID, on bool) error {
	return s.adminFlag(ctx, actor, productID, "is_flash_sale", on, "product.flash_sale")
}

// SetBoosted is admin-only; boosted listings sort first in the catalog.
func (s *service) SetBoosted(ctx context.Context, actor users.Actor, productID uuid.UUID, on bool) error {
	return s.adminFlag(ctx, actor, productID, "is_boosted", on, "product.boost")
}

func (s *service) adminFlag(ctx context.Context, actor users.Actor, productID uuid.UUID, column string, on bool, action string) error {
	if actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByID(ctx, productID); err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if err := repo.Update(ctx, productID, map[string]any{column: on}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product flag")
		}
		detail := fmt.Sprintf("product %s %s=%t", productID, column, on)
		return s.activity.RecordTx(ctx, tx, activity.RecordInput{
			UserID:    &actor.UserID,
			ActorName: actor.Name,
			Action:    action,
			Detail:    &detail,
		})
	})
}
