package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adiprasetyo/lokalmart-backend/internal/coupons"
	"github.com/adiprasetyo/lokalmart-backend/internal/products"
	"github.com/adiprasetyo/lokalmart-backend/pkg/db/models"
	pkgerrors "github.com/adiprasetyo/lokalmart-backend/pkg/errors"
)

// Service manages the buyer's cart. Lines are keyed by a cart-scoped
// synthetic id, so the same product can stack as separate lines and the
// coupon-apply path can rewrite a single line in place.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	UpsertItem(ctx context.Context, userID uuid.UUID, input UpsertInput) (*models.CartItem, error)
	ApplyCoupon(ctx context.Context, userID, itemID uuid.UUID, code string) (*models.CartItem, error)
	RemoveCoupon(ctx context.Context, userID, itemID uuid.UUID) (*models.CartItem, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
}

// UpsertInput adds a new line (nil ID) or rewrites an existing one.
type UpsertInput struct {
	ID        *uuid.UUID
	ProductID uuid.UUID
	Quantity  int
}

type service struct {
	repo     Repository
	products products.Repository
	coupons  coupons.Service
}

// NewService wires a cart service with the required dependencies.
func NewService(repo Repository, productsRepo products.Repository, couponsSvc coupons.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if productsRepo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if couponsSvc == nil {
		return nil, fmt.Errorf("coupons service required")
	}
	return &service{repo: repo, products: productsRepo, coupons: couponsSvc}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) UpsertItem(ctx context.Context, userID uuid.UUID, input UpsertInput) (*models.CartItem, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	product, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "product is no longer available")
	}

	if input.ID != nil {
		item, err := s.ownedItem(ctx, userID, *input.ID)
		if err != nil {
			return nil, err
		}
		updates := map[string]any{
			"product_id":   product.ID,
			"seller_id":    product.SellerID,
			"product_name": product.Name,
			"unit_price":   product.Price,
			"quantity":     input.Quantity,
		}
		if item.ProductID != product.ID {
			// A rewritten line drops any coupon tied to the old product.
			updates["coupon_code"] = nil
			updates["discount_amount"] = 0
		}
		if err := s.repo.Update(ctx, item.ID, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart line")
		}
		return s.repo.FindByID(ctx, item.ID)
	}

	item := &models.CartItem{
		UserID:      userID,
		ProductID:   product.ID,
		SellerID:    product.SellerID,
		ProductName: product.Name,
		UnitPrice:   product.Price,
		Quantity:    input.Quantity,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add cart line")
	}
	return item, nil
}

func (s *service) ApplyCoupon(ctx context.Context, userID, itemID uuid.UUID, code string) (*models.CartItem, error) {
	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	coupon, err := s.coupons.Validate(ctx, coupons.ValidateInput{
		Code:      code,
		ProductID: item.ProductID,
		SellerID:  item.SellerID,
	})
	if err != nil {
		return nil, err
	}

	updates := map[string]any{
		"coupon_code":     coupon.Code,
		"discount_amount": coupon.DiscountAmount,
	}
	if err := s.repo.Update(ctx, item.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply coupon to cart line")
	}
	return s.repo.FindByID(ctx, item.ID)
}

func (s *service) RemoveCoupon(ctx context.Context, userID, itemID uuid.UUID) (*models.CartItem, error) {
	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{
		"coupon_code":     nil,
		"discount_amount": 0,
	}
	if err := s.repo.Update(ctx, item.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove coupon from cart line")
	}
	return s.repo.FindByID(ctx, item.ID)
}

func (s *service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error {
	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, item.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart line")
	}
	return nil
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if err := s.repo.DeleteByUser(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func (s *service) ownedItem(ctx context.Context, userID, itemID uuid.UUID) (*models.CartItem, error) {
	if userID == uuid.Nil || itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and item id required")
	}
	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}
	if item.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cart item does not belong to user")
	}
	return item, nil
}
