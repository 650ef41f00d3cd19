package coupons

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adiprasetyo/lokalmart-backend/pkg/db/models"
	dbtypes "github.com/adiprasetyo/lokalmart-backend/pkg/db/types"
	pkgerrors "github.com/adiprasetyo/lokalmart-backend/pkg/errors"
	"github.com/adiprasetyo/lokalmart-backend/pkg/pagination"
)

// Service exposes coupon validation for the cart/checkout paths and CRUD
// for the back-office.
type Service interface {
	Validate(ctx context.Context, input ValidateInput) (*models.Coupon, error)
	ValidateTx(ctx context.Context, tx *gorm.DB, input ValidateInput) (*models.Coupon, error)
	RedeemTx(ctx context.Context, tx *gorm.DB, couponID uuid.UUID) error
	Create(ctx context.Context, input CreateInput) (*models.Coupon, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Coupon, error)
	List(ctx context.Context, params pagination.Params) ([]models.Coupon, string, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ValidateInput describes the cart line a coupon is applied to. Coupons are
// platform-only: a non-nil SellerID always fails validation.
type ValidateInput struct {
	Code      string
	ProductID uuid.UUID
	SellerID  *uuid.UUID
	Now       time.Time
}

// CreateInput carries the writable coupon fields.
type CreateInput struct {
	Code            string
	Description     *string
	DiscountAmount  int64
	ExpiresAt       *time.Time
	MaxUsage        *int
	ValidProductIDs []uuid.UUID
}

// UpdateInput carries optional coupon updates; nil fields are untouched.
type UpdateInput struct {
	Description     *string
	DiscountAmount  *int64
	IsActive        *bool
	ExpiresAt       *time.Time
	MaxUsage        *int
	ValidProductIDs []uuid.UUID
}

type service struct {
	repo Repository
}

// NewService wires a coupons service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupons repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Validate(ctx context.Context, input ValidateInput) (*models.Coupon, error) {
	return s.validate(ctx, s.repo, input, false)
}

// ValidateTx re-validates inside a checkout transaction with the coupon row
// locked, so the usage check and the later increment cannot race.
func (s *service) ValidateTx(ctx context.Context, tx *gorm.DB, input ValidateInput) (*models.Coupon, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction required")
	}
	return s.validate(ctx, s.repo.WithTx(tx), input, true)
}

// The checks run in a fixed order: platform-only, existence, active,
// expiry, usage headroom, product scope.
func (s *service) validate(ctx context.Context, repo Repository, input ValidateInput, forUpdate bool) (*models.Coupon, error) {
	if strings.TrimSpace(input.Code) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}
	if input.SellerID != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupons only apply to platform products")
	}

	var (
		coupon *models.Coupon
		err    error
	)
	if forUpdate {
		coupon, err = repo.FindByCodeForUpdate(ctx, input.Code)
	} else {
		coupon, err = repo.FindByCode(ctx, input.Code)
	}
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}

	if !coupon.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "coupon is inactive")
	}

	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}
	if coupon.ExpiresAt != nil && now.After(*coupon.ExpiresAt) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "coupon has expired")
	}

	if coupon.MaxUsage != nil && coupon.CurrentUsage >= *coupon.MaxUsage {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "coupon usage limit reached")
	}

	if len(coupon.ValidProductIDs) > 0 {
		inScope := false
		for _, id := range coupon.ValidProductIDs {
			if id == input.ProductID {
				inScope = true
				break
			}
		}
		if !inScope {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon does not apply to this product")
		}
	}

	return coupon, nil
}

// RedeemTx bumps the usage counter inside the caller's transaction. Callers
// must have validated with ValidateTx in the same transaction.
func (s *service) RedeemTx(ctx context.Context, tx *gorm.DB, couponID uuid.UUID) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required")
	}
	if couponID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "coupon id required")
	}
	if err := s.repo.WithTx(tx).IncrementUsage(ctx, couponID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment coupon usage")
	}
	return nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Coupon, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}
	if input.DiscountAmount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount amount must be positive")
	}
	if input.MaxUsage != nil && *input.MaxUsage <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "max usage must be positive")
	}

	coupon := &models.Coupon{
		Code:            code,
		Description:     input.Description,
		DiscountAmount:  input.DiscountAmount,
		IsActive:        true,
		ExpiresAt:       input.ExpiresAt,
		MaxUsage:        input.MaxUsage,
		ValidProductIDs: dbtypes.UUIDArray(input.ValidProductIDs),
	}
	if err := s.repo.Create(ctx, coupon); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create coupon")
	}
	return coupon, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Coupon, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon id required")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}

	updates := map[string]any{}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.DiscountAmount != nil {
		if *input.DiscountAmount <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount amount must be positive")
		}
		updates["discount_amount"] = *input.DiscountAmount
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.ExpiresAt != nil {
		updates["expires_at"] = *input.ExpiresAt
	}
	if input.MaxUsage != nil {
		if *input.MaxUsage <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "max usage must be positive")
		}
		updates["max_usage"] = *input.MaxUsage
	}
	if input.ValidProductIDs != nil {
		updates["valid_product_ids"] = dbtypes.UUIDArray(input.ValidProductIDs)
	}
	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update coupon")
		}
	}
	return s.repo.FindByID(ctx, id)
}

func (s *service) List(ctx context.Context, params pagination.Params) ([]models.Coupon, string, error) {
	return s.repo.List(ctx, params)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "coupon id required")
	}
	return s.repo.Delete(ctx, id)
}
