package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/adiprasetyo/lokalmart-backend/api/responses"
	"github.com/adiprasetyo/lokalmart-backend/api/validators"
	"github.com/adiprasetyo/lokalmart-backend/internal/coupons"
	"github.com/adiprasetyo/lokalmart-backend/pkg/logger"
)

type createCouponRequest struct {
	Code            string      `json:"code" validate:"required,min=3,max=64"`
	Description     *string     `json:"description" validate:"omitempty,max=500"`
	DiscountAmount  int64       `json:"discount_amount" validate:"required,gt=0"`
	ExpiresAt       *time.Time  `json:"expires_at"`
	MaxUsage        *int        `json:"max_usage" validate:"omitempty,gt=0"`
	ValidProductIDs []uuid.UUID `json:"valid_product_ids"`
}

func AdminCouponCreate(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		coupon, err := svc.Create(r.Context(), coupons.CreateInput{
			Code:            payload.Code,
			Description:     payload.Description,
			DiscountAmount:  payload.DiscountAmount,
			ExpiresAt:       payload.ExpiresAt,
			MaxUsage:        payload.MaxUsage,
			ValidProductIDs: payload.ValidProductIDs,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, fromCoupon(coupon))
	}
}

type updateCouponRequest struct {
	Description     *string     `json:"description" validate:"omitempty,max=500"`
	DiscountAmount  *int64      `json:"discount_amount" validate:"omitempty,gt=0"`
	IsActive        *bool       `json:"is_active"`
	ExpiresAt       *time.Time  `json:"expires_at"`
	MaxUsage        *int        `json:"max_usage" validate:"omitempty,gt=0"`
	ValidProductIDs []uuid.UUID `json:"valid_product_ids"`
}

func AdminCouponUpdate(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		couponID, err := pathUUID(r, "couponID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		coupon, err := svc.Update(r.Context(), couponID, coupons.UpdateInput{
			Description:     payload.Description,
			DiscountAmount:  payload.DiscountAmount,
			IsActive:        payload.IsActive,
			ExpiresAt:       payload.ExpiresAt,
			MaxUsage:        payload.MaxUsage,
			ValidProductIDs: payload.ValidProductIDs,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, fromCoupon(coupon))
	}
}

func AdminCouponsList(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, next, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pagedResponse{Items: fromCoupons(list), NextCursor: next})
	}
}

func AdminCouponDelete(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		couponID, err := pathUUID(r, "couponID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), couponID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
