package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adiprasetyo/lokalmart-backend/api/responses"
	"github.com/adiprasetyo/lokalmart-backend/api/validators"
	"github.com/adiprasetyo/lokalmart-backend/internal/memberships"
	"github.com/adiprasetyo/lokalmart-backend/internal/users"
	"github.com/adiprasetyo/lokalmart-backend/pkg/enums"
	pkgerrors "github.com/adiprasetyo/lokalmart-backend/pkg/errors"
	"github.com/adiprasetyo/lokalmart-backend/pkg/logger"
)

// MembershipPlansList shows the purchasable tiers. Admins may include
// deactivated plans with ?include_inactive=true.
func MembershipPlansList(svc memberships.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		includeInactive := r.URL.Query().Get("include_inactive") == "true" &&
			actorRole(r) == enums.UserRoleAdmin
		plans, err := svc.ListPlans(r.Context(), includeInactive)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, fromPlans(plans))
	}
}

type purchaseMembershipRequest struct {
	PlanID uuid.UUID `json:"plan_id" validate:"required"`
}

// MembershipPurchase charges the plan's point cost and extends the caller's tier.
func MembershipPurchase(svc memberships.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload purchaseMembershipRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		user, err := svc.Purchase(r.Context(), userID, payload.PlanID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, fromUser(user))
	}
}

type planRequest struct {
	Tier         string          `json:"tier" validate:"required"`
	Name         string          `json:"name" validate:"required,min=3,max=100"`
	PointCost    int64           `json:"point_cost" validate:"required,gt=0"`
	DurationDays int             `json:"duration_days" validate:"required,gt=0"`
	DisplayPrice decimal.Decimal `json:"display_price"`
	IsActive     bool            `json:"is_active"`
}

func (p planRequest) toInput() (memberships.PlanInput, error) {
	tier, err := enums.ParseMembershipTier(p.Tier)
	if err != nil {
		return memberships.PlanInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid membership tier")
	}
	return memberships.PlanInput{
		Tier:         tier,
		Name:         validators.SanitizeString(p.Name, 100),
		PointCost:    p.PointCost,
		DurationDays: p.DurationDays,
		DisplayPrice: p.DisplayPrice,
		IsActive:     p.IsActive,
	}, nil
}

func AdminPlanCreate(svc memberships.Service, usersSvc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorUserID, actorName, err := actorIdentity(r, usersSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload planRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actor := memberships.Actor{UserID: actorUserID, Name: actorName}
		plan, err := svc.CreatePlan(r.Context(), actor, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, fromPlan(plan))
	}
}

func AdminPlanUpdate(svc memberships.Service, usersSvc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorUserID, actorName, err := actorIdentity(r, usersSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		planID, err := pathUUID(r, "planID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload planRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actor := memberships.Actor{UserID: actorUserID, Name: actorName}
		plan, err := svc.UpdatePlan(r.Context(), actor, planID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, fromPlan(plan))
	}
}

func AdminPlanDelete(svc memberships.Service, usersSvc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorUserID, actorName, err := actorIdentity(r, usersSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		planID, err := pathUUID(r, "planID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actor := memberships.Actor{UserID: actorUserID, Name: actorName}
		if err := svc.DeletePlan(r.Context(), actor, planID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
