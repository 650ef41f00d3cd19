package controllers

import (
	"net/http"

	"github.com/adiprasetyo/lokalmart-backend/api/responses"
	"github.com/adiprasetyo/lokalmart-backend/api/validators"
	"github.com/adiprasetyo/lokalmart-backend/internal/events"
	"github.com/adiprasetyo/lokalmart-backend/internal/users"
	"github.com/adiprasetyo/lokalmart-backend/pkg/logger"
	"github.com/adiprasetyo/lokalmart-backend/pkg/types"
)

// EventsWheelConfig returns the current lucky wheel setup.
func EventsWheelConfig(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := svc.GetConfig(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, fromEventConfig(cfg))
	}
}

// EventsWheelSpin performs one paid spin and returns the prize drawn.
func EventsWheelSpin(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Spin(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type wheelPrizeRequest struct {
	Label  string `json:"label" validate:"required,max=100"`
	Points int64  `json:"points" validate:"gte=0"`
	Weight int    `json:"weight" validate:"required,gt=0"`
}

type updateWheelConfigRequest struct {
	IsActive bool                `json:"is_active"`
	SpinCost int64               `json:"spin_cost" validate:"gte=0"`
	Prizes   []wheelPrizeRequest `json:"prizes" validate:"required,min=1,dive"`
}

// AdminWheelConfigUpdate replaces the wheel configuration wholesale.
func AdminWheelConfigUpdate(svc events.Service, usersSvc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorUserID, actorName, err := actorIdentity(r, usersSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateWheelConfigRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		prizes := make(types.WheelPrizes, 0, len(payload.Prizes))
		for _, prize := range payload.Prizes {
			prizes = append(prizes, types.WheelPrize{
				Label:  validators.SanitizeString(prize.Label, 100),
				Points: prize.Points,
				Weight: prize.Weight,
			})
		}
		actor := events.Actor{UserID: actorUserID, Name: actorName}
		cfg, err := svc.UpdateConfig(r.Context(), actor, events.ConfigInput{
			IsActive: payload.IsActive,
			SpinCost: payload.SpinCost,
			Prizes:   prizes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, fromEventConfig(cfg))
	}
}
