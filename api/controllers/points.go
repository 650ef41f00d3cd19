package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/adiprasetyo/lokalmart-backend/api/responses"
	"github.com/adiprasetyo/lokalmart-backend/api/validators"
	"github.com/adiprasetyo/lokalmart-backend/internal/points"
	"github.com/adiprasetyo/lokalmart-backend/internal/users"
	"github.com/adiprasetyo/lokalmart-backend/pkg/db/models"
	"github.com/adiprasetyo/lokalmart-backend/pkg/enums"
	"github.com/adiprasetyo/lokalmart-backend/pkg/logger"
)

// PointsHistory pages the caller's ledger, newest first.
func PointsHistory(svc points.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, next, err := svc.ListHistory(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pagedResponse{Items: fromPointHistory(list), NextCursor: next})
	}
}

type adjustPointsRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
	Amount int64     `json:"amount" validate:"required,ne=0"`
	Reason string    `json:"reason" validate:"required,max=500"`
}

// AdminPointsAdjust writes a manual ledger entry against a user's balance.
// Negative amounts clamp at zero rather than fail.
func AdminPointsAdjust(svc points.Service, usersSvc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, actorName, err := actorIdentity(r, usersSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload adjustPointsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		entry, err := svc.AddTransaction(r.Context(), points.AddTransactionInput{
			UserID:    payload.UserID,
			Amount:    payload.Amount,
			Type:      enums.PointTransactionAdminAdjust,
			Reason:    validators.SanitizeString(payload.Reason, 500),
			ActorName: actorName,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		views := fromPointHistory([]models.PointHistory{*entry})
		responses.WriteSuccessStatus(w, http.StatusCreated, views[0])
	}
}

// AdminPointsHistory pages any user's ledger.
func AdminPointsHistory(svc points.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := pathUUID(r, "userID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, next, err := svc.ListHistory(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pagedResponse{Items: fromPointHistory(list), NextCursor: next})
	}
}
