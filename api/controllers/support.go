package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/adiprasetyo/lokalmart-backend/api/responses"
	"github.com/adiprasetyo/lokalmart-backend/api/validators"
	"github.com/adiprasetyo/lokalmart-backend/internal/support"
	"github.com/adiprasetyo/lokalmart-backend/internal/users"
	"github.com/adiprasetyo/lokalmart-backend/pkg/db/models"
	"github.com/adiprasetyo/lokalmart-backend/pkg/enums"
	pkgerrors "github.com/adiprasetyo/lokalmart-backend/pkg/errors"
	"github.com/adiprasetyo/lokalmart-backend/pkg/logger"
)

type fileReportRequest struct {
	TargetType string    `json:"target_type" validate:"required,oneof=PRODUCT SELLER REVIEW"`
	TargetID   uuid.UUID `json:"target_id" validate:"required"`
	Reason     string    `json:"reason" validate:"required,min=10,max=2000"`
}

// SupportFileReport records a complaint against a product, seller or review.
func SupportFileReport(svc support.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload fileReportRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		report, err := svc.FileReport(r.Context(), userID, support.ReportInput{
			TargetType: payload.TargetType,
			TargetID:   payload.TargetID,
			Reason:     validators.SanitizeString(payload.Reason, 2000),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, fromReport(report))
	}
}

type submitFeedbackRequest struct {
	Message string `json:"message" validate:"required,min=5,max=4000"`
}

func SupportSubmitFeedback(svc support.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload submitFeedbackRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		entry, err := svc.SubmitFeedback(r.Context(), userID, validators.SanitizeString(payload.Message, 4000))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		views := fromFeedback([]models.Feedback{*entry})
		responses.WriteSuccessStatus(w, http.StatusCreated, views[0])
	}
}

// AdminReportsList pages complaints, optionally filtered by status.
func AdminReportsList(svc support.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var filters support.ReportFilters
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseReportStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter"))
				return
			}
			filters.Status = status
		}
		list, next, err := svc.ListReports(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pagedResponse{Items: fromReports(list), NextCursor: next})
	}
}

type resolveReportRequest struct {
	Status string `json:"status" validate:"required"`
}

func AdminReportResolve(svc support.Service, usersSvc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorUserID, actorName, err := actorIdentity(r, usersSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		reportID, err := pathUUID(r, "reportID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload resolveReportRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseReportStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid report status"))
			return
		}
		actor := support.Actor{UserID: actorUserID, Name: actorName}
		report, err := svc.ResolveReport(r.Context(), actor, reportID, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, fromReport(report))
	}
}

func AdminFeedbackList(svc support.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, next, err := svc.ListFeedback(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pagedResponse{Items: fromFeedback(list), NextCursor: next})
	}
}
