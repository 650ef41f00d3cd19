package controllers

import (
	"net/http"

	"github.com/adiprasetyo/lokalmart-backend/api/responses"
	"github.com/adiprasetyo/lokalmart-backend/internal/activity"
	"github.com/adiprasetyo/lokalmart-backend/internal/archive"
	"github.com/adiprasetyo/lokalmart-backend/pkg/logger"
)

// AdminActivityList pages the platform-wide audit trail.
func AdminActivityList(svc activity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, next, err := svc.ListRecent(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pagedResponse{Items: fromActivityLogs(list), NextCursor: next})
	}
}

// AdminUserActivityList pages one user's audit trail.
func AdminUserActivityList(svc activity.Service, logg *logger.Logger) http.HandlerFunc {
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
		list, next, err := svc.ListByUser(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pagedResponse{Items: fromActivityLogs(list), NextCursor: next})
	}
}

// AdminArchivesList pages the weekly cleanup snapshots.
func AdminArchivesList(svc archive.Service, logg *logger.Logger) http.HandlerFunc {
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
		responses.WriteSuccess(w, pagedResponse{Items: fromArchives(list), NextCursor: next})
	}
}
