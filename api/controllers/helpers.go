package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/adiprasetyo/lokalmart-backend/api/middleware"
	"github.com/adiprasetyo/lokalmart-backend/api/validators"
	"github.com/adiprasetyo/lokalmart-backend/internal/users"
	"github.com/adiprasetyo/lokalmart-backend/pkg/enums"
	pkgerrors "github.com/adiprasetyo/lokalmart-backend/pkg/errors"
	"github.com/adiprasetyo/lokalmart-backend/pkg/pagination"
)

func actorID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}

func actorRole(r *http.Request) enums.UserRole {
	return enums.UserRole(middleware.RoleFromContext(r.Context()))
}

// actorIdentity resolves the caller's id and display name. Audit trails
// record the name from the row, not from the token, so renames never leave
// stale attribution behind.
func actorIdentity(r *http.Request, usersSvc users.Service) (uuid.UUID, string, error) {
	id, err := actorID(r)
	if err != nil {
		return uuid.Nil, "", err
	}
	user, err := usersSvc.GetByID(r.Context(), id)
	if err != nil {
		return uuid.Nil, "", err
	}
	return id, user.Name, nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid "+name)
	}
	return id, nil
}

func pageParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: r.URL.Query().Get("cursor"),
	}, nil
}

type pagedResponse struct {
	Items      any    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
}
