package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/adiprasetyo/lokalmart-backend/api/responses"
	"github.com/adiprasetyo/lokalmart-backend/api/validators"
	"github.com/adiprasetyo/lokalmart-backend/internal/chat"
	"github.com/adiprasetyo/lokalmart-backend/pkg/enums"
	pkgerrors "github.com/adiprasetyo/lokalmart-backend/pkg/errors"
	"github.com/adiprasetyo/lokalmart-backend/pkg/logger"
)

func chatActor(r *http.Request) (chat.Actor, error) {
	userID, err := actorID(r)
	if err != nil {
		return chat.Actor{}, err
	}
	return chat.Actor{UserID: userID, Role: actorRole(r)}, nil
}

type openChatSessionRequest struct {
	Kind     string     `json:"kind" validate:"required"`
	SellerID *uuid.UUID `json:"seller_id"`
}

// ChatOpenSession starts a support or seller conversation. Seller chats
// require a seller id; support chats forbid one.
func ChatOpenSession(svc chat.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload openChatSessionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		kind, err := enums.ParseChatSessionKind(payload.Kind)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid session kind"))
			return
		}
		session, err := svc.OpenSession(r.Context(), userID, kind, payload.SellerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, fromChatSession(session))
	}
}

type sendChatMessageRequest struct {
	Body string `json:"body" validate:"required,max=4000"`
}

func ChatSendMessage(svc chat.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := chatActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sessionID, err := pathUUID(r, "sessionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload sendChatMessageRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		message, err := svc.SendMessage(r.Context(), actor, sessionID, payload.Body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, fromChatMessage(message))
	}
}

func ChatCloseSession(svc chat.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := chatActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sessionID, err := pathUUID(r, "sessionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		session, err := svc.CloseSession(r.Context(), actor, sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, fromChatSession(session))
	}
}

// ChatListSessions pages the conversations visible to the caller. Buyers
// see their own, sellers also see chats against their store, admins see
// support queues.
func ChatListSessions(svc chat.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := chatActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sessions, next, err := svc.ListSessions(r.Context(), actor, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pagedResponse{Items: fromChatSessions(sessions), NextCursor: next})
	}
}

func ChatListMessages(svc chat.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := chatActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sessionID, err := pathUUID(r, "sessionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		messages, next, err := svc.ListMessages(r.Context(), actor, sessionID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pagedResponse{Items: fromChatMessages(messages), NextCursor: next})
	}
}
