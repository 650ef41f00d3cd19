package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adiprasetyo/lokalmart-backend/pkg/db/models"
	"github.com/adiprasetyo/lokalmart-backend/pkg/enums"
	pkgerrors "github.com/adiprasetyo/lokalmart-backend/pkg/errors"
	"github.com/adiprasetyo/lokalmart-backend/pkg/outbox"
	"github.com/adiprasetyo/lokalmart-backend/pkg/pagination"
)

const maxMessageLength = 4000

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service manages buyer/support and buyer/seller conversations.
type Service interface {
	OpenSession(ctx context.Context, userID uuid.UUID, kind enums.ChatSessionKind, sellerID *uuid.UUID) (*models.ChatSession, error)
	SendMessage(ctx context.Context, actor Actor, sessionID uuid.UUID, body string) (*models.ChatMessage, error)
	CloseSession(ctx context.Context, actor Actor, sessionID uuid.UUID) (*models.ChatSession, error)
	ListSessions(ctx context.Context, actor Actor, params pagination.Params) ([]models.ChatSession, string, error)
	ListMessages(ctx context.Context, actor Actor, sessionID uuid.UUID, params pagination.Params) ([]models.ChatMessage, string, error)
}

// Actor identifies the authenticated participant.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// MessageSentEvent feeds the realtime chat subscription.
type MessageSentEvent struct {
	SessionID uuid.UUID `json:"session_id"`
	MessageID uuid.UUID `json:"message_id"`
	SenderID  uuid.UUID `json:"sender_id"`
	Body      string    `json:"body"`
}

// SessionClosedEvent signals subscribers that the conversation ended.
type SessionClosedEvent struct {
	SessionID uuid.UUID `json:"session_id"`
	ClosedBy  uuid.UUID `json:"closed_by"`
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
}

// NewService wires a chat service with the required dependencies.
func NewService(repo Repository, tx txRunner, outboxSvc outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("chat repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: outboxSvc}, nil
}

// OpenSession returns the user's open session for the given counterpart,
// creating one if none exists.
func (s *service) OpenSession(ctx context.Context, userID uuid.UUID, kind enums.ChatSessionKind, sellerID *uuid.UUID) (*models.ChatSession, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid session kind")
	}
	if kind == enums.ChatSessionSeller && sellerID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller sessions need a seller id")
	}
	if kind == enums.ChatSessionSupport {
		sellerID = nil
	}

	existing, err := s.repo.FindOpenSession(ctx, userID, kind, sellerID)
	if err == nil {
		return existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up open session")
	}

	session := &models.ChatSession{
		UserID:   userID,
		SellerID: sellerID,
		Kind:     kind,
		Status:   enums.ChatSessionOpen,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create session")
	}
	return session, nil
}

func (s *service) SendMessage(ctx context.Context, actor Actor, sessionID uuid.UUID, body string) (*models.ChatMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message body is required")
	}
	if len(body) > maxMessageLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message body is too long")
	}

	var message *models.ChatMessage
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		session, err := repo.FindSessionByID(ctx, sessionID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "session not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session")
		}
		if !canParticipate(actor, session) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "not a participant in this session")
		}
		if session.Status != enums.ChatSessionOpen {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "session is closed")
		}

		message = &models.ChatMessage{
			SessionID: session.ID,
			SenderID:  actor.UserID,
			Body:      body,
		}
		if err := repo.CreateMessage(ctx, message); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append message")
		}

		now := time.Now()
		if err := repo.UpdateSession(ctx, session.ID, map[string]any{"last_message_at": &now}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stamp session")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventChatMessageSent,
			AggregateType: enums.AggregateChatSession,
			AggregateID:   session.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: actor.UserID, Role: string(actor.Role)},
			Data: MessageSentEvent{
				SessionID: session.ID,
				MessageID: message.ID,
				SenderID:  actor.UserID,
				Body:      body,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return message, nil
}

// CloseSession ends a conversation. Only the session's seller or an admin
// may close; buyers cannot.
func (s *service) CloseSession(ctx context.Context, actor Actor, sessionID uuid.UUID) (*models.ChatSession, error) {
	var closed *models.ChatSession
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		session, err := repo.FindSessionByID(ctx, sessionID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "session not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session")
		}
		if !canClose(actor, session) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the seller or an admin can close a session")
		}
		if session.Status == enums.ChatSessionClosed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "session is already closed")
		}

		if err := repo.UpdateSession(ctx, session.ID, map[string]any{"status": enums.ChatSessionClosed}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close session")
		}
		session.Status = enums.ChatSessionClosed
		closed = session

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventChatSessionClosed,
			AggregateType: enums.AggregateChatSession,
			AggregateID:   session.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: actor.UserID, Role: string(actor.Role)},
			Data:          SessionClosedEvent{SessionID: session.ID, ClosedBy: actor.UserID},
		})
	})
	if err != nil {
		return nil, err
	}
	return closed, nil
}

func (s *service) ListSessions(ctx context.Context, actor Actor, params pagination.Params) ([]models.ChatSession, string, error) {
	switch actor.Role {
	case enums.UserRoleAdmin:
		return s.repo.ListSessionsAll(ctx, params)
	case enums.UserRoleSeller:
		return s.repo.ListSessionsBySeller(ctx, actor.UserID, params)
	default:
		return s.repo.ListSessionsByUser(ctx, actor.UserID, params)
	}
}

func (s *service) ListMessages(ctx context.Context, actor Actor, sessionID uuid.UUID, params pagination.Params) ([]models.ChatMessage, string, error) {
	session, err := s.repo.FindSessionByID(ctx, sessionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, "", pkgerrors.New(pkgerrors.CodeNotFound, "session not found")
		}
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session")
	}
	if !canParticipate(actor, session) {
		return nil, "", pkgerrors.New(pkgerrors.CodeForbidden, "not a participant in this session")
	}
	return s.repo.ListMessages(ctx, sessionID, params)
}

func canParticipate(actor Actor, session *models.ChatSession) bool {
	if actor.Role == enums.UserRoleAdmin {
		return true
	}
	if session.UserID == actor.UserID {
		return true
	}
	return session.SellerID != nil && *session.SellerID == actor.UserID
}

func canClose(actor Actor, session *models.ChatSession) bool {
	if actor.Role == enums.UserRoleAdmin {
		return true
	}
	return session.SellerID != nil && *session.SellerID == actor.UserID
}
