package chat

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adiprasetyo/lokalmart-backend/pkg/db/models"
	"github.com/adiprasetyo/lokalmart-backend/pkg/enums"
	"github.com/adiprasetyo/lokalmart-backend/pkg/outbox"
	"github.com/adiprasetyo/lokalmart-backend/pkg/pagination"
)

type stubRepo struct {
	sessions map[uuid.UUID]*models.ChatSession
	messages []models.ChatMessage
}

func newStubRepo(sessions ...*models.ChatSession) *stubRepo {
	repo := &stubRepo{sessions: map[uuid.UUID]*models.ChatSession{}}
	for _, session := range sessions {
		repo.sessions[session.ID] = session
	}
	return repo
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) CreateSession(ctx context.Context, session *models.ChatSession) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	s.sessions[session.ID] = session
	return nil
}

func (s *stubRepo) FindSessionByID(ctx context.Context, id uuid.UUID) (*models.ChatSession, error) {
	session, ok := s.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *session
	return &copied, nil
}

func (s *stubRepo) FindOpenSession(ctx context.Context, userID uuid.UUID, kind enums.ChatSessionKind, sellerID *uuid.UUID) (*models.ChatSession, error) {
	for _, session := range s.sessions {
		if session.UserID != userID || session.Kind != kind || session.Status != enums.ChatSessionOpen {
			continue
		}
		if sellerID == nil && session.SellerID == nil {
			copied := *session
			return &copied, nil
		}
		if sellerID != nil && session.SellerID != nil && *session.SellerID == *sellerID {
			copied := *session
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) UpdateSession(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	session, ok := s.sessions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if status, ok := updates["status"].(enums.ChatSessionStatus); ok {
		session.Status = status
	}
	return nil
}

func (s *stubRepo) ListSessionsByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.ChatSession, string, error) {
	var rows []models.ChatSession
	for _, session := range s.sessions {
		if session.UserID == userID {
			rows = append(rows, *session)
		}
	}
	return rows, "", nil
}

func (s *stubRepo) ListSessionsBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) ([]models.ChatSession, string, error) {
	var rows []models.ChatSession
	for _, session := range s.sessions {
		if session.SellerID != nil && *session.SellerID == sellerID {
			rows = append(rows, *session)
		}
	}
	return rows, "", nil
}

func (s *stubRepo) ListSessionsAll(ctx context.Context, params pagination.Params) ([]models.ChatSession, string, error) {
	var rows []models.ChatSession
	for _, session := range s.sessions {
		rows = append(rows, *session)
	}
	return rows, "", nil
}

func (s *stubRepo) CreateMessage(ctx context.Context, message *models.ChatMessage) error {
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	s.messages = append(s.messages, *message)
	return nil
}

func (s *stubRepo) ListMessages(ctx context.Context, sessionID uuid.UUID, params pagination.Params) ([]models.ChatMessage, string, error) {
	var rows []models.ChatMessage
	for _, message := range s.messages {
		if message.SessionID == sessionID {
			rows = append(rows, message)
		}
	}
	return rows, "", nil
}

type recordingOutbox struct {
	events []outbox.DomainEvent
}

func (r *recordingOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	r.events = append(r.events, event)
	return nil
}

type passthroughTxRunner struct{}

func (passthroughTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

func newTestService(t *testing.T, repo Repository, ob *recordingOutbox) Service {
	t.Helper()
	svc, err := NewService(repo, passthroughTxRunner{}, ob)
	if err != nil {
		t.Fatalf("chat service: %v", err)
	}
	return svc
}

func TestOpenSessionReusesExistingOpenOne(t *testing.T) {
	userID := uuid.New()
	repo := newStubRepo()
	svc := newTestService(t, repo, &recordingOutbox{})

	first, err := svc.OpenSession(context.Background(), userID, enums.ChatSessionSupport, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	second, err := svc.OpenSession(context.Background(), userID, enums.ChatSessionSupport, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected the same session, got %s and %s", first.ID, second.ID)
	}
	if len(repo.sessions) != 1 {
		t.Fatalf("sessions = %d, want 1", len(repo.sessions))
	}
}

func TestOpenSellerSessionRequiresSellerID(t *testing.T) {
	svc := newTestService(t, newStubRepo(), &recordingOutbox{})
	if _, err := svc.OpenSession(context.Background(), uuid.New(), enums.ChatSessionSeller, nil); err == nil {
		t.Fatal("expected missing seller id rejection")
	}
}

func TestSendMessageEmitsEventAndGuardsParticipants(t *testing.T) {
	buyer := uuid.New()
	seller := uuid.New()
	session := &models.ChatSession{
		ID:       uuid.New(),
		UserID:   buyer,
		SellerID: &seller,
		Kind:     enums.ChatSessionSeller,
		Status:   enums.ChatSessionOpen,
	}
	repo := newStubRepo(session)
	ob := &recordingOutbox{}
	svc := newTestService(t, repo, ob)

	message, err := svc.SendMessage(context.Background(), Actor{UserID: buyer, Role: enums.UserRoleMember}, session.ID, "Halo, barangnya masih ada?")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if message.SenderID != buyer || len(repo.messages) != 1 {
		t.Fatalf("message not appended: %+v", repo.messages)
	}
	if len(ob.events) != 1 || ob.events[0].EventType != enums.EventChatMessageSent {
		t.Fatalf("expected chat_message_sent event, got %+v", ob.events)
	}

	outsider := Actor{UserID: uuid.New(), Role: enums.UserRoleMember}
	if _, err := svc.SendMessage(context.Background(), outsider, session.ID, "hi"); err == nil {
		t.Fatal("expected outsider rejection")
	}

	if _, err := svc.SendMessage(context.Background(), Actor{UserID: buyer}, session.ID, "   "); err == nil {
		t.Fatal("expected blank body rejection")
	}
}

func TestCloseSessionSellerOrAdminOnly(t *testing.T) {
	buyer := uuid.New()
	seller := uuid.New()
	session := &models.ChatSession{
		ID:       uuid.New(),
		UserID:   buyer,
		SellerID: &seller,
		Kind:     enums.ChatSessionSeller,
		Status:   enums.ChatSessionOpen,
	}
	repo := newStubRepo(session)
	ob := &recordingOutbox{}
	svc := newTestService(t, repo, ob)

	if _, err := svc.CloseSession(context.Background(), Actor{UserID: buyer, Role: enums.UserRoleMember}, session.ID); err == nil {
		t.Fatal("buyers must not close sessions")
	}

	closed, err := svc.CloseSession(context.Background(), Actor{UserID: seller, Role: enums.UserRoleSeller}, session.ID)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.Status != enums.ChatSessionClosed {
		t.Fatalf("status = %s, want CLOSED", closed.Status)
	}
	if len(ob.events) != 1 || ob.events[0].EventType != enums.EventChatSessionClosed {
		t.Fatalf("expected chat_session_closed event, got %+v", ob.events)
	}

	if _, err := svc.SendMessage(context.Background(), Actor{UserID: buyer}, session.ID, "halo"); err == nil {
		t.Fatal("expected closed session to reject messages")
	}
}

func TestListSessionsScopesByRole(t *testing.T) {
	buyer := uuid.New()
	seller := uuid.New()
	mine := &models.ChatSession{ID: uuid.New(), UserID: buyer, Kind: enums.ChatSessionSupport, Status: enums.ChatSessionOpen}
	theirs := &models.ChatSession{ID: uuid.New(), UserID: uuid.New(), SellerID: &seller, Kind: enums.ChatSessionSeller, Status: enums.ChatSessionOpen}
	repo := newStubRepo(mine, theirs)
	svc := newTestService(t, repo, &recordingOutbox{})

	rows, _, err := svc.ListSessions(context.Background(), Actor{UserID: buyer, Role: enums.UserRoleMember}, pagination.Params{})
	if err != nil || len(rows) != 1 || rows[0].ID != mine.ID {
		t.Fatalf("member listing = %v (%v)", rows, err)
	}

	rows, _, err = svc.ListSessions(context.Background(), Actor{UserID: seller, Role: enums.UserRoleSeller}, pagination.Params{})
	if err != nil || len(rows) != 1 || rows[0].ID != theirs.ID {
		t.Fatalf("seller listing = %v (%v)", rows, err)
	}

	rows, _, err = svc.ListSessions(context.Background(), Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}, pagination.Params{})
	if err != nil || len(rows) != 2 {
		t.Fatalf("admin listing = %v (%v)", rows, err)
	}
}
