package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adiprasetyo/lokalmart-backend/internal/points"
	"github.com/adiprasetyo/lokalmart-backend/pkg/db/models"
	"github.com/adiprasetyo/lokalmart-backend/pkg/enums"
	"github.com/adiprasetyo/lokalmart-backend/pkg/outbox"
	"github.com/adiprasetyo/lokalmart-backend/pkg/pagination"
)

type stubOrdersRepo struct {
	orders  map[uuid.UUID]*models.Order
	updates map[uuid.UUID]map[string]any
	stale   []models.Order
}

func newStubOrdersRepo(rows ...*models.Order) *stubOrdersRepo {
	repo := &stubOrdersRepo{
		orders:  map[uuid.UUID]*models.Order{},
		updates: map[uuid.UUID]map[string]any{},
	}
	for _, row := range rows {
		repo.orders[row.ID] = row
	}
	return repo
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubOrdersRepo) Create(ctx context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.orders[order.ID] = order
	return nil
}

func (s *stubOrdersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	return &copied, nil
}

func (s *stubOrdersRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.FindByID(ctx, id)
}

func (s *stubOrdersRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if s.updates[id] == nil {
		s.updates[id] = map[string]any{}
	}
	for key, value := range updates {
		s.updates[id][key] = value
	}
	if status, ok := updates["status"].(enums.OrderStatus); ok {
		if order, found := s.orders[id]; found {
			order.Status = status
		}
	}
	return nil
}

func (s *stubOrdersRepo) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params, filters ListFilters) ([]models.Order, string, error) {
	var rows []models.Order
	for _, order := range s.orders {
		if order.UserID == userID {
			rows = append(rows, *order)
		}
	}
	return rows, "", nil
}

func (s *stubOrdersRepo) ListBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params, filters ListFilters) ([]models.Order, string, error) {
	panic("not implemented")
}

func (s *stubOrdersRepo) ListAll(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Order, string, error) {
	panic("not implemented")
}

func (s *stubOrdersRepo) FindPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	return s.stale, nil
}

func (s *stubOrdersRepo) FindTerminalOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	panic("not implemented")
}

func (s *stubOrdersRepo) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	panic("not implemented")
}

type recordingOutbox struct {
	events []outbox.DomainEvent
}

func (r *recordingOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	r.events = append(r.events, event)
	return nil
}

type recordingPoints struct {
	calls []points.AddTransactionInput
}

func (r *recordingPoints) AddTransaction(ctx context.Context, input points.AddTransactionInput) (*models.PointHistory, error) {
	r.calls = append(r.calls, input)
	return &models.PointHistory{}, nil
}

func (r *recordingPoints) AddTransactionTx(ctx context.Context, tx *gorm.DB, input points.AddTransactionInput) (*models.PointHistory, error) {
	r.calls = append(r.calls, input)
	return &models.PointHistory{}, nil
}

func (r *recordingPoints) ListHistory(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.PointHistory, string, error) {
	return nil, "", nil
}

type recordingExp struct {
	awards map[uuid.UUID]int
}

func (r *recordingExp) AddExpTx(ctx context.Context, tx *gorm.DB, sellerID uuid.UUID, exp int) error {
	if r.awards == nil {
		r.awards = map[uuid.UUID]int{}
	}
	r.awards[sellerID] += exp
	return nil
}

type passthroughTxRunner struct{}

func (passthroughTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

func testConfig() Config {
	return Config{
		RewardPoints:  100,
		ExpPerOrder:   10,
		NumberPrefix:  "LM",
		PendingMaxAge: 24 * time.Hour,
	}
}

func newTestService(t *testing.T, repo Repository, ob *recordingOutbox, pts *recordingPoints, exp *recordingExp) Service {
	t.Helper()
	svc, err := NewService(repo, passthroughTxRunner{}, ob, pts, exp, testConfig())
	if err != nil {
		t.Fatalf("orders service: %v", err)
	}
	return svc
}

func pendingOrder(userID uuid.UUID, sellerID *uuid.UUID) *models.Order {
	return &models.Order{
		ID:          uuid.New(),
		OrderNumber: "LM-20260830120000-TEST",
		UserID:      userID,
		SellerID:    sellerID,
		ProductID:   uuid.New(),
		ProductName: "Kopi",
		Quantity:    1,
		Price:       40000,
		Status:      enums.OrderStatusPending,
	}
}

func TestCompleteSellerOrderAwardsPointsAndExp(t *testing.T) {
	buyer := uuid.New()
	seller := uuid.New()
	order := pendingOrder(buyer, &seller)
	order.Status = enums.OrderStatusProcessed

	repo := newStubOrdersRepo(order)
	ob := &recordingOutbox{}
	pts := &recordingPoints{}
	exp := &recordingExp{}
	svc := newTestService(t, repo, ob, pts, exp)

	admin := Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin, Name: "admin"}
	if _, err := svc.Transition(context.Background(), admin, order.ID, enums.OrderStatusCompleted); err != nil {
		t.Fatalf("transition: %v", err)
	}

	if len(pts.calls) != 1 || pts.calls[0].Amount != 100 || pts.calls[0].UserID != buyer {
		t.Fatalf("points calls = %+v, want one 100-point earn for buyer", pts.calls)
	}
	if exp.awards[seller] != 10 {
		t.Fatalf("seller exp = %d, want 10", exp.awards[seller])
	}
	if len(ob.events) != 1 || ob.events[0].EventType != enums.EventOrderStatusChanged {
		t.Fatalf("expected one status change event, got %+v", ob.events)
	}
}

func TestTransitionRejectsIllegalMove(t *testing.T) {
	buyer := uuid.New()
	order := pendingOrder(buyer, nil)
	repo := newStubOrdersRepo(order)
	svc := newTestService(t, repo, &recordingOutbox{}, &recordingPoints{}, &recordingExp{})

	admin := Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}
	if _, err := svc.Transition(context.Background(), admin, order.ID, enums.OrderStatusCompleted); err == nil {
		t.Fatal("expected PENDING->COMPLETED to be rejected")
	}
}

func TestSellerCannotTransitionForeignOrder(t *testing.T) {
	buyer := uuid.New()
	seller := uuid.New()
	order := pendingOrder(buyer, &seller)
	repo := newStubOrdersRepo(order)
	svc := newTestService(t, repo, &recordingOutbox{}, &recordingPoints{}, &recordingExp{})

	other := Actor{UserID: uuid.New(), Role: enums.UserRoleSeller}
	if _, err := svc.Transition(context.Background(), other, order.ID, enums.OrderStatusProcessed); err == nil {
		t.Fatal("expected foreign seller to be rejected")
	}
}

func TestCancelOwnOnlyWhilePending(t *testing.T) {
	buyer := uuid.New()
	order := pendingOrder(buyer, nil)
	order.Status = enums.OrderStatusProcessed
	repo := newStubOrdersRepo(order)
	svc := newTestService(t, repo, &recordingOutbox{}, &recordingPoints{}, &recordingExp{})

	if _, err := svc.CancelOwn(context.Background(), buyer, order.ID); err == nil {
		t.Fatal("expected processed order cancel to be rejected")
	}
}

func TestAttachProofPendingOnly(t *testing.T) {
	buyer := uuid.New()
	order := pendingOrder(buyer, nil)
	repo := newStubOrdersRepo(order)
	ob := &recordingOutbox{}
	svc := newTestService(t, repo, ob, &recordingPoints{}, &recordingExp{})

	if _, err := svc.AttachPaymentProof(context.Background(), buyer, order.ID, "https://cdn.example.com/proof.jpg"); err != nil {
		t.Fatalf("attach proof: %v", err)
	}
	if repo.updates[order.ID]["payment_proof_url"] != "https://cdn.example.com/proof.jpg" {
		t.Fatalf("proof update missing: %v", repo.updates[order.ID])
	}
	if len(ob.events) != 1 || ob.events[0].EventType != enums.EventPaymentProofAdded {
		t.Fatalf("expected payment_proof_added event, got %+v", ob.events)
	}

	order.Status = enums.OrderStatusCompleted
	if _, err := svc.AttachPaymentProof(context.Background(), buyer, order.ID, "https://cdn.example.com/late.jpg"); err == nil {
		t.Fatal("expected non-pending attach to be rejected")
	}
}

func TestExpirePendingCancelsStaleOrders(t *testing.T) {
	buyer := uuid.New()
	first := pendingOrder(buyer, nil)
	second := pendingOrder(buyer, nil)
	repo := newStubOrdersRepo(first, second)
	repo.stale = []models.Order{*first, *second}

	ob := &recordingOutbox{}
	svc := newTestService(t, repo, ob, &recordingPoints{}, &recordingExp{})

	count, err := svc.ExpirePending(context.Background(), time.Now().Add(-24*time.Hour), 100)
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if count != 2 {
		t.Fatalf("expired = %d, want 2", count)
	}
	for _, event := range ob.events {
		if event.EventType != enums.EventOrderExpired {
			t.Fatalf("unexpected event type %s", event.EventType)
		}
	}
	if first.Status != enums.OrderStatusCancelled || second.Status != enums.OrderStatusCancelled {
		t.Fatalf("orders not cancelled: %s %s", first.Status, second.Status)
	}
}

func TestGenerateOrderNumberShape(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	number, err := GenerateOrderNumber("LM", now)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(number) != len("LM-20260830120000-XXXX") {
		t.Fatalf("number %q has unexpected length", number)
	}
	if number[:18] != "LM-20260830120000-"[:18] {
		t.Fatalf("number %q missing timestamp prefix", number)
	}
}
