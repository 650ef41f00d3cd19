package stores

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adiprasetyo/lokalmart-backend/internal/activity"
	"github.com/adiprasetyo/lokalmart-backend/internal/users"
	"github.com/adiprasetyo/lokalmart-backend/pkg/db/models"
	"github.com/adiprasetyo/lokalmart-backend/pkg/enums"
	"github.com/adiprasetyo/lokalmart-backend/pkg/outbox"
	"github.com/adiprasetyo/lokalmart-backend/pkg/pagination"
)

type stubUsersRepo struct {
	users   map[uuid.UUID]*models.User
	updates map[uuid.UUID]map[string]any
}

func newStubUsersRepo(rows ...*models.User) *stubUsersRepo {
	repo := &stubUsersRepo{
		users:   map[uuid.UUID]*models.User{},
		updates: map[uuid.UUID]map[string]any{},
	}
	for _, row := range rows {
		repo.users[row.ID] = row
	}
	return repo
}

func (s *stubUsersRepo) WithTx(tx *gorm.DB) users.Repository { return s }

func (s *stubUsersRepo) Create(ctx context.Context, user *models.User) error {
	s.users[user.ID] = user
	return nil
}

func (s *stubUsersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *stubUsersRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.FindByID(ctx, id)
}

func (s *stubUsersRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUsersRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if s.updates[id] == nil {
		s.updates[id] = map[string]any{}
	}
	for key, value := range updates {
		s.updates[id][key] = value
	}
	return nil
}

func (s *stubUsersRepo) List(ctx context.Context, params pagination.Params, filters users.ListFilters) ([]models.User, string, error) {
	panic("not implemented")
}

func (s *stubUsersRepo) Delete(ctx context.Context, id uuid.UUID) error {
	panic("not implemented")
}

type recordingOutbox struct {
	events []outbox.DomainEvent
}

func (r *recordingOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	r.events = append(r.events, event)
	return nil
}

type recordingActivityRepo struct {
	rows []models.ActivityLog
}

func (r *recordingActivityRepo) WithTx(tx *gorm.DB) activity.Repository { return r }

func (r *recordingActivityRepo) Create(ctx context.Context, log *models.ActivityLog) error {
	r.rows = append(r.rows, *log)
	return nil
}

func (r *recordingActivityRepo) ListRecent(ctx context.Context, params pagination.Params) ([]models.ActivityLog, string, error) {
	return r.rows, "", nil
}

func (r *recordingActivityRepo) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.ActivityLog, string, error) {
	return r.rows, "", nil
}

func (r *recordingActivityRepo) FindOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]models.ActivityLog, error) {
	panic("not implemented")
}

func (r *recordingActivityRepo) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	panic("not implemented")
}

type passthroughTxRunner struct{}

func (passthroughTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

func newTestService(t *testing.T, repo users.Repository, ob *recordingOutbox) Service {
	t.Helper()
	actSvc, err := activity.NewService(&recordingActivityRepo{})
	if err != nil {
		t.Fatalf("activity service: %v", err)
	}
	svc, err := NewService(repo, passthroughTxRunner{}, ob, actSvc)
	if err != nil {
		t.Fatalf("stores service: %v", err)
	}
	return svc
}

func TestLevelForExpFollowsTable(t *testing.T) {
	cases := []struct {
		exp  int
		want int
	}{
		{0, 1},
		{49, 1},
		{50, 2},
		{149, 2},
		{150, 3},
		{400, 4},
		{99999, 5},
	}
	for _, tc := range cases {
		if got := LevelForExp(tc.exp).Level; got != tc.want {
			t.Errorf("LevelForExp(%d) = %d, want %d", tc.exp, got, tc.want)
		}
	}
}

func TestOpenStorePromotesMember(t *testing.T) {
	user := &models.User{ID: uuid.New(), Role: enums.UserRoleMember, StoreStatus: enums.StoreStatusNone}
	repo := newStubUsersRepo(user)
	svc := newTestService(t, repo, &recordingOutbox{})

	if _, err := svc.OpenStore(context.Background(), user.ID, "Warung Budi"); err != nil {
		t.Fatalf("open store: %v", err)
	}

	updates := repo.updates[user.ID]
	if updates["role"] != enums.UserRoleSeller {
		t.Fatalf("role update = %v, want SELLER", updates["role"])
	}
	if updates["store_status"] != enums.StoreStatusActive {
		t.Fatalf("store_status update = %v, want ACTIVE", updates["store_status"])
	}
	if updates["store_level"] != 1 || updates["store_exp"] != 0 {
		t.Fatalf("expected level 1 exp 0, got %v", updates)
	}
}

func TestOpenStoreTwiceRejected(t *testing.T) {
	name := "Warung Budi"
	user := &models.User{ID: uuid.New(), Role: enums.UserRoleSeller, StoreStatus: enums.StoreStatusActive, StoreName: &name}
	svc := newTestService(t, newStubUsersRepo(user), &recordingOutbox{})

	if _, err := svc.OpenStore(context.Background(), user.ID, "Another"); err == nil {
		t.Fatal("expected second open to be rejected")
	}
}

func TestAddExpPromotesAndEmitsLevelUp(t *testing.T) {
	name := "Warung Budi"
	seller := &models.User{
		ID:          uuid.New(),
		Role:        enums.UserRoleSeller,
		StoreStatus: enums.StoreStatusActive,
		StoreName:   &name,
		StoreLevel:  1,
		StoreExp:    45,
	}
	repo := newStubUsersRepo(seller)
	ob := &recordingOutbox{}
	svc := newTestService(t, repo, ob)

	if err := svc.AddExpTx(context.Background(), &gorm.DB{}, seller.ID, 10); err != nil {
		t.Fatalf("add exp: %v", err)
	}

	updates := repo.updates[seller.ID]
	if updates["store_exp"] != 55 {
		t.Fatalf("store_exp = %v, want 55", updates["store_exp"])
	}
	if updates["store_level"] != 2 {
		t.Fatalf("store_level = %v, want 2", updates["store_level"])
	}
	if len(ob.events) != 1 || ob.events[0].EventType != enums.EventStoreLevelUp {
		t.Fatalf("expected one store_level_up event, got %+v", ob.events)
	}
}

func TestAddExpWithoutThresholdNoEvent(t *testing.T) {
	name := "Warung Budi"
	seller := &models.User{
		ID:          uuid.New(),
		Role:        enums.UserRoleSeller,
		StoreStatus: enums.StoreStatusActive,
		StoreName:   &name,
		StoreLevel:  1,
		StoreExp:    10,
	}
	repo := newStubUsersRepo(seller)
	ob := &recordingOutbox{}
	svc := newTestService(t, repo, ob)

	if err := svc.AddExpTx(context.Background(), &gorm.DB{}, seller.ID, 10); err != nil {
		t.Fatalf("add exp: %v", err)
	}
	if len(ob.events) != 0 {
		t.Fatalf("expected no events, got %+v", ob.events)
	}
}
