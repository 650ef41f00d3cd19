package points

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adiprasetyo/lokalmart-backend/internal/activity"
	"github.com/adiprasetyo/lokalmart-backend/pkg/db/models"
	"github.com/adiprasetyo/lokalmart-backend/pkg/enums"
	"github.com/adiprasetyo/lokalmart-backend/pkg/pagination"
)

type stubPointsRepo struct {
	user    *models.User
	history []models.PointHistory
	balance int64
}

func (s *stubPointsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubPointsRepo) FindUserForUpdate(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if s.user == nil || s.user.ID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.user
	return &copied, nil
}

func (s *stubPointsRepo) UpdateUserBalance(ctx context.Context, userID uuid.UUID, balance int64) error {
	s.balance = balance
	s.user.Points = balance
	return nil
}

func (s *stubPointsRepo) CreateHistory(ctx context.Context, row *models.PointHistory) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	s.history = append(s.history, *row)
	return nil
}

func (s *stubPointsRepo) ListHistoryByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.PointHistory, string, error) {
	return s.history, "", nil
}

type stubActivityRepo struct {
	rows []models.ActivityLog
}

func (s *stubActivityRepo) WithTx(tx *gorm.DB) activity.Repository { return s }

func (s *stubActivityRepo) Create(ctx context.Context, log *models.ActivityLog) error {
	s.rows = append(s.rows, *log)
	return nil
}

func (s *stubActivityRepo) ListRecent(ctx context.Context, params pagination.Params) ([]models.ActivityLog, string, error) {
	return s.rows, "", nil
}

func (s *stubActivityRepo) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.ActivityLog, string, error) {
	return s.rows, "", nil
}

func (s *stubActivityRepo) FindOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]models.ActivityLog, error) {
	panic("not implemented")
}

func (s *stubActivityRepo) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	panic("not implemented")
}

type passthroughTxRunner struct{}

func (passthroughTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

func newTestService(t *testing.T, repo *stubPointsRepo, actRepo *stubActivityRepo) Service {
	t.Helper()
	actSvc, err := activity.NewService(actRepo)
	if err != nil {
		t.Fatalf("activity service: %v", err)
	}
	svc, err := NewService(repo, passthroughTxRunner{}, actSvc)
	if err != nil {
		t.Fatalf("points service: %v", err)
	}
	return svc
}

func TestAddTransactionEarnAppendsHistoryAndLog(t *testing.T) {
	userID := uuid.New()
	repo := &stubPointsRepo{user: &models.User{ID: userID, Points: 50}}
	actRepo := &stubActivityRepo{}
	svc := newTestService(t, repo, actRepo)

	row, err := svc.AddTransaction(context.Background(), AddTransactionInput{
		UserID:    userID,
		Amount:    100,
		Type:      enums.PointTransactionEarn,
		Reason:    "order completed",
		ActorName: "system",
	})
	if err != nil {
		t.Fatalf("add transaction: %v", err)
	}

	if repo.balance != 150 {
		t.Fatalf("balance = %d, want 150", repo.balance)
	}
	if row.BalanceAfter != 150 || row.Amount != 100 {
		t.Fatalf("history row = %+v", row)
	}
	if len(repo.history) != 1 {
		t.Fatalf("history rows = %d, want exactly 1", len(repo.history))
	}
	if len(actRepo.rows) != 1 {
		t.Fatalf("activity rows = %d, want 1", len(actRepo.rows))
	}
}

func TestAddTransactionClampsBalanceAtZero(t *testing.T) {
	userID := uuid.New()
	repo := &stubPointsRepo{user: &models.User{ID: userID, Points: 30}}
	svc := newTestService(t, repo, &stubActivityRepo{})

	row, err := svc.AddTransaction(context.Background(), AddTransactionInput{
		UserID: userID,
		Amount: -100,
		Type:   enums.PointTransactionAdminAdjust,
		Reason: "manual correction",
	})
	if err != nil {
		t.Fatalf("add transaction: %v", err)
	}

	if repo.balance != 0 {
		t.Fatalf("balance = %d, want 0", repo.balance)
	}
	if row.BalanceAfter != 0 {
		t.Fatalf("balance after = %d, want 0", row.BalanceAfter)
	}
	if row.Amount != -30 {
		t.Fatalf("recorded amount = %d, want -30 (clamped)", row.Amount)
	}
}

func TestAddTransactionDebitTypesNegateAmount(t *testing.T) {
	userID := uuid.New()
	repo := &stubPointsRepo{user: &models.User{ID: userID, Points: 500}}
	svc := newTestService(t, repo, &stubActivityRepo{})

	row, err := svc.AddTransaction(context.Background(), AddTransactionInput{
		UserID: userID,
		Amount: 200,
		Type:   enums.PointTransactionSpend,
		Reason: "wheel spin",
	})
	if err != nil {
		t.Fatalf("add transaction: %v", err)
	}
	if row.Amount != -200 || row.BalanceAfter != 300 {
		t.Fatalf("row = %+v, want amount -200 balance 300", row)
	}
}

func TestAddTransactionRejectsUnknownUser(t *testing.T) {
	repo := &stubPointsRepo{}
	svc := newTestService(t, repo, &stubActivityRepo{})

	_, err := svc.AddTransaction(context.Background(), AddTransactionInput{
		UserID: uuid.New(),
		Amount: 10,
		Type:   enums.PointTransactionEarn,
		Reason: "test",
	})
	if err == nil {
		t.Fatal("expected error for unknown user")
	}
}

func TestAddTransactionValidatesInput(t *testing.T) {
	userID := uuid.New()
	repo := &stubPointsRepo{user: &models.User{ID: userID, Points: 10}}
	svc := newTestService(t, repo, &stubActivityRepo{})

	cases := []AddTransactionInput{
		{UserID: uuid.Nil, Amount: 10, Type: enums.PointTransactionEarn, Reason: "x"},
		{UserID: userID, Amount: 0, Type: enums.PointTransactionEarn, Reason: "x"},
		{UserID: userID, Amount: 10, Type: "BOGUS", Reason: "x"},
		{UserID: userID, Amount: 10, Type: enums.PointTransactionEarn, Reason: "  "},
	}
	for i, input := range cases {
		if _, err := svc.AddTransaction(context.Background(), input); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
	if len(repo.history) != 0 {
		t.Fatalf("no history rows expected, got %d", len(repo.history))
	}
}
