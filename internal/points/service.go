package points

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adiprasetyo/lokalmart-backend/internal/activity"
	"github.com/adiprasetyo/lokalmart-backend/pkg/db/models"
	"github.com/adiprasetyo/lokalmart-backend/pkg/enums"
	pkgerrors "github.com/adiprasetyo/lokalmart-backend/pkg/errors"
	"github.com/adiprasetyo/lokalmart-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service is the single sanctioned mutator of user point balances. Every
// balance change flows through AddTransaction so the ledger and the audit
// trail stay consistent with the stored balance.
type Service interface {
	AddTransaction(ctx context.Context, input AddTransactionInput) (*models.PointHistory, error)
	AddTransactionTx(ctx context.Context, tx *gorm.DB, input AddTransactionInput) (*models.PointHistory, error)
	ListHistory(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.PointHistory, string, error)
}

// AddTransactionInput carries one signed balance change. Amount follows the
// type: debit types expect a positive Amount that will be subtracted.
type AddTransactionInput struct {
	UserID    uuid.UUID
	Amount    int64
	Type      enums.PointTransactionType
	Reason    string
	ActorName string
}

type service struct {
	repo     Repository
	tx       txRunner
	activity activity.Service
}

// NewService wires a points service with the required dependencies.
func NewService(repo Repository, tx txRunner, activitySvc activity.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("points repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if activitySvc == nil {
		return nil, fmt.Errorf("activity service required")
	}
	return &service{repo: repo, tx: tx, activity: activitySvc}, nil
}

func (s *service) AddTransaction(ctx context.Context, input AddTransactionInput) (*models.PointHistory, error) {
	var row *models.PointHistory
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var txErr error
		row, txErr = s.AddTransactionTx(ctx, tx, input)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (s *service) AddTransactionTx(ctx context.Context, tx *gorm.DB, input AddTransactionInput) (*models.PointHistory, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for point mutation")
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid point transaction type")
	}
	if input.Amount == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be non-zero")
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reason is required")
	}

	repo := s.repo.WithTx(tx)

	user, err := repo.FindUserForUpdate(ctx, input.UserID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user for point mutation")
	}

	delta := input.Amount
	if input.Type.IsDebit() && delta > 0 {
		delta = -delta
	}

	// The balance never drops below zero; affordability checks are the
	// caller's concern (wheel spins and membership purchases verify the
	// balance before spending).
	balance := user.Points + delta
	if balance < 0 {
		balance = 0
		delta = -user.Points
	}

	if err := repo.UpdateUserBalance(ctx, user.ID, balance); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update point balance")
	}

	var actor *string
	if name := strings.TrimSpace(input.ActorName); name != "" {
		actor = &name
	}
	row := &models.PointHistory{
		UserID:       user.ID,
		Amount:       delta,
		Type:         input.Type,
		Reason:       input.Reason,
		ActorName:    actor,
		BalanceAfter: balance,
	}
	if err := repo.CreateHistory(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append point history")
	}

	detail := fmt.Sprintf("%+d points (%s), balance %d", delta, input.Type, balance)
	logInput := activity.RecordInput{
		UserID:    &user.ID,
		ActorName: input.ActorName,
		Action:    "points." + strings.ToLower(string(input.Type)),
		Detail:    &detail,
	}
	if err := s.activity.RecordTx(ctx, tx, logInput); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record point activity")
	}

	return row, nil
}

func (s *service) ListHistory(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.PointHistory, string, error) {
	if userID == uuid.Nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	return s.repo.ListHistoryByUser(ctx, userID, params)
}
