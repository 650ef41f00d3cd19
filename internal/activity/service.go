package activity

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adiprasetyo/lokalmart-backend/pkg/db/models"
	pkgerrors "github.com/adiprasetyo/lokalmart-backend/pkg/errors"
	"github.com/adiprasetyo/lokalmart-backend/pkg/pagination"
)

// Service records and lists audit trail entries.
type Service interface {
	Record(ctx context.Context, input RecordInput) error
	RecordTx(ctx context.Context, tx *gorm.DB, input RecordInput) error
	ListRecent(ctx context.Context, params pagination.Params) ([]models.ActivityLog, string, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.ActivityLog, string, error)
}

// RecordInput captures one audit trail entry.
type RecordInput struct {
	UserID    *uuid.UUID
	ActorName string
	Action    string
	Detail    *string
}

type service struct {
	repo Repository
}

// NewService wires an activity service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("activity repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Record(ctx context.Context, input RecordInput) error {
	return s.RecordTx(ctx, nil, input)
}

func (s *service) RecordTx(ctx context.Context, tx *gorm.DB, input RecordInput) error {
	if strings.TrimSpace(input.Action) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "action is required")
	}
	actor := strings.TrimSpace(input.ActorName)
	if actor == "" {
		actor = "system"
	}

	row := &models.ActivityLog{
		UserID:    input.UserID,
		ActorName: actor,
		Action:    input.Action,
		Detail:    input.Detail,
	}
	return s.repo.WithTx(tx).Create(ctx, row)
}

func (s *service) ListRecent(ctx context.Context, params pagination.Params) ([]models.ActivityLog, string, error) {
	return s.repo.ListRecent(ctx, params)
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.ActivityLog, string, error) {
	if userID == uuid.Nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	return s.repo.ListByUser(ctx, userID, params)
}
