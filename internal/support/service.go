package support

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

var reportTargetTypes = map[string]bool{
	"product": true,
	"seller":  true,
	"review":  true,
	"user":    true,
}

// Service handles user-filed reports and platform feedback.
type Service interface {
	FileReport(ctx context.Context, reporterID uuid.UUID, input ReportInput) (*models.Report, error)
	ResolveReport(ctx context.Context, actor Actor, reportID uuid.UUID, status enums.ReportStatus) (*models.Report, error)
	ListReports(ctx context.Context, params pagination.Params, filters ReportFilters) ([]models.Report, string, error)
	SubmitFeedback(ctx context.Context, userID uuid.UUID, message string) (*models.Feedback, error)
	ListFeedback(ctx context.Context, params pagination.Params) ([]models.Feedback, string, error)
}

// Actor identifies the admin resolving a report.
type Actor struct {
	UserID uuid.UUID
	Name   string
}

// ReportInput carries one complaint.
type ReportInput struct {
	TargetType string
	TargetID   uuid.UUID
	Reason     string
}

type service struct {
	repo     Repository
	activity activity.Service
}

// NewService wires a support service with the required dependencies.
func NewService(repo Repository, activitySvc activity.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("support repository required")
	}
	if activitySvc == nil {
		return nil, fmt.Errorf("activity service required")
	}
	return &service{repo: repo, activity: activitySvc}, nil
}

func (s *service) FileReport(ctx context.Context, reporterID uuid.UUID, input ReportInput) (*models.Report, error) {
	if reporterID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reporter id required")
	}
	targetType := strings.ToLower(strings.TrimSpace(input.TargetType))
	if !reportTargetTypes[targetType] {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown report target type")
	}
	if input.TargetID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "target id required")
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reason is required")
	}

	report := &models.Report{
		ReporterID: reporterID,
		TargetType: targetType,
		TargetID:   input.TargetID,
		Reason:     reason,
		Status:     enums.ReportStatusOpen,
	}
	if err := s.repo.CreateReport(ctx, report); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create report")
	}
	return report, nil
}

// ResolveReport moves an open report to RESOLVED or DISMISSED.
func (s *service) ResolveReport(ctx context.Context, actor Actor, reportID uuid.UUID, status enums.ReportStatus) (*models.Report, error) {
	if status != enums.ReportStatusResolved && status != enums.ReportStatusDismissed {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "resolution must be RESOLVED or DISMISSED")
	}

	report, err := s.repo.FindReportByID(ctx, reportID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "report not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load report")
	}
	if report.Status != enums.ReportStatusOpen {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "report is already settled")
	}

	updates := map[string]any{
		"status":      status,
		"resolved_by": actor.UserID,
	}
	if err := s.repo.UpdateReport(ctx, reportID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update report")
	}
	report.Status = status
	report.ResolvedBy = &actor.UserID

	detail := fmt.Sprintf("report %s on %s %s -> %s", report.ID, report.TargetType, report.TargetID, status)
	_ = s.activity.Record(ctx, activity.RecordInput{
		UserID:    &actor.UserID,
		ActorName: actor.Name,
		Action:    "report.resolve",
		Detail:    &detail,
	})
	return report, nil
}

func (s *service) ListReports(ctx context.Context, params pagination.Params, filters ReportFilters) ([]models.Report, string, error) {
	return s.repo.ListReports(ctx, params, filters)
}

func (s *service) SubmitFeedback(ctx context.Context, userID uuid.UUID, message string) (*models.Feedback, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "feedback message is required")
	}

	feedback := &models.Feedback{UserID: userID, Message: message}
	if err := s.repo.CreateFeedback(ctx, feedback); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create feedback")
	}
	return feedback, nil
}

func (s *service) ListFeedback(ctx context.Context, params pagination.Params) ([]models.Feedback, string, error) {
	return s.repo.ListFeedback(ctx, params)
}
