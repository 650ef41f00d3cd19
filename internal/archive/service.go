package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/adiprasetyo/lokalmart-backend/internal/activity"
	"github.com/adiprasetyo/lokalmart-backend/internal/orders"
	"github.com/adiprasetyo/lokalmart-backend/pkg/db/models"
	"github.com/adiprasetyo/lokalmart-backend/pkg/enums"
	pkgerrors "github.com/adiprasetyo/lokalmart-backend/pkg/errors"
	"github.com/adiprasetyo/lokalmart-backend/pkg/logger"
	"github.com/adiprasetyo/lokalmart-backend/pkg/pagination"

	"github.com/google/uuid"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Config carries the cleanup tunables.
type Config struct {
	// MaxAge is how old a row must be before the sweep collects it.
	MaxAge time.Duration
	// BatchLimit caps how many rows one sweep moves per kind.
	BatchLimit int
}

// CleanupResult reports what one sweep archived.
type CleanupResult struct {
	ActivityLogs int
	Orders       int
}

// Service runs the weekly cleanup: stale activity logs and terminal-state
// orders are serialized into an archive row and then batch-deleted. The
// archive write always commits in the same transaction as the delete, so a
// failed delete never loses data.
type Service interface {
	Cleanup(ctx context.Context, now time.Time) (*CleanupResult, error)
	List(ctx context.Context, params pagination.Params) ([]models.Archive, string, error)
}

type service struct {
	repo     Repository
	activity activity.Repository
	orders   orders.Repository
	tx       txRunner
	logg     *logger.Logger
	cfg      Config
}

// NewService wires an archive service with the required dependencies.
func NewService(
	repo Repository,
	activityRepo activity.Repository,
	ordersRepo orders.Repository,
	tx txRunner,
	logg *logger.Logger,
	cfg Config,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("archive repository required")
	}
	if activityRepo == nil {
		return nil, fmt.Errorf("activity repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if cfg.MaxAge <= 0 {
		return nil, fmt.Errorf("cleanup max age must be positive")
	}
	if cfg.BatchLimit <= 0 {
		cfg.BatchLimit = 1000
	}
	return &service{
		repo:     repo,
		activity: activityRepo,
		orders:   ordersRepo,
		tx:       tx,
		logg:     logg,
		cfg:      cfg,
	}, nil
}

func (s *service) Cleanup(ctx context.Context, now time.Time) (*CleanupResult, error) {
	cutoff := now.Add(-s.cfg.MaxAge)
	result := &CleanupResult{}

	logs, err := s.activity.FindOlderThan(ctx, cutoff, s.cfg.BatchLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stale activity logs")
	}
	if len(logs) > 0 {
		ids := make([]uuid.UUID, len(logs))
		for i, row := range logs {
			ids[i] = row.ID
		}
		if err := s.archiveBatch(ctx, enums.ArchiveKindActivityLogs, logs, func(tx *gorm.DB) (int64, error) {
			return s.activity.WithTx(tx).DeleteByIDs(ctx, ids)
		}); err != nil {
			return nil, err
		}
		result.ActivityLogs = len(logs)
	}

	stale, err := s.orders.FindTerminalOlderThan(ctx, cutoff, s.cfg.BatchLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stale orders")
	}
	if len(stale) > 0 {
		ids := make([]uuid.UUID, len(stale))
		for i, row := range stale {
			ids[i] = row.ID
		}
		if err := s.archiveBatch(ctx, enums.ArchiveKindOrders, stale, func(tx *gorm.DB) (int64, error) {
			return s.orders.WithTx(tx).DeleteByIDs(ctx, ids)
		}); err != nil {
			return nil, err
		}
		result.Orders = len(stale)
	}

	if s.logg != nil && (result.ActivityLogs > 0 || result.Orders > 0) {
		fields := map[string]any{
			"activity_logs": result.ActivityLogs,
			"orders":        result.Orders,
			"cutoff":        cutoff.Format(time.RFC3339),
		}
		s.logg.Info(s.logg.WithFields(ctx, fields), "weekly cleanup archived rows")
	}
	return result, nil
}

// archiveBatch writes the archive row and runs the delete in one
// transaction. The payload is the full JSON of every removed row.
func (s *service) archiveBatch(ctx context.Context, kind enums.ArchiveKind, rows any, deleteFn func(tx *gorm.DB) (int64, error)) error {
	payload, err := json.Marshal(rows)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "serialize archive payload")
	}
	count := 0
	switch typed := rows.(type) {
	case []models.ActivityLog:
		count = len(typed)
	case []models.Order:
		count = len(typed)
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, &models.Archive{
			Kind:      kind,
			Payload:   payload,
			ItemCount: count,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write archive row")
		}
		if _, err := deleteFn(tx); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete archived rows")
		}
		return nil
	})
}

func (s *service) List(ctx context.Context, params pagination.Params) ([]models.Archive, string, error) {
	return s.repo.List(ctx, params)
}
