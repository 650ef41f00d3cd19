package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/adiprasetyo/lokalmart-backend/internal/archive"
	"github.com/adiprasetyo/lokalmart-backend/pkg/logger"
)

// CleanupJobParams configure the weekly archival sweep.
type CleanupJobParams struct {
	Logger  *logger.Logger
	Archive archiveCleaner
}

type archiveCleaner interface {
	Cleanup(ctx context.Context, now time.Time) (*archive.CleanupResult, error)
}

// NewCleanupJob builds the cron job that archives and deletes aged activity
// logs and terminal orders. The retention cutoff lives in the archive service,
// so re-running the job early is harmless.
func NewCleanupJob(params CleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Archive == nil {
		return nil, fmt.Errorf("archive service required")
	}
	return &cleanupJob{
		logg:    params.Logger,
		archive: params.Archive,
		now:     time.Now,
	}, nil
}

type cleanupJob struct {
	logg    *logger.Logger
	archive archiveCleaner
	now     func() time.Time
}

func (j *cleanupJob) Name() string { return "weekly-cleanup" }

func (j *cleanupJob) Run(ctx context.Context) error {
	result, err := j.archive.Cleanup(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("archive cleanup: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"activity_logs": result.ActivityLogs,
		"orders":        result.Orders,
	})
	j.logg.Info(logCtx, "cleanup sweep complete")
	return nil
}
